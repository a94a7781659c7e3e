package diag

// Code identifies the class of a diagnostic independent of its message text.
type Code string

const (
	// Syntactic problems found by the parser adapters.
	CodeParse Code = "parse"

	// CodeNoContext: a statement needs a non-root current context.
	CodeNoContext Code = "no-context"
	// CodeUnknownContext: USE CONTEXT or a parent context does not exist.
	CodeUnknownContext Code = "unknown-context"
	// CodeDuplicateName: a name is declared twice in one context.
	CodeDuplicateName Code = "duplicate-name"

	// CodeUnknownType: a type reference names nothing.
	CodeUnknownType Code = "unknown-type"
	// CodeNotAType: a type reference names a context or stream.
	CodeNotAType Code = "not-a-type"
	// CodeInvalidTypeParameter: bad Decimal/String/Bytes/temporal parameters.
	CodeInvalidTypeParameter Code = "invalid-type-parameter"
	// CodeInvalidMapKey: a map key type is not primitive.
	CodeInvalidMapKey Code = "invalid-map-key"
	// CodeInvalidScalarBase: a scalar wraps a non-primitive type.
	CodeInvalidScalarBase Code = "invalid-scalar-base"
	// CodeInvalidEnumBase: an enum base is not an integer primitive.
	CodeInvalidEnumBase Code = "invalid-enum-base"
	// CodeDuplicateMember: a field, member, symbol, alias or constraint is repeated.
	CodeDuplicateMember Code = "duplicate-member"
	// CodeInvalidStreamAlias: a stream alias does not name a struct.
	CodeInvalidStreamAlias Code = "invalid-stream-alias"
	// CodeUnresolvedReference: a type placeholder survived type building.
	CodeUnresolvedReference Code = "unresolved-reference"

	// CodeInvalidCheck: a CHECK clause is malformed (unnamed on a struct, too many on a scalar).
	CodeInvalidCheck Code = "invalid-check"
	// CodeCheckType: a CHECK expression is not Boolean.
	CodeCheckType Code = "check-type"
	// CodeCheckFailed: a literal violates a scalar CHECK.
	CodeCheckFailed Code = "check-failed"

	// CodeUnknownIdentifier: an identifier is not in scope.
	CodeUnknownIdentifier Code = "unknown-identifier"
	// CodeUnknownField: a member access or struct literal names no field.
	CodeUnknownField Code = "unknown-field"
	// CodeTypeMismatch: operand or literal does not fit the required type.
	CodeTypeMismatch Code = "type-mismatch"
	// CodeInvalidIndex: a literal list index is negative, fractional or too large.
	CodeInvalidIndex Code = "invalid-index"

	// CodeInvalidLiteral: literal text does not parse for its type.
	CodeInvalidLiteral Code = "invalid-literal"
	// CodeOutOfRange: a numeric literal does not fit its type.
	CodeOutOfRange Code = "out-of-range"
	// CodePrecision: a decimal or temporal literal exceeds the declared precision.
	CodePrecision Code = "precision"
	// CodeScale: a decimal literal exceeds the declared scale.
	CodeScale Code = "scale"
	// CodeTooLong: a string or bytes literal exceeds the declared length.
	CodeTooLong Code = "too-long"
	// CodeNotNullable: null for a non-nullable field.
	CodeNotNullable Code = "not-nullable"
	// CodeDuplicateKey: a map or struct literal repeats a key.
	CodeDuplicateKey Code = "duplicate-key"
	// CodeUnknownSymbol: an enum literal names no symbol.
	CodeUnknownSymbol Code = "unknown-enum-symbol"
	// CodeUnknownMember: a union literal names no member.
	CodeUnknownMember Code = "unknown-union-member"

	// CodeUnknownStream: READ/WRITE names no stream.
	CodeUnknownStream Code = "unknown-stream"
	// CodeUnknownAlias: READ/WRITE names no alias of the stream.
	CodeUnknownAlias Code = "unknown-alias"
	// CodeMissingField: a WRITE literal omits a required field.
	CodeMissingField Code = "missing-field"
)
