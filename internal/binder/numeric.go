package binder

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/streamdl/streamdl/internal/types"
)

// intRange returns the inclusive bounds of an integer kind.
func intRange(k types.Kind) (lo, hi int64) {
	switch k {
	case types.KindInt8:
		return math.MinInt8, math.MaxInt8
	case types.KindInt16:
		return math.MinInt16, math.MaxInt16
	case types.KindInt32:
		return math.MinInt32, math.MaxInt32
	}
	return math.MinInt64, math.MaxInt64
}

var (
	maxFloat32 = decimal.NewFromFloat(math.MaxFloat32)
	maxFloat64 = decimal.NewFromFloat(math.MaxFloat64)
)

// fitsInt reports whether a whole decimal lies within the range of k.
func fitsInt(d decimal.Decimal, k types.Kind) bool {
	lo, hi := intRange(k)
	return d.GreaterThanOrEqual(decimal.NewFromInt(lo)) && d.LessThanOrEqual(decimal.NewFromInt(hi))
}

// fitsFloat reports whether the magnitude of d is representable in k.
func fitsFloat(d decimal.Decimal, k types.Kind) bool {
	limit := maxFloat64
	if k == types.KindFloat32 {
		limit = maxFloat32
	}
	return d.Abs().LessThanOrEqual(limit)
}

// decimalShape returns the digits before the decimal point (zero for a pure
// fraction) and the digits after it, as written.
func decimalShape(d decimal.Decimal) (intDigits, scale int) {
	if exp := d.Exponent(); exp < 0 {
		scale = int(-exp)
	}
	whole := d.Abs().Truncate(0)
	if whole.IsZero() {
		return 0, scale
	}
	return len(whole.String()), scale
}
