package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/streamdl/streamdl/internal/binder"
	"github.com/streamdl/streamdl/internal/types"
)

// CatalogFingerprint represents a fingerprint of a compiled catalog
type CatalogFingerprint struct {
	Hash string `json:"hash"` // SHA256 of the normalized catalog
}

// typeEntry is the normalized form of one declared type. Nested types are
// written by name, so recursive declarations hash without cycles.
type typeEntry struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Base    string   `json:"base,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
	Checks  []string `json:"checks,omitempty"`
}

type streamEntry struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type snapshot struct {
	Types   []typeEntry   `json:"types"`
	Streams []streamEntry `json:"streams"`
}

// ComputeFingerprint generates a fingerprint for the given catalog. Two
// programs that declare the same types and streams in the same order share a
// fingerprint regardless of layout, comments or statement positions.
func ComputeFingerprint(cat *binder.Catalog) (*CatalogFingerprint, error) {
	snap := snapshot{Types: []typeEntry{}, Streams: []streamEntry{}}
	for _, ct := range cat.Types() {
		snap.Types = append(snap.Types, normalize(ct))
	}
	for _, s := range cat.Streams() {
		e := streamEntry{Name: s.Name, Aliases: []string{}}
		for _, a := range s.Aliases() {
			e.Aliases = append(e.Aliases, a.Name+" "+describeStruct(a.Row))
		}
		snap.Streams = append(snap.Streams, e)
	}

	hash, err := hashObject(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to compute catalog hash: %w", err)
	}

	return &CatalogFingerprint{
		Hash: hash,
	}, nil
}

func normalize(ct binder.CatalogType) typeEntry {
	e := typeEntry{Name: ct.Name, Kind: ct.Kind.String()}
	switch t := ct.Type.(type) {
	case *types.Scalar:
		e.Base = typeName(t.Base)
		if t.Check != nil {
			e.Checks = append(e.Checks, constraintKey(t.Check))
		}
	case *types.Enum:
		e.Base = typeName(t.Base)
		for _, s := range t.Symbols() {
			e.Symbols = append(e.Symbols, fmt.Sprintf("%s=%d", s.Name, s.Value))
		}
	case *types.Struct:
		e.Fields = fieldKeys(t)
		for _, c := range t.Checks() {
			e.Checks = append(e.Checks, constraintKey(c))
		}
	case *types.Union:
		for _, m := range t.Members() {
			e.Fields = append(e.Fields, m.Name+" "+typeName(m.Type))
		}
	default:
		e.Base = typeName(ct.Type)
	}
	return e
}

func fieldKeys(s *types.Struct) []string {
	var out []string
	for _, f := range s.Fields() {
		key := f.Name + " " + typeName(f.Type)
		if f.Nullable {
			key += " NULL"
		}
		out = append(out, key)
	}
	return out
}

// describeStruct names a declared row type and spells out an inline one.
func describeStruct(s *types.Struct) string {
	if s == nil {
		return "?"
	}
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%v", fieldKeys(s))
}

// typeName tolerates the nil bases left behind by declarations that failed
// to build.
func typeName(t types.Type) string {
	if t == nil {
		return "Void"
	}
	if p, ok := t.(*types.Primitive); ok && p == nil {
		return "Void"
	}
	return t.String()
}

func constraintKey(c *types.Constraint) string {
	return fmt.Sprintf("%s%v", c.Name, c.Refs)
}

// hashObject computes a SHA256 hash of any object
func hashObject(obj interface{}) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// String returns a human-readable representation of the fingerprint
func (f *CatalogFingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Catalog fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Catalog fingerprint: %s", f.Hash)
}
