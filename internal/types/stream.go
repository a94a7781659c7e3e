package types

// Stream is a named multiplexed sequence of rows. It is not a Type: nothing can
// declare a field of stream type.
type Stream struct {
	Name    string
	Doc     string
	aliases []StreamAlias
	index   map[string]int
}

// StreamAlias binds an alias name to the struct type of its rows.
type StreamAlias struct {
	Name string
	Row  *Struct
}

// NewStream returns a stream with the given aliases.
func NewStream(name, doc string, aliases []StreamAlias) *Stream {
	s := &Stream{Name: name, Doc: doc, aliases: append([]StreamAlias(nil), aliases...)}
	s.index = make(map[string]int, len(aliases))
	for i, a := range s.aliases {
		s.index[a.Name] = i
	}
	return s
}

// Aliases returns the aliases in declaration order.
func (s *Stream) Aliases() []StreamAlias {
	return append([]StreamAlias(nil), s.aliases...)
}

// Alias looks up an alias by name.
func (s *Stream) Alias(name string) (StreamAlias, bool) {
	i, ok := s.index[name]
	if !ok {
		return StreamAlias{}, false
	}
	return s.aliases[i], true
}
