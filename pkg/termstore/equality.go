package termstore

import "github.com/aleksaelezovic/termgo/pkg/rdf"

// Equal reports semantic equality between two values. Terms compare by
// identity rather than structurally; two 4-element term slices (quad-shaped
// tuples) compare element-wise by identity, which allows comparing statement
// tuples without interning a quad for them. Anything else is equal only when
// both values are nil.
func (s *Store) Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if at, ok := a.(rdf.Term); ok {
		bt, ok := b.(rdf.Term)
		if !ok {
			return false
		}
		if at == bt {
			return true
		}
		ai := s.Identity(at)
		return ai != NoIdentity && ai == s.Identity(bt)
	}

	as, aok := tuple(a)
	bs, bok := tuple(b)
	if !aok || !bok {
		return false
	}
	for i := range as {
		if !s.Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// tuple accepts the quad-shaped forms: a slice or array of exactly four
// terms. Interned quads are terms themselves and never reach here.
func tuple(v any) ([4]rdf.Term, bool) {
	switch t := v.(type) {
	case []rdf.Term:
		if len(t) != 4 {
			return [4]rdf.Term{}, false
		}
		return [4]rdf.Term{t[0], t[1], t[2], t[3]}, true
	case [4]rdf.Term:
		return t, true
	default:
		return [4]rdf.Term{}, false
	}
}
