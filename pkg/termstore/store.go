package termstore

import (
	"strconv"
	"sync"

	"github.com/aleksaelezovic/termgo/pkg/rdf"
)

// tables is the canonical-instance cache: one content-key map per term kind
// plus a unified identity map for reverse lookup. All access goes through mu;
// lookup-then-insert must be a single critical section so two goroutines
// interning the same key can never observe two instances.
type tables struct {
	mu         sync.Mutex
	blankNodes map[string]*rdf.BlankNode
	namedNodes map[string]*rdf.NamedNode
	literals   map[string]*rdf.Literal
	quads      map[string]*rdf.Quad
	ids        map[rdf.Term]int64
	byID       map[int64]rdf.Term
}

func newTables() *tables {
	return &tables{
		blankNodes: make(map[string]*rdf.BlankNode),
		namedNodes: make(map[string]*rdf.NamedNode),
		literals:   make(map[string]*rdf.Literal),
		quads:      make(map[string]*rdf.Quad),
		ids:        make(map[rdf.Term]int64),
		byID:       make(map[int64]rdf.Term),
	}
}

// record registers a freshly interned term under its identity. On a hash
// collision the reverse table keeps the first term; identities double as
// comparison keys either way.
func (t *tables) record(term rdf.Term, id int64) {
	t.ids[term] = id
	if _, ok := t.byID[id]; !ok {
		t.byID[id] = term
	}
}

// literalKey is the literal content key: value, language and datatype IRI
// joined by commas.
func literalKey(value, language, datatype string) string {
	return value + "," + language + "," + datatype
}

// quadKey is the quad content key: the four component identities joined by
// commas. The graph slot always holds a real identity; the factory
// substitutes the default graph node before keys are computed.
func quadKey(s, p, o, g int64) string {
	return strconv.FormatInt(s, 10) + "," + strconv.FormatInt(p, 10) + "," +
		strconv.FormatInt(o, 10) + "," + strconv.FormatInt(g, 10)
}

// The internXLocked methods implement get-or-intern for one kind each.
// Callers must hold mu.

func (s *Store) internBlankNodeLocked(id string) *rdf.BlankNode {
	if n, ok := s.tabs.blankNodes[id]; ok {
		return n
	}
	n := rdf.NewBlankNode(id)
	s.tabs.blankNodes[id] = n
	s.tabs.record(n, s.strategy.blankNode(id))
	return n
}

func (s *Store) internNamedNodeLocked(iri string) *rdf.NamedNode {
	if n, ok := s.tabs.namedNodes[iri]; ok {
		return n
	}
	n := rdf.NewNamedNode(iri)
	s.tabs.namedNodes[iri] = n
	s.tabs.record(n, s.strategy.namedNode(iri))
	return n
}

// internLiteralLocked expects datatype to be an interned node of this store.
func (s *Store) internLiteralLocked(value, language string, datatype *rdf.NamedNode) *rdf.Literal {
	key := literalKey(value, language, datatype.IRI)
	if l, ok := s.tabs.literals[key]; ok {
		return l
	}
	l := &rdf.Literal{Value: value, Language: language, Datatype: datatype}
	s.tabs.literals[key] = l
	s.tabs.record(l, s.strategy.literal(value, language, s.tabs.ids[datatype]))
	return l
}

// internQuadLocked expects all four components to be interned terms of this
// store.
func (s *Store) internQuadLocked(sub, pred, obj, graph rdf.Term) *rdf.Quad {
	ids := s.tabs.ids
	key := quadKey(ids[sub], ids[pred], ids[obj], ids[graph])
	if q, ok := s.tabs.quads[key]; ok {
		return q
	}
	q := rdf.NewQuad(sub, pred, obj, graph)
	s.tabs.quads[key] = q
	s.tabs.record(q, s.strategy.quad(ids[sub], ids[pred], ids[obj], ids[graph]))
	return q
}
