// Package termstore interns RDF terms and quads: every distinct value is
// represented by exactly one canonical instance for the lifetime of a Store,
// and every interned term carries a numeric identity usable as an O(1)
// comparison key.
//
// Identities come in two regimes, selected at construction. HashIdentities
// derives them from term content with a seeded hash, so they are reproducible
// across stores sharing a seed base; SequentialIdentities assigns counter
// values that are meaningful only within one store. Deduplication is
// content-keyed in both regimes.
//
// A Store never evicts: it retains every interned term until it is discarded
// as a whole. Processes interning unbounded distinct values grow memory
// without bound; that is the price of the permanent-identity guarantee.
package termstore

import (
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/termgo/pkg/rdf"
)

// Store is the term factory and canonical-instance cache. Construct one with
// New at startup and share it by reference; all methods are safe for
// concurrent use.
type Store struct {
	mode     Mode
	seedBase uint64
	parser   LiteralParser

	strategy identityStrategy
	tabs     *tables

	blankCounter uint64 // guarded by tabs.mu

	xsdString    *rdf.NamedNode
	langString   *rdf.NamedNode
	defaultGraph *rdf.NamedNode
}

// Option configures a Store.
type Option func(*Store)

// WithMode selects the identity regime. The default is HashIdentities.
func WithMode(m Mode) Option {
	return func(s *Store) { s.mode = m }
}

// WithSeedBase offsets the hash-regime identity space so two stores can
// produce disjoint identities. Ignored under SequentialIdentities.
func WithSeedBase(seed uint64) Option {
	return func(s *Store) { s.seedBase = seed }
}

// WithLiteralParser sets the collaborator that LiteralValue hands non-string
// values to.
func WithLiteralParser(p LiteralParser) Option {
	return func(s *Store) { s.parser = p }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := newStore(opts...)
	s.bootstrap()
	return s
}

func newStore(opts ...Option) *Store {
	s := &Store{tabs: newTables()}
	for _, opt := range opts {
		opt(s)
	}
	switch s.mode {
	case SequentialIdentities:
		s.strategy = newSequentialStrategy()
	default:
		s.strategy = hashStrategy{seedBase: s.seedBase}
	}
	return s
}

// bootstrap interns the well-known nodes up front so literal defaulting and
// default-graph substitution never miss.
func (s *Store) bootstrap() {
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	s.xsdString = s.internNamedNodeLocked(rdf.XSDString.IRI)
	s.langString = s.internNamedNodeLocked(rdf.RDFLangString.IRI)
	s.defaultGraph = s.internNamedNodeLocked(rdf.DefaultGraphIRI)
}

// DefaultGraph returns the store's canonical default graph node.
func (s *Store) DefaultGraph() *rdf.NamedNode {
	return s.defaultGraph
}

// BlankNode interns a blank node. With no argument the node is auto-named
// from a per-store counter ("b1", "b2", ...); a supplied value must be a
// string.
func (s *Store) BlankNode(value ...any) (*rdf.BlankNode, error) {
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()

	var id string
	if len(value) == 0 || value[0] == nil {
		s.blankCounter++
		id = "b" + strconv.FormatUint(s.blankCounter, 10)
	} else {
		str, ok := value[0].(string)
		if !ok {
			return nil, fmt.Errorf("blank node value must be a string, got %T: %w", value[0], ErrInvalidArgument)
		}
		id = str
	}
	return s.internBlankNodeLocked(id), nil
}

// NamedNode interns a named node. The value must be a string; IRI
// well-formedness is deliberately not checked.
func (s *Store) NamedNode(value any) (*rdf.NamedNode, error) {
	iri, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("named node value must be a string, got %T: %w", value, ErrInvalidArgument)
	}
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	return s.internNamedNodeLocked(iri), nil
}

// Literal interns a literal. The optional second argument is either a
// language tag (string) or a datatype (*rdf.NamedNode). A language tag forces
// the rdf:langString datatype; with neither, the datatype defaults to
// xsd:string.
func (s *Store) Literal(value any, languageOrDatatype ...any) (*rdf.Literal, error) {
	str, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("literal value must be a string, got %T: %w", value, ErrInvalidArgument)
	}

	var language string
	var datatype *rdf.NamedNode
	if len(languageOrDatatype) > 0 && languageOrDatatype[0] != nil {
		switch v := languageOrDatatype[0].(type) {
		case string:
			language = v
		case *rdf.NamedNode:
			if v == nil {
				return nil, fmt.Errorf("literal %q: %w", str, ErrMissingDatatype)
			}
			datatype = v
		default:
			return nil, fmt.Errorf("language or datatype must be a string or *rdf.NamedNode, got %T: %w", v, ErrInvalidArgument)
		}
	}

	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	return s.internLiteralNormalizedLocked(str, language, datatype)
}

// internLiteralNormalizedLocked applies the defaulting rules and interns the
// datatype node so its identity is stable before the literal's own identity
// is derived from it.
func (s *Store) internLiteralNormalizedLocked(value, language string, datatype *rdf.NamedNode) (*rdf.Literal, error) {
	switch {
	case language != "":
		datatype = s.langString
	case datatype == nil:
		datatype = s.xsdString
	default:
		datatype = s.internNamedNodeLocked(datatype.IRI)
	}
	if datatype == nil {
		// Unreachable given the defaulting above; fail loudly rather than
		// intern an invalid term.
		return nil, fmt.Errorf("literal %q: %w", value, ErrMissingDatatype)
	}
	return s.internLiteralLocked(value, language, datatype), nil
}

// LiteralValue interns string values exactly like Literal. Any other value is
// handed to the configured LiteralParser and its result returned directly,
// WITHOUT interning: parsed literals are not canonical instances, so two
// equal non-string inputs may yield distinct objects. This is the one
// exception to the single-instance guarantee.
func (s *Store) LiteralValue(v any) (*rdf.Literal, error) {
	if str, ok := v.(string); ok {
		return s.Literal(str)
	}
	if s.parser == nil {
		return nil, fmt.Errorf("no literal parser configured for %T: %w", v, ErrInvalidArgument)
	}
	return s.parser.ParseLiteral(v)
}

// Quad interns a statement. When graph is omitted or nil the store's default
// graph node is substituted before any key or identity is computed, so an
// omitted graph and an explicitly passed default graph produce the same quad.
// Components are re-interned first: terms built by hand or by another store
// are replaced by this store's canonical instances, keeping component
// identities consistent.
func (s *Store) Quad(subject, predicate, object rdf.Term, graph ...rdf.Term) (*rdf.Quad, error) {
	g := rdf.Term(nil)
	if len(graph) > 0 {
		g = graph[0]
	}

	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()

	sub, err := s.internComponentLocked("subject", subject)
	if err != nil {
		return nil, err
	}
	if _, ok := sub.(*rdf.Literal); ok {
		return nil, fmt.Errorf("quad subject must be a named or blank node, got literal: %w", ErrInvalidArgument)
	}

	pred, err := s.internComponentLocked("predicate", predicate)
	if err != nil {
		return nil, err
	}
	if _, ok := pred.(*rdf.NamedNode); !ok {
		return nil, fmt.Errorf("quad predicate must be a named node, got %T: %w", predicate, ErrInvalidArgument)
	}

	obj, err := s.internComponentLocked("object", object)
	if err != nil {
		return nil, err
	}

	var gr rdf.Term = s.defaultGraph
	if g != nil {
		gr, err = s.internComponentLocked("graph", g)
		if err != nil {
			return nil, err
		}
		if _, ok := gr.(*rdf.Literal); ok {
			return nil, fmt.Errorf("quad graph must be a named or blank node, got literal: %w", ErrInvalidArgument)
		}
	}

	return s.internQuadLocked(sub, pred, obj, gr), nil
}

// internComponentLocked re-interns a quad component through the appropriate
// kind table.
func (s *Store) internComponentLocked(slot string, t rdf.Term) (rdf.Term, error) {
	switch v := t.(type) {
	case *rdf.BlankNode:
		if v == nil {
			break
		}
		return s.internBlankNodeLocked(v.ID), nil
	case *rdf.NamedNode:
		if v == nil {
			break
		}
		return s.internNamedNodeLocked(v.IRI), nil
	case *rdf.Literal:
		if v == nil {
			break
		}
		return s.internLiteralNormalizedLocked(v.Value, v.Language, v.Datatype)
	}
	return nil, fmt.Errorf("quad %s must be a term, got %T: %w", slot, t, ErrInvalidArgument)
}

// Identity returns the numeric identity of v, or NoIdentity (-1) when v is
// not a term (nil, slices, numbers, ...). Interned terms return their
// assigned identity; other terms get one computed by the active strategy. In
// the hash regime that computation is pure and repeatable; in the sequential
// regime the term is interned by content first, so equal descriptions still
// map to one identity.
func (s *Store) Identity(v any) int64 {
	term, ok := v.(rdf.Term)
	if !ok || term == nil {
		return NoIdentity
	}
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	return s.identityLocked(term)
}

func (s *Store) identityLocked(term rdf.Term) int64 {
	if id, ok := s.tabs.ids[term]; ok {
		return id
	}

	if s.mode == SequentialIdentities {
		return s.sequentialIdentityLocked(term)
	}

	switch v := term.(type) {
	case *rdf.BlankNode:
		if v == nil {
			return NoIdentity
		}
		return s.strategy.blankNode(v.ID)
	case *rdf.NamedNode:
		if v == nil {
			return NoIdentity
		}
		return s.strategy.namedNode(v.IRI)
	case *rdf.Literal:
		if v == nil {
			return NoIdentity
		}
		var datatypeID int64
		if v.Language == "" {
			iri := rdf.XSDString.IRI
			if v.Datatype != nil {
				iri = v.Datatype.IRI
			}
			datatypeID = s.strategy.namedNode(iri)
		}
		return s.strategy.literal(v.Value, v.Language, datatypeID)
	case *rdf.Quad:
		if v == nil {
			return NoIdentity
		}
		graph := v.Graph
		if graph == nil {
			graph = s.defaultGraph
		}
		return s.strategy.quad(
			s.identityLocked(v.Subject),
			s.identityLocked(v.Predicate),
			s.identityLocked(v.Object),
			s.identityLocked(graph),
		)
	default:
		return NoIdentity
	}
}

// sequentialIdentityLocked deduplicates by content before allocating: a
// foreign term equal to an interned one must not mint a second identity.
func (s *Store) sequentialIdentityLocked(term rdf.Term) int64 {
	switch v := term.(type) {
	case *rdf.BlankNode:
		if v == nil {
			return NoIdentity
		}
		return s.tabs.ids[s.internBlankNodeLocked(v.ID)]
	case *rdf.NamedNode:
		if v == nil {
			return NoIdentity
		}
		return s.tabs.ids[s.internNamedNodeLocked(v.IRI)]
	case *rdf.Literal:
		if v == nil {
			return NoIdentity
		}
		l, err := s.internLiteralNormalizedLocked(v.Value, v.Language, v.Datatype)
		if err != nil {
			return NoIdentity
		}
		return s.tabs.ids[l]
	case *rdf.Quad:
		if v == nil {
			return NoIdentity
		}
		sub := s.sequentialComponentLocked(v.Subject)
		pred := s.sequentialComponentLocked(v.Predicate)
		obj := s.sequentialComponentLocked(v.Object)
		graph := v.Graph
		if graph == nil {
			graph = s.defaultGraph
		}
		gr := s.sequentialComponentLocked(graph)
		if sub == nil || pred == nil || obj == nil || gr == nil {
			return NoIdentity
		}
		return s.tabs.ids[s.internQuadLocked(sub, pred, obj, gr)]
	default:
		return NoIdentity
	}
}

func (s *Store) sequentialComponentLocked(t rdf.Term) rdf.Term {
	c, err := s.internComponentLocked("component", t)
	if err != nil {
		return nil
	}
	return c
}

// FromIdentity returns the interned term assigned the given identity. The
// second result is false for identities this store never issued; that is an
// expected outcome (identities may come from another store), not an error.
func (s *Store) FromIdentity(id int64) (rdf.Term, bool) {
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	t, ok := s.tabs.byID[id]
	return t, ok
}

// Counts returns the number of interned terms and quads.
func (s *Store) Counts() (terms, quads int) {
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()
	terms = len(s.tabs.blankNodes) + len(s.tabs.namedNodes) + len(s.tabs.literals)
	quads = len(s.tabs.quads)
	return terms, quads
}
