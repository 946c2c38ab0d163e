package termstore

import (
	"fmt"

	"github.com/aleksaelezovic/termgo/internal/encoding"
	"github.com/aleksaelezovic/termgo/pkg/rdf"
	"github.com/aleksaelezovic/termgo/pkg/storage"
)

// Meta table keys.
var (
	metaMode         = []byte("mode")
	metaSeedBase     = []byte("seedBase")
	metaNextID       = []byte("nextID")
	metaBlankCounter = []byte("blankCounter")
)

// Snapshot persists the store's entire term universe: configuration,
// counters, every interned term keyed by identity, and every quad as its four
// component identities. A store restored from the snapshot reproduces the
// same identities in both regimes.
func (s *Store) Snapshot(st storage.Storage) error {
	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()

	txn, err := st.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := s.writeMetaLocked(txn); err != nil {
		return err
	}

	for term, id := range s.tabs.ids {
		if q, ok := term.(*rdf.Quad); ok {
			ids := s.tabs.ids
			rec := encoding.EncodeQuadComponents(ids[q.Subject], ids[q.Predicate], ids[q.Object], ids[q.Graph])
			if err := txn.Set(storage.TableQuads, encoding.EncodeID(id), rec); err != nil {
				return err
			}
			continue
		}
		rec, err := encoding.EncodeTerm(term)
		if err != nil {
			return fmt.Errorf("failed to encode term %s: %w", term, err)
		}
		if err := txn.Set(storage.TableTerms, encoding.EncodeID(id), rec); err != nil {
			return err
		}
	}

	return txn.Commit()
}

func (s *Store) writeMetaLocked(txn storage.Transaction) error {
	if err := txn.Set(storage.TableMeta, metaMode, encoding.EncodeCounter(uint64(s.mode))); err != nil { // #nosec G115 - Mode is a small enum
		return err
	}
	if err := txn.Set(storage.TableMeta, metaSeedBase, encoding.EncodeCounter(s.seedBase)); err != nil {
		return err
	}
	var next uint64
	if seq, ok := s.strategy.(*sequentialStrategy); ok {
		next = uint64(seq.next) // #nosec G115 - counter starts at 1 and only increments
	}
	if err := txn.Set(storage.TableMeta, metaNextID, encoding.EncodeCounter(next)); err != nil {
		return err
	}
	return txn.Set(storage.TableMeta, metaBlankCounter, encoding.EncodeCounter(s.blankCounter))
}

// Restore builds a store from a snapshot, reproducing its identity regime,
// seed base, counters and every interned term and quad. Options such as
// WithLiteralParser still apply; mode and seed base always come from the
// snapshot.
func Restore(st storage.Storage, opts ...Option) (*Store, error) {
	txn, err := st.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	mode, err := readCounter(txn, metaMode)
	if err != nil {
		return nil, fmt.Errorf("snapshot has no metadata: %w", err)
	}
	seedBase, err := readCounter(txn, metaSeedBase)
	if err != nil {
		return nil, err
	}
	nextID, err := readCounter(txn, metaNextID)
	if err != nil {
		return nil, err
	}
	blankCounter, err := readCounter(txn, metaBlankCounter)
	if err != nil {
		return nil, err
	}

	restored := make([]Option, 0, len(opts)+2)
	restored = append(restored, opts...)
	restored = append(restored, WithMode(Mode(mode)), WithSeedBase(seedBase)) // #nosec G115 - persisted by writeMetaLocked
	s := newStore(restored...)
	s.blankCounter = blankCounter
	if seq, ok := s.strategy.(*sequentialStrategy); ok {
		seq.next = int64(nextID) // #nosec G115 - persisted by writeMetaLocked
	}

	s.tabs.mu.Lock()
	defer s.tabs.mu.Unlock()

	if err := s.loadTermsLocked(txn); err != nil {
		return nil, err
	}
	if err := s.loadQuadsLocked(txn); err != nil {
		return nil, err
	}

	// Idempotent when the snapshot already holds the well-known nodes, which
	// every store written by Snapshot does.
	s.xsdString = s.internNamedNodeLocked(rdf.XSDString.IRI)
	s.langString = s.internNamedNodeLocked(rdf.RDFLangString.IRI)
	s.defaultGraph = s.internNamedNodeLocked(rdf.DefaultGraphIRI)

	return s, nil
}

func readCounter(txn storage.Transaction, key []byte) (uint64, error) {
	buf, err := txn.Get(storage.TableMeta, key)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeCounter(buf)
}

// loadTermsLocked restores nodes first and literals second, so every
// literal's datatype resolves to a canonical node already in the tables.
func (s *Store) loadTermsLocked(txn storage.Transaction) error {
	type pending struct {
		id  int64
		lit *rdf.Literal
	}
	var literals []pending

	it, err := txn.Scan(storage.TableTerms)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		id, err := encoding.DecodeID(it.Key())
		if err != nil {
			return err
		}
		buf, err := it.Value()
		if err != nil {
			return err
		}
		term, err := encoding.DecodeTerm(buf)
		if err != nil {
			return fmt.Errorf("failed to decode term %d: %w", id, err)
		}

		switch v := term.(type) {
		case *rdf.BlankNode:
			s.tabs.blankNodes[v.ID] = v
			s.tabs.record(v, id)
		case *rdf.NamedNode:
			s.tabs.namedNodes[v.IRI] = v
			s.tabs.record(v, id)
		case *rdf.Literal:
			literals = append(literals, pending{id: id, lit: v})
		}
	}

	for _, p := range literals {
		datatypeIRI := rdf.XSDString.IRI
		if p.lit.Datatype != nil {
			datatypeIRI = p.lit.Datatype.IRI
		}
		datatype, ok := s.tabs.namedNodes[datatypeIRI]
		if !ok {
			return fmt.Errorf("literal %d references unknown datatype %s: %w", p.id, datatypeIRI, storage.ErrNotFound)
		}
		lit := &rdf.Literal{Value: p.lit.Value, Language: p.lit.Language, Datatype: datatype}
		s.tabs.literals[literalKey(lit.Value, lit.Language, datatypeIRI)] = lit
		s.tabs.record(lit, p.id)
	}
	return nil
}

func (s *Store) loadQuadsLocked(txn storage.Transaction) error {
	it, err := txn.Scan(storage.TableQuads)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		id, err := encoding.DecodeID(it.Key())
		if err != nil {
			return err
		}
		buf, err := it.Value()
		if err != nil {
			return err
		}
		sub, pred, obj, graph, err := encoding.DecodeQuadComponents(buf)
		if err != nil {
			return fmt.Errorf("failed to decode quad %d: %w", id, err)
		}

		components := make([]rdf.Term, 4)
		for i, cid := range []int64{sub, pred, obj, graph} {
			c, ok := s.tabs.byID[cid]
			if !ok {
				return fmt.Errorf("quad %d references unknown term %d: %w", id, cid, storage.ErrNotFound)
			}
			components[i] = c
		}

		q := rdf.NewQuad(components[0], components[1], components[2], components[3])
		s.tabs.quads[quadKey(sub, pred, obj, graph)] = q
		s.tabs.record(q, id)
	}
	return nil
}
