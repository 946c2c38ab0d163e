package termstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aleksaelezovic/termgo/internal/hashing"
	"github.com/aleksaelezovic/termgo/pkg/rdf"
)

func modes(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Helper()
	for name, mode := range map[string]Mode{"hash": HashIdentities, "sequential": SequentialIdentities} {
		t.Run(name, func(t *testing.T) {
			fn(t, New(WithMode(mode)))
		})
	}
}

// ===== Interning Tests =====

func TestNamedNode_Interning(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		node1, err := s.NamedNode("http://example.org/a")
		if err != nil {
			t.Fatalf("failed to create named node: %v", err)
		}
		node2, err := s.NamedNode("http://example.org/a")
		if err != nil {
			t.Fatalf("failed to create named node: %v", err)
		}
		if node1 != node2 {
			t.Error("Expected the identical instance for equal named nodes")
		}

		other, err := s.NamedNode("http://example.org/b")
		if err != nil {
			t.Fatalf("failed to create named node: %v", err)
		}
		if node1 == other {
			t.Error("Expected distinct instances for different IRIs")
		}
	})
}

func TestBlankNode_Interning(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		node1, err := s.BlankNode("x")
		if err != nil {
			t.Fatalf("failed to create blank node: %v", err)
		}
		node2, err := s.BlankNode("x")
		if err != nil {
			t.Fatalf("failed to create blank node: %v", err)
		}
		if node1 != node2 {
			t.Error("Expected the identical instance for equal blank nodes")
		}
	})
}

func TestLiteral_Interning(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		lit1, err := s.Literal("hello")
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		lit2, err := s.Literal("hello")
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		if lit1 != lit2 {
			t.Error("Expected the identical instance for equal literals")
		}

		// Same value under a language tag is a different literal
		litLang, err := s.Literal("hello", "en")
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		if lit1 == litLang {
			t.Error("Expected distinct instances for plain vs language-tagged literals")
		}

		// Same value under a different datatype is a different literal
		litTyped, err := s.Literal("hello", rdf.XSDInteger)
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		if lit1 == litTyped || litLang == litTyped {
			t.Error("Expected distinct instances for different datatypes")
		}
	})
}

func TestQuad_Interning(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		sub, _ := s.NamedNode("http://example.org/alice")
		pred, _ := s.NamedNode("http://xmlns.com/foaf/0.1/name")
		obj, _ := s.Literal("Alice")

		quad1, err := s.Quad(sub, pred, obj)
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		quad2, err := s.Quad(sub, pred, obj)
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if quad1 != quad2 {
			t.Error("Expected the identical instance for equal quads")
		}

		g, _ := s.NamedNode("http://example.org/graph1")
		quad3, err := s.Quad(sub, pred, obj, g)
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if quad1 == quad3 {
			t.Error("Expected distinct instances for different graphs")
		}
	})
}

func TestKindSeparation(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		blank, _ := s.BlankNode("x")
		named, _ := s.NamedNode("x")

		if rdf.Term(blank) == rdf.Term(named) {
			t.Error("BlankNode and NamedNode sharing a value must be distinct instances")
		}
		if s.Equal(blank, named) {
			t.Error("BlankNode and NamedNode sharing a value must not compare equal")
		}
	})
}

// ===== Normalization Tests =====

func TestLiteral_Defaulting(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		plain, err := s.Literal("x")
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		if plain.Datatype == nil || plain.Datatype.IRI != "http://www.w3.org/2001/XMLSchema#string" {
			t.Errorf("Expected xsd:string datatype, got %v", plain.Datatype)
		}
		if plain.Language != "" {
			t.Errorf("Expected empty language, got %q", plain.Language)
		}

		tagged, err := s.Literal("x", "en")
		if err != nil {
			t.Fatalf("failed to create literal: %v", err)
		}
		if tagged.Datatype == nil || tagged.Datatype.IRI != rdf.RDFLangString.IRI {
			t.Errorf("Expected rdf:langString datatype, got %v", tagged.Datatype)
		}
		if tagged.Language != "en" {
			t.Errorf("Expected language 'en', got %q", tagged.Language)
		}

		// The default datatype is the store's canonical xsd:string node
		xsdString, _ := s.NamedNode("http://www.w3.org/2001/XMLSchema#string")
		if plain.Datatype != xsdString {
			t.Error("Expected the literal datatype to be the interned xsd:string instance")
		}
	})
}

func TestQuad_DefaultGraph(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		sub, _ := s.NamedNode("http://example.org/s")
		pred, _ := s.NamedNode("http://example.org/p")
		obj, _ := s.Literal("o")

		omitted, err := s.Quad(sub, pred, obj)
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if omitted.Graph != rdf.Term(s.DefaultGraph()) {
			t.Error("Expected the default graph node for an omitted graph")
		}

		// Explicitly passing the default graph yields the same quad
		explicit, err := s.Quad(sub, pred, obj, s.DefaultGraph())
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if omitted != explicit {
			t.Error("Expected omitted and explicit default graph to produce the same quad")
		}

		g, _ := s.NamedNode("http://example.org/g")
		named, err := s.Quad(sub, pred, obj, g)
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if named.Graph != rdf.Term(g) {
			t.Error("Expected the supplied graph to be retained")
		}
	})
}

func TestQuad_ReinternsForeignComponents(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		canonical, _ := s.NamedNode("http://example.org/s")
		pred, _ := s.NamedNode("http://example.org/p")

		// Hand-built components are replaced by canonical instances
		quad, err := s.Quad(rdf.NewNamedNode("http://example.org/s"), pred, rdf.NewLiteral("o"))
		if err != nil {
			t.Fatalf("failed to create quad: %v", err)
		}
		if quad.Subject != rdf.Term(canonical) {
			t.Error("Expected the foreign subject to be re-interned")
		}

		obj, ok := quad.Object.(*rdf.Literal)
		if !ok {
			t.Fatalf("Expected a literal object, got %T", quad.Object)
		}
		if obj.Datatype == nil || obj.Datatype.IRI != rdf.XSDString.IRI {
			t.Error("Expected the re-interned literal to get the default datatype")
		}
	})
}

func TestBlankNode_AutoNaming(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		const n = 10
		seen := make(map[*rdf.BlankNode]bool, n)
		for i := 0; i < n; i++ {
			node, err := s.BlankNode()
			if err != nil {
				t.Fatalf("failed to create blank node: %v", err)
			}
			if seen[node] {
				t.Fatalf("auto-named blank node %s repeated", node)
			}
			seen[node] = true
		}
		if len(seen) != n {
			t.Errorf("Expected %d distinct blank nodes, got %d", n, len(seen))
		}
	})
}

// ===== Error Tests =====

func TestInvalidArguments(t *testing.T) {
	s := New()

	if _, err := s.NamedNode(42); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a non-string named node, got %v", err)
	}
	if _, err := s.BlankNode(42); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a non-string blank node, got %v", err)
	}
	if _, err := s.Literal(42); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a non-string literal value, got %v", err)
	}
	if _, err := s.Literal("x", 42); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a numeric language/datatype, got %v", err)
	}

	sub, _ := s.NamedNode("http://example.org/s")
	pred, _ := s.NamedNode("http://example.org/p")
	obj, _ := s.Literal("o")

	if _, err := s.Quad(obj, pred, obj); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a literal subject, got %v", err)
	}
	if _, err := s.Quad(sub, obj, obj); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a literal predicate, got %v", err)
	}
	if _, err := s.Quad(sub, pred, obj, obj); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a literal graph, got %v", err)
	}
	if _, err := s.Quad(nil, pred, obj); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a nil subject, got %v", err)
	}
}

func TestMissingDatatype(t *testing.T) {
	s := New()
	if _, err := s.Literal("x", (*rdf.NamedNode)(nil)); !errors.Is(err, ErrMissingDatatype) {
		t.Errorf("Expected ErrMissingDatatype for a nil datatype, got %v", err)
	}
}

// ===== Literal Parser Tests =====

func TestLiteralValue_StringsAreInterned(t *testing.T) {
	s := New()
	lit1, err := s.LiteralValue("hello")
	if err != nil {
		t.Fatalf("failed to create literal: %v", err)
	}
	lit2, _ := s.Literal("hello")
	if lit1 != lit2 {
		t.Error("Expected string values to go through the interning path")
	}
}

func TestLiteralValue_ParserBypassesInterning(t *testing.T) {
	s := New(WithLiteralParser(NativeLiteralParser{}))

	lit1, err := s.LiteralValue(int64(42))
	if err != nil {
		t.Fatalf("failed to parse literal: %v", err)
	}
	lit2, err := s.LiteralValue(int64(42))
	if err != nil {
		t.Fatalf("failed to parse literal: %v", err)
	}
	if lit1.Value != "42" || lit1.Datatype == nil || lit1.Datatype.IRI != rdf.XSDInteger.IRI {
		t.Errorf("Expected an xsd:integer literal '42', got %s", lit1)
	}
	// Parsed literals skip the canonical-instance cache
	if lit1 == lit2 {
		t.Error("Expected parsed literals to be distinct instances")
	}
}

func TestLiteralValue_NoParserConfigured(t *testing.T) {
	s := New()
	if _, err := s.LiteralValue(int64(42)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument without a parser, got %v", err)
	}
}

// ===== Hash Regime Tests =====

func TestHashIdentity_EndToEnd(t *testing.T) {
	s := New(WithSeedBase(0))

	node1, err := s.NamedNode("http://ex.org/a")
	if err != nil {
		t.Fatalf("failed to create named node: %v", err)
	}
	node2, err := s.NamedNode("http://ex.org/a")
	if err != nil {
		t.Fatalf("failed to create named node: %v", err)
	}
	if node1 != node2 {
		t.Error("Expected the identical instance on repeat creation")
	}

	expected := int64(hashing.Sum32("http://ex.org/a", 2))
	if got := s.Identity(node1); got != expected {
		t.Errorf("Expected identity %d, got %d", expected, got)
	}
}

func TestHashIdentity_ReproducibleAcrossStores(t *testing.T) {
	s1 := New(WithSeedBase(7))
	s2 := New(WithSeedBase(7))

	n1, _ := s1.NamedNode("http://example.org/a")
	n2, _ := s2.NamedNode("http://example.org/a")
	if s1.Identity(n1) != s2.Identity(n2) {
		t.Error("Expected identical identities across stores sharing a seed base")
	}

	l1, _ := s1.Literal("x", "en")
	l2, _ := s2.Literal("x", "en")
	if s1.Identity(l1) != s2.Identity(l2) {
		t.Error("Expected identical literal identities across stores sharing a seed base")
	}
}

func TestHashIdentity_SeedBaseSeparation(t *testing.T) {
	s1 := New(WithSeedBase(0))
	s2 := New(WithSeedBase(1000))

	n1, _ := s1.NamedNode("http://example.org/a")
	n2, _ := s2.NamedNode("http://example.org/a")
	if s1.Identity(n1) == s2.Identity(n2) {
		t.Error("Expected disjoint identities under different seed bases")
	}
}

// ===== Concurrency Tests =====

func TestConcurrentInterning(t *testing.T) {
	modes(t, func(t *testing.T, s *Store) {
		const goroutines = 32
		results := make([]*rdf.NamedNode, goroutines)
		quads := make([]*rdf.Quad, goroutines)

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				node, err := s.NamedNode("http://example.org/shared")
				if err != nil {
					t.Errorf("failed to create named node: %v", err)
					return
				}
				results[i] = node

				pred, _ := s.NamedNode("http://example.org/p")
				obj, _ := s.Literal(fmt.Sprintf("o%d", i%4))
				quad, err := s.Quad(node, pred, obj)
				if err != nil {
					t.Errorf("failed to create quad: %v", err)
					return
				}
				quads[i] = quad
			}(i)
		}
		wg.Wait()

		for i := 1; i < goroutines; i++ {
			if results[i] != results[0] {
				t.Fatal("concurrent interning produced distinct instances for one key")
			}
		}

		distinct := make(map[*rdf.Quad]bool)
		for _, q := range quads {
			distinct[q] = true
		}
		if len(distinct) != 4 {
			t.Errorf("Expected 4 distinct quads, got %d", len(distinct))
		}
	})
}

// ===== Introspection Tests =====

func TestCounts(t *testing.T) {
	s := New()
	terms, quads := s.Counts()
	if terms != 3 || quads != 0 {
		t.Errorf("Expected 3 bootstrap terms and 0 quads, got %d and %d", terms, quads)
	}

	sub, _ := s.NamedNode("http://example.org/s")
	pred, _ := s.NamedNode("http://example.org/p")
	obj, _ := s.Literal("o")
	if _, err := s.Quad(sub, pred, obj); err != nil {
		t.Fatalf("failed to create quad: %v", err)
	}

	terms, quads = s.Counts()
	if terms != 6 || quads != 1 {
		t.Errorf("Expected 6 terms and 1 quad, got %d and %d", terms, quads)
	}
}
