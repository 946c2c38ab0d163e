package termstore

import (
	"strconv"

	"github.com/aleksaelezovic/termgo/internal/hashing"
)

// Mode selects how a Store derives term identities.
type Mode int

const (
	// HashIdentities derives identities from term content with a seeded
	// 32-bit hash. Identities are reproducible across stores and processes
	// that share a seed base.
	HashIdentities Mode = iota

	// SequentialIdentities assigns monotonically increasing identities the
	// first time a distinct value is seen. Cheaper to compute and compare,
	// but identities are meaningful only within the store that issued them.
	SequentialIdentities
)

// NoIdentity is returned by Identity for values that are not terms.
const NoIdentity int64 = -1

// Seed offsets per term kind. Literal seeds additionally fold in the
// language or datatype identity, so equal values under different tags land
// in different buckets.
const (
	seedLanguage  = 0
	seedBlankNode = 1
	seedNamedNode = 2
	seedQuad      = 3
	seedLiteral   = 4
)

// identityStrategy assigns a numeric identity to a term description. The
// store calls it on a cache miss only; repeats are answered from the
// content-key tables without consulting the strategy again.
type identityStrategy interface {
	blankNode(id string) int64
	namedNode(iri string) int64
	literal(value, language string, datatypeID int64) int64
	quad(s, p, o, g int64) int64
}

// hashStrategy computes identities as a pure function of content. It needs
// no state and no synchronization.
type hashStrategy struct {
	seedBase uint64
}

func (h hashStrategy) blankNode(id string) int64 {
	return int64(hashing.Sum32(id, h.seedBase+seedBlankNode))
}

func (h hashStrategy) namedNode(iri string) int64 {
	return int64(hashing.Sum32(iri, h.seedBase+seedNamedNode))
}

func (h hashStrategy) literal(value, language string, datatypeID int64) int64 {
	sel := datatypeID
	if language != "" {
		sel = int64(hashing.Sum32(language, h.seedBase+seedLanguage))
	}
	return int64(hashing.Sum32(value, h.seedBase+seedLiteral+uint64(sel))) // #nosec G115 - sel is a 32-bit hash widened back into the seed
}

func (h hashStrategy) quad(s, p, o, g int64) int64 {
	key := strconv.FormatInt(s, 10) + strconv.FormatInt(p, 10) +
		strconv.FormatInt(o, 10) + strconv.FormatInt(g, 10)
	return int64(hashing.Sum32(key, h.seedBase+seedQuad))
}

// sequentialStrategy hands out the next counter value regardless of content.
// The counter starts at 1 and is never reused. Callers must hold the store
// mutex.
type sequentialStrategy struct {
	next int64
}

func newSequentialStrategy() *sequentialStrategy {
	return &sequentialStrategy{next: 1}
}

func (s *sequentialStrategy) take() int64 {
	id := s.next
	s.next++
	return id
}

func (s *sequentialStrategy) blankNode(string) int64 { return s.take() }

func (s *sequentialStrategy) namedNode(string) int64 { return s.take() }

func (s *sequentialStrategy) literal(string, string, int64) int64 { return s.take() }

func (s *sequentialStrategy) quad(int64, int64, int64, int64) int64 { return s.take() }
