// Package hashing provides the seeded string hash that term identities are
// derived from.
package hashing

import "github.com/zeebo/xxh3"

// Sum32 computes a 32-bit xxhash3 hash of s under the given seed. The same
// (s, seed) pair always yields the same value, across process restarts.
func Sum32(s string, seed uint64) uint32 {
	return uint32(xxh3.HashStringSeed(s, seed))
}
