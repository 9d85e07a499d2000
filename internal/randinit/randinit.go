// Package randinit deterministically fills the target buffer before the
// first iteration of any decomposition variant.
package randinit

import (
	"math"

	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/workerpool"
)

// minParallelElements mirrors internal/stats' threshold: below this element
// count, dispatching to the pool costs more than it saves.
const minParallelElements = 4096

// SplitMix64 advances a 64-bit state by one step of the SplitMix64 mixer and
// returns the mixed output. This is the same avalanche mix used to derive
// independent substreams elsewhere in the ecosystem (e.g. TSP heuristics'
// seed derivation); here it drives a deterministic, index-mixed uniform
// fill instead.
func SplitMix64(state uint64) uint64 {
	state += 0x9E3779B97F4A7C15
	z := state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// uniformFloat maps a 64-bit mixed value to a uniform float in [0, 1).
func uniformFloat[T numeric.Float](mixed uint64) T {
	// Keep the top 53 bits, the usable mantissa width of a float64, then
	// normalize. This gives a uniform value regardless of whether T is
	// float32 or float64.
	const mantissaBits = 53
	u := T(float64(mixed>>(64-mantissaBits)) / float64(uint64(1)<<mantissaBits))
	if u >= 1 {
		// Narrowing to float32 can round the largest values up to exactly 1.
		u = T(math.Nextafter32(1, 0))
	}
	return u
}

// Fill writes target in place with values in [-1, 1), deterministic given
// (seed, element index): target[i] = 2*u - 1 where u is derived from
// SplitMix64(seed + seed*i). Writes are parallelized over i via pool; the
// value written for a given i never depends on any other i, so the fill is
// safe under any interleaving.
func Fill[T numeric.Float](pool *workerpool.Pool, target []T, seed uint64) {
	n := len(target)

	write := func(start, end int) {
		for i := start; i < end; i++ {
			mixed := SplitMix64(seed + seed*uint64(i))
			u := uniformFloat[T](mixed)
			target[i] = 2*u - 1
		}
	}

	if pool == nil || n < minParallelElements {
		write(0, n)
		return
	}
	pool.ParallelFor(n, write)
}
