package genotype

import (
	"math/rand/v2"

	"dinoevo/internal/config"
)

// NewRNG returns the ChaCha8 stream seeded from a seed string.
func NewRNG(seed string) (*rand.Rand, *rand.ChaCha8) {
	src := rand.NewChaCha8(config.SeedBytes(seed))
	return rand.New(src), src
}

// uniform draws from [lo, hi]; a collapsed range returns lo without consuming the stream.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// intRange draws from [lo, hi); lo is returned when the range is empty.
func intRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo)
}

func randomElement[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

// removeMarked drops the indexes in marked, which refer to positions in the
// original slice and must be ascending.
func removeMarked[T any](values []T, marked []int) []T {
	if len(marked) == 0 {
		return values
	}
	out := make([]T, 0, len(values)-len(marked))
	next := 0
	for i, v := range values {
		if next < len(marked) && marked[next] == i {
			next++
			continue
		}
		out = append(out, v)
	}
	return out
}
