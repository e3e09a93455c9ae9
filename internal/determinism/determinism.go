// Package determinism provides the kernel's single source of randomness and
// canonical ordering. Every stochastic decision in the kernel derives from
// mix64/u01FromU64 or from a per-country *rand.Rand seeded via CountrySeed —
// never from time.Now, crypto/rand, or an unseeded global generator. See
// spec.md §4.12.
package determinism

import (
	"math"
	"math/rand"
	"sort"
)

// Mix64 is splitmix64: a fast, well-distributed 64-bit hash used to turn a
// (worldSeed, year, cell, salt) tuple into a pseudo-random stream position
// without any hidden state.
func Mix64(k uint64) uint64 {
	k += 0x9E3779B97F4A7C15
	z := k
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// U01FromU64 maps a 64-bit hash to a uniform double in [0, 1) using the top
// 53 bits, matching IEEE-754 double precision.
func U01FromU64(u uint64) float64 {
	return float64(u>>11) * (1.0 / (1 << 53))
}

// Salt values distinguish independent hashed-noise streams that otherwise
// share the same (worldSeed, year, cell) key.
const (
	SaltWeatherTemp uint64 = 0xA5A5A5A5A5A5A5A5
	SaltWeatherPrec uint64 = 0x5A5A5A5A5A5A5A5A
	SaltDiscovery   uint64 = 0xD15C0BE47ABCDEF1
	SaltCityStreak  uint64 = 0xC17790011A22B33C
	SaltGreatPerson uint64 = 0x67EA7BE6507501CE
	SaltCulture     uint64 = 0x3B9ACA0073AB1E55
	SaltWarGoal     uint64 = 0x5741525f474f414c
)

// mix64Combine folds additional 64-bit terms into one key with large odd
// multipliers (per spec's "hashed noise" construction), then runs Mix64.
func mix64Combine(terms ...uint64) uint64 {
	const m1 = 0x9E3779B97F4A7C15
	const m2 = 0xD1B54A32D192ED03
	k := uint64(0)
	for i, t := range terms {
		if i%2 == 0 {
			k ^= t * m1
		} else {
			k ^= t * m2
		}
	}
	return Mix64(k)
}

// HashedUnit returns u01(mix64(worldSeed ⊕ year·m1 ⊕ cell·m2 ⊕ salt)) as
// specified for weather/discovery noise: deterministic given its inputs,
// independent of iteration order or thread scheduling.
func HashedUnit(worldSeed uint64, year int, cellIndex int, salt uint64) float64 {
	const m1 = 0x9E3779B97F4A7C15
	const m2 = 0xD1B54A32D192ED03
	k := worldSeed ^ uint64(int64(year))*m1 ^ uint64(int64(cellIndex))*m2 ^ salt
	return U01FromU64(Mix64(k))
}

// HashedUnitN is HashedUnit generalized to an arbitrary tuple of integer
// keys, used wherever the noise depends on more than (year, cell) — e.g.
// (country, tech, year) discovery rolls.
func HashedUnitN(worldSeed uint64, salt uint64, keys ...int) float64 {
	terms := make([]uint64, 0, len(keys)+2)
	terms = append(terms, worldSeed, salt)
	for _, k := range keys {
		terms = append(terms, uint64(int64(k)))
	}
	return U01FromU64(mix64Combine(terms...))
}

// CountrySeed derives the per-country RNG seed required by §4.12: each
// country holds an rng seeded by worldSeed ^ countryIndex*0x9E3779B97F4A7C15.
func CountrySeed(worldSeed uint64, countryIndex int) uint64 {
	return worldSeed ^ (uint64(countryIndex) * 0x9E3779B97F4A7C15)
}

// NewCountryRNG builds the deterministic per-country generator.
func NewCountryRNG(worldSeed uint64, countryIndex int) *rand.Rand {
	return rand.New(rand.NewSource(int64(CountrySeed(worldSeed, countryIndex))))
}

// Clamp01 clamps x to [0, 1], used pervasively by numeric guards (§7).
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SafeDiv guards every division's denominator to be >= 1e-9 in magnitude,
// per §7's numerical-guard contract.
func SafeDiv(num, den float64) float64 {
	if den < 0 {
		if den > -1e-9 {
			den = -1e-9
		}
	} else if den < 1e-9 {
		den = 1e-9
	}
	return num / den
}

// Sigmoid evaluates the logistic function with the §7 saturation guard:
// arguments beyond +/-20 are clamped to avoid floating point underflow and
// to give exact 0/1 at the extremes, as the spec requires.
func Sigmoid(x float64) float64 {
	if x > 20 {
		return 1
	}
	if x < -20 {
		return 0
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

// SortedIntKeys returns the keys of m in ascending order — the canonical
// iteration order required whenever a Go map (unordered by language spec)
// backs a piece of kernel state.
func SortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// CanonicalKey is the (population desc, row asc, column asc) sort key
// required by §4.12 for any selection over an unordered container.
type CanonicalKey struct {
	Population float64
	Row        int
	Col        int
}

// SortCanonical sorts items by population(desc), row(asc), col(asc).
func SortCanonical[T any](items []T, key func(T) CanonicalKey) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if a.Population != b.Population {
			return a.Population > b.Population
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
}

// PairKey returns the canonical (min,max) ordering for an unordered country
// pair, used for neighbor iteration order (§5).
func PairKey(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}
