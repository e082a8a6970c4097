package world

import (
	"hash/fnv"
	"math"
	"math/rand"
)

func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	seedValue := DeterministicSeedValue(rootSeed, label)
	return rand.New(rand.NewSource(seedValue))
}

func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return NewDeterministicRNG(DefaultSeed, "world").Float64()
	}
	return rng.Float64()
}

func RandomAngle(rng *rand.Rand) float64 {
	return RandomFloat(rng) * 2 * math.Pi
}

func RandomDistance(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + RandomFloat(rng)*(max-min)
}

// RandomTileIn draws an integer in [min, max].
func RandomTileIn(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	if rng == nil {
		rng = NewDeterministicRNG(DefaultSeed, "world")
	}
	return min + rng.Intn(max-min+1)
}
