package randutil

import (
	"math/rand"

	"github.com/bszcz/mt19937_64"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand driven by a 64-bit Mersenne Twister seeded
// deterministically from seed, so generated positions reproduce across runs
// and platforms.
func New(seed int64) *rand.Rand {
	src := mt19937_64.New()
	src.Seed(int64(mix(uint64(seed) + goldenRatio64)))
	return rand.New(src)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
