package noise

import (
	"math/rand"
	"sync"
)

// NoiseGenerator is a seeded source of uniform noise for sample generation
type NoiseGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNoiseGenerator creates a new noise generator with the given seed
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Fill writes white noise scaled by amplitude into buf.
// Holding the lock once per buffer keeps long fills cheap.
func (ng *NoiseGenerator) Fill(buf []float64, amplitude float64) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	for i := range buf {
		buf[i] = (ng.rng.Float64()*2.0 - 1.0) * amplitude
	}
}
