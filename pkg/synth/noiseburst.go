package synth

import (
	"time"

	"github.com/gopxl/beep"

	noise "soundstage/internal/math"
)

// DeclickTime is the edge ramp applied to noise bursts so they start and stop
// without a click
const DeclickTime = 5 * time.Millisecond

// NoiseBurst plays a pre-generated block of white noise on both channels
type NoiseBurst struct {
	buf     []float64
	declick int
	pos     int
}

// NewNoiseBurst fills a buffer of the given duration from ng
func NewNoiseBurst(rate beep.SampleRate, duration time.Duration, ng *noise.NoiseGenerator) *NoiseBurst {
	n := rate.N(duration)
	if n < 0 {
		n = 0
	}
	buf := make([]float64, n)
	ng.Fill(buf, 1.0)

	declick := rate.N(DeclickTime)
	if declick > n/2 {
		declick = n / 2
	}
	return &NoiseBurst{buf: buf, declick: declick}
}

// Len returns the burst length in frames
func (b *NoiseBurst) Len() int { return len(b.buf) }

func (b *NoiseBurst) edge(pos int) float64 {
	if b.declick <= 0 {
		return 1
	}
	if pos < b.declick {
		return float64(pos) / float64(b.declick)
	}
	if tail := len(b.buf) - 1 - pos; tail < b.declick {
		return float64(tail) / float64(b.declick)
	}
	return 1
}

func (b *NoiseBurst) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= len(b.buf) {
		return 0, false
	}
	for n < len(samples) && b.pos < len(b.buf) {
		v := b.buf[b.pos] * b.edge(b.pos)
		samples[n][0] = v
		samples[n][1] = v
		b.pos++
		n++
	}
	return n, true
}

func (b *NoiseBurst) Err() error { return nil }
