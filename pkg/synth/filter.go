package synth

import (
	"math"

	"github.com/gopxl/beep"
)

// FilterType selects the biquad response
type FilterType int

const (
	Lowpass FilterType = iota
	Bandpass
	Highpass
)

func (f FilterType) String() string {
	switch f {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// Biquad is a second-order IIR filter (RBJ cookbook) with per-channel state
type Biquad struct {
	streamer beep.Streamer
	kind     FilterType

	b0, b1, b2, a1, a2 float64

	x1, x2, y1, y2 [2]float64
}

// NewBiquad wraps s with a filter of the given type, cutoff and Q
func NewBiquad(s beep.Streamer, rate beep.SampleRate, kind FilterType, cutoffHz, q float64) *Biquad {
	nyquist := float64(rate) / 2
	if cutoffHz <= 0 {
		cutoffHz = 1
	}
	if cutoffHz > nyquist*0.99 {
		cutoffHz = nyquist * 0.99
	}
	if q <= 0 {
		q = 1
	}

	w := 2.0 * math.Pi * cutoffHz / float64(rate)
	cosw := math.Cos(w)
	alpha := math.Sin(w) / (2.0 * q)

	var b0, b1, b2 float64
	switch kind {
	case Highpass:
		b0 = (1.0 + cosw) / 2.0
		b1 = -(1.0 + cosw)
		b2 = (1.0 + cosw) / 2.0
	case Bandpass:
		// Constant 0 dB peak gain
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1.0 - cosw) / 2.0
		b1 = 1.0 - cosw
		b2 = (1.0 - cosw) / 2.0
	}
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw
	a2 := 1.0 - alpha

	return &Biquad{
		streamer: s,
		kind:     kind,
		b0:       b0 / a0,
		b1:       b1 / a0,
		b2:       b2 / a0,
		a1:       a1 / a0,
		a2:       a2 / a0,
	}
}

func (f *Biquad) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			x := samples[i][c]
			y := f.b0*x + f.b1*f.x1[c] + f.b2*f.x2[c] - f.a1*f.y1[c] - f.a2*f.y2[c]
			f.x2[c], f.x1[c] = f.x1[c], x
			f.y2[c], f.y1[c] = f.y1[c], y
			samples[i][c] = y
		}
	}
	return n, ok
}

func (f *Biquad) Err() error { return f.streamer.Err() }
