package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Waveform defines oscillator wave shapes
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSaw:
		return "sawtooth"
	default:
		return "unknown"
	}
}

// FreqFunc returns the oscillator frequency in Hz at t seconds after start
type FreqFunc func(t float64) float64

// ConstantFreq holds a fixed pitch
func ConstantFreq(hz float64) FreqFunc {
	return func(float64) float64 { return hz }
}

// ExpSweep moves exponentially from start to end over duration, then holds end
func ExpSweep(startHz, endHz float64, duration time.Duration) FreqFunc {
	secs := duration.Seconds()
	if secs <= 0 || startHz <= 0 || endHz <= 0 {
		return ConstantFreq(endHz)
	}
	ratio := endHz / startHz
	return func(t float64) float64 {
		if t >= secs {
			return endHz
		}
		if t <= 0 {
			return startHz
		}
		return startHz * math.Pow(ratio, t/secs)
	}
}

// Vibrato modulates carrierHz by a sine LFO of rateHz with depthHz excursion
func Vibrato(carrierHz, rateHz, depthHz float64) FreqFunc {
	return func(t float64) float64 {
		return carrierHz + depthHz*math.Sin(2*math.Pi*rateHz*t)
	}
}

// Oscillator generates a raw waveform with a time-varying frequency
type Oscillator struct {
	wave   Waveform
	freq   FreqFunc
	rate   beep.SampleRate
	phase  float64
	pos    int
	length int // 0 means unbounded
}

// NewOscillator creates an oscillator lasting duration (0 runs forever)
func NewOscillator(rate beep.SampleRate, wave Waveform, freq FreqFunc, duration time.Duration) *Oscillator {
	return &Oscillator{
		wave:   wave,
		freq:   freq,
		rate:   rate,
		length: rate.N(duration),
	}
}

func (o *Oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.length > 0 && o.pos >= o.length {
		return 0, false
	}

	sr := float64(o.rate)
	for i := range samples {
		if o.length > 0 && o.pos >= o.length {
			return i, true
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq(float64(o.pos)/sr) / sr
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
		o.pos++
	}
	return len(samples), true
}

func (o *Oscillator) Err() error { return nil }
