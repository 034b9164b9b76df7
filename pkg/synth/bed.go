package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"

	noise "soundstage/internal/math"
)

// ErrBufferGeneration is returned when an ambient bed cannot be synthesized
var ErrBufferGeneration = errors.New("ambient bed generation failed")

// Partial is one fixed sine component of the ambient bed
type Partial struct {
	Freq float64
	Amp  float64
}

// BedPartials are the drone and harmonic components of every bed
var BedPartials = []Partial{
	{55.0, 0.03},   // drone
	{82.4, 0.02},   // drone
	{110.0, 0.015}, // drone
	{165.0, 0.01},  // harmonic
	{220.0, 0.008}, // harmonic
}

const (
	breathRate    = 0.05 // Hz
	breathBase    = 0.7
	breathDepth   = 0.3
	bedNoiseLevel = 0.0025
	feedbackDelay = 0.3 // seconds
	feedbackGain  = 0.1
	fillChunk     = 4096
)

// Bed is a synthesized stereo buffer that loops as background music
type Bed struct {
	rate   beep.SampleRate
	frames [][2]float64
	peak   float64
}

// BuildAmbientBed synthesizes seconds of ambient bed at rate.
// Noise is drawn from ng, so a seeded generator gives a reproducible bed.
func BuildAmbientBed(rate beep.SampleRate, seconds float64, ng *noise.NoiseGenerator) (bed *Bed, err error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrBufferGeneration, rate)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("%w: invalid duration %v", ErrBufferGeneration, seconds)
	}
	if ng == nil {
		return nil, fmt.Errorf("%w: no noise source", ErrBufferGeneration)
	}

	defer func() {
		if r := recover(); r != nil {
			bed = nil
			err = fmt.Errorf("%w: %v", ErrBufferGeneration, r)
		}
	}()

	n := rate.N(time.Duration(seconds * float64(time.Second)))
	if n <= 0 {
		return nil, fmt.Errorf("%w: duration %vs is shorter than one frame", ErrBufferGeneration, seconds)
	}

	frames := make([][2]float64, n)
	delay := int(feedbackDelay * float64(rate))
	sr := float64(rate)

	noiseL := make([]float64, fillChunk)
	noiseR := make([]float64, fillChunk)
	peak := 0.0

	for start := 0; start < n; start += fillChunk {
		end := start + fillChunk
		if end > n {
			end = n
		}
		ng.Fill(noiseL[:end-start], bedNoiseLevel)
		ng.Fill(noiseR[:end-start], bedNoiseLevel)

		for i := start; i < end; i++ {
			t := float64(i) / sr

			tone := 0.0
			for _, p := range BedPartials {
				tone += p.Amp * math.Sin(2*math.Pi*p.Freq*t)
			}
			breath := breathBase + breathDepth*math.Sin(2*math.Pi*breathRate*t)

			for c, nz := range [2]float64{noiseL[i-start], noiseR[i-start]} {
				v := (tone + nz) * breath
				if i >= delay {
					v += feedbackGain * frames[i-delay][c]
				}
				frames[i][c] = v
				if a := math.Abs(v); a > peak {
					peak = a
				}
			}
		}
	}

	if peak > 1.0 {
		return nil, fmt.Errorf("%w: peak %.3f exceeds headroom", ErrBufferGeneration, peak)
	}

	return &Bed{rate: rate, frames: frames, peak: peak}, nil
}

// Len returns the bed length in frames
func (b *Bed) Len() int { return len(b.frames) }

// SampleRate returns the rate the bed was built at
func (b *Bed) SampleRate() beep.SampleRate { return b.rate }

// Duration returns the bed length as a time
func (b *Bed) Duration() time.Duration { return b.rate.D(len(b.frames)) }

// Peak returns the largest absolute sample value
func (b *Bed) Peak() float64 { return b.peak }

func (b *Bed) frame(i int) [2]float64 { return b.frames[i] }

// Cursor returns a new seekable reader positioned at the start of the bed.
// Each playback needs its own cursor; the bed itself is read-only.
func (b *Bed) Cursor() *Cursor {
	return &Cursor{bed: b}
}

// Cursor streams a Bed and implements beep.StreamSeeker
type Cursor struct {
	bed *Bed
	pos int
}

func (c *Cursor) Stream(samples [][2]float64) (n int, ok bool) {
	if c.pos >= len(c.bed.frames) {
		return 0, false
	}
	n = copy(samples, c.bed.frames[c.pos:])
	c.pos += n
	return n, true
}

func (c *Cursor) Err() error { return nil }

func (c *Cursor) Len() int { return len(c.bed.frames) }

func (c *Cursor) Position() int { return c.pos }

func (c *Cursor) Seek(p int) error {
	if p < 0 || p > len(c.bed.frames) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(c.bed.frames))
	}
	c.pos = p
	return nil
}
