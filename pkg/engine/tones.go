package engine

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	noise "soundstage/internal/math"
	"soundstage/pkg/synth"
)

const (
	beepAttack  = 10 * time.Millisecond
	sweepAttack = 100 * time.Millisecond

	vibratoRate  = 20.0  // Hz
	vibratoDepth = 100.0 // Hz

	noiseQ = 1.0
)

// ToneGenerator creates fire-and-forget one-shot voices
type ToneGenerator interface {
	Beep(freqHz float64, duration time.Duration, volume float64) error
	FilteredNoise(volume float64, duration time.Duration, filter synth.FilterType, cutoffHz float64) error
	Sweep(startHz, endHz float64, duration time.Duration, volume float64) error
	ModulatedTone(carrierHz float64, duration time.Duration, volume float64) error
}

// Tones builds one-shot voices on a graph. Volumes are multiplied by the
// master volume when the voice is created and are not updated afterwards.
type Tones struct {
	graph  *Graph
	noise  *noise.NoiseGenerator
	master func() float64
}

// NewTones creates a tone generator for g. master reports the current master
// volume in [0, 1].
func NewTones(g *Graph, ng *noise.NoiseGenerator, master func() float64) *Tones {
	if master == nil {
		master = func() float64 { return 1 }
	}
	return &Tones{graph: g, noise: ng, master: master}
}

func (t *Tones) ready(duration time.Duration) error {
	if t == nil || t.graph == nil {
		return ErrGraphUnavailable
	}
	if duration <= 0 {
		return fmt.Errorf("invalid duration %v", duration)
	}
	return nil
}

// Beep plays a sine tone with a short attack and exponential decay
func (t *Tones) Beep(freqHz float64, duration time.Duration, volume float64) error {
	if err := t.ready(duration); err != nil {
		return err
	}
	rate := t.graph.SampleRate()
	sine, err := generators.SineTone(rate, freqHz)
	if err != nil {
		return fmt.Errorf("beep at %v Hz: %w", freqHz, err)
	}
	env := synth.NewEnvelope(beep.Take(rate.N(duration), sine), rate, volume*t.master(), beepAttack, duration)
	_, err = t.graph.Play(VoiceTone, env, nil)
	return err
}

// FilteredNoise plays white noise through a biquad at constant gain
func (t *Tones) FilteredNoise(volume float64, duration time.Duration, filter synth.FilterType, cutoffHz float64) error {
	if err := t.ready(duration); err != nil {
		return err
	}
	if t.noise == nil {
		return fmt.Errorf("%w: no noise source", ErrGraphUnavailable)
	}
	rate := t.graph.SampleRate()
	burst := synth.NewNoiseBurst(rate, duration, t.noise)
	filtered := synth.NewBiquad(burst, rate, filter, cutoffHz, noiseQ)
	_, err := t.graph.Play(VoiceNoise, synth.NewVolume(filtered, volume*t.master()), nil)
	return err
}

// Sweep plays a sawtooth gliding exponentially from startHz to endHz
func (t *Tones) Sweep(startHz, endHz float64, duration time.Duration, volume float64) error {
	if err := t.ready(duration); err != nil {
		return err
	}
	rate := t.graph.SampleRate()
	osc := synth.NewOscillator(rate, synth.WaveSaw, synth.ExpSweep(startHz, endHz, duration), duration)
	env := synth.NewEnvelope(osc, rate, volume*t.master(), sweepAttack, duration)
	_, err := t.graph.Play(VoiceTone, env, nil)
	return err
}

// ModulatedTone plays a sawtooth carrier with 20 Hz vibrato of ±100 Hz
func (t *Tones) ModulatedTone(carrierHz float64, duration time.Duration, volume float64) error {
	if err := t.ready(duration); err != nil {
		return err
	}
	rate := t.graph.SampleRate()
	osc := synth.NewOscillator(rate, synth.WaveSaw, synth.Vibrato(carrierHz, vibratoRate, vibratoDepth), duration)
	env := synth.NewEnvelope(osc, rate, volume*t.master(), sweepAttack, duration)
	_, err := t.graph.Play(VoiceTone, env, nil)
	return err
}
