package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	noise "soundstage/internal/math"
	"soundstage/pkg/synth"
)

func peak(frames [][2]float64) float64 {
	p := 0.0
	for _, f := range frames {
		p = math.Max(p, math.Max(math.Abs(f[0]), math.Abs(f[1])))
	}
	return p
}

func TestTonesRequireGraph(t *testing.T) {
	var tones *Tones
	if err := tones.Beep(440, time.Second, 0.5); !errors.Is(err, ErrGraphUnavailable) {
		t.Errorf("nil Tones err = %v", err)
	}
	tones = NewTones(nil, noise.NewNoiseGenerator(1), nil)
	if err := tones.Sweep(100, 200, time.Second, 0.5); !errors.Is(err, ErrGraphUnavailable) {
		t.Errorf("no graph err = %v", err)
	}
}

func TestTonesRejectBadDuration(t *testing.T) {
	tones := NewTones(newRunningGraph(t), noise.NewNoiseGenerator(1), nil)
	if err := tones.Beep(440, 0, 0.5); err == nil {
		t.Error("zero duration should fail")
	}
}

func TestBeepRejectsPitchAboveNyquist(t *testing.T) {
	g := newRunningGraph(t)
	tones := NewTones(g, noise.NewNoiseGenerator(1), nil)
	if err := tones.Beep(float64(testRate), 100*time.Millisecond, 0.5); err == nil {
		t.Error("beep at the sample rate should fail")
	}
	if g.VoicesCreated() != 0 {
		t.Error("failed beep registered a voice")
	}
}

func TestTonesCreateSelfEndingVoices(t *testing.T) {
	g := newRunningGraph(t)
	tones := NewTones(g, noise.NewNoiseGenerator(1), func() float64 { return 1 })

	calls := []func() error{
		func() error { return tones.Beep(800, 150*time.Millisecond, 0.3) },
		func() error { return tones.FilteredNoise(0.4, 200*time.Millisecond, synth.Lowpass, 150) },
		func() error { return tones.Sweep(80, 200, 300*time.Millisecond, 0.35) },
		func() error { return tones.ModulatedTone(1500, 250*time.Millisecond, 0.2) },
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if g.ActiveVoices() != 4 {
		t.Fatalf("ActiveVoices = %d, want 4", g.ActiveVoices())
	}

	buf := make([][2]float64, testRate.N(400*time.Millisecond))
	g.Stream(buf)
	if silent(buf) {
		t.Error("tones produced no sound")
	}
	if g.ActiveVoices() != 0 {
		t.Errorf("ActiveVoices = %d after every tone ended", g.ActiveVoices())
	}
}

func TestTonesUseMasterAtCreation(t *testing.T) {
	g := newRunningGraph(t)
	master := 0.5
	tones := NewTones(g, noise.NewNoiseGenerator(1), func() float64 { return master })

	if err := tones.Beep(1000, 200*time.Millisecond, 0.5); err != nil {
		t.Fatal(err)
	}
	// Later changes must not reach a tone already playing
	master = 1

	buf := make([][2]float64, testRate.N(200*time.Millisecond))
	g.Stream(buf)
	if p := peak(buf); p > 0.25+1e-9 || p < 0.2 {
		t.Errorf("peak = %v, want close to 0.25", p)
	}
}
