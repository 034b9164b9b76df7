package synth

import (
	"math"
	"testing"
	"time"
)

func TestOscillatorSine(t *testing.T) {
	osc := NewOscillator(testRate, WaveSine, ConstantFreq(1000), 10*time.Millisecond)
	out := drain(osc, 1000)

	if len(out) != 80 {
		t.Fatalf("len = %d, want 80 frames for 10ms at 8kHz", len(out))
	}
	// 1 kHz at 8 kHz: quarter period is two frames
	if math.Abs(out[2][0]-1.0) > 1e-9 {
		t.Errorf("out[2] = %v, want 1", out[2][0])
	}
	if math.Abs(out[4][0]) > 1e-9 {
		t.Errorf("out[4] = %v, want 0", out[4][0])
	}
	if out[3][0] != out[3][1] {
		t.Error("channels should match")
	}
}

func TestOscillatorSawRange(t *testing.T) {
	osc := NewOscillator(testRate, WaveSaw, ConstantFreq(440), 100*time.Millisecond)
	for i, s := range drain(osc, 10000) {
		if s[0] < -1 || s[0] >= 1 {
			t.Fatalf("sample %d = %v out of [-1, 1)", i, s[0])
		}
	}
}

func TestOscillatorUnbounded(t *testing.T) {
	osc := NewOscillator(testRate, WaveSine, ConstantFreq(100), 0)
	buf := make([][2]float64, 512)
	for i := 0; i < 100; i++ {
		if n, ok := osc.Stream(buf); !ok || n != len(buf) {
			t.Fatalf("unbounded oscillator stopped at chunk %d", i)
		}
	}
}

func TestExpSweep(t *testing.T) {
	f := ExpSweep(100, 400, 2*time.Second)

	tests := []struct {
		t, want float64
	}{
		{-1, 100},
		{0, 100},
		{1, 200}, // geometric midpoint
		{2, 400},
		{5, 400},
	}
	for _, tt := range tests {
		if got := f(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("f(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	if got := ExpSweep(0, 300, time.Second)(0.5); got != 300 {
		t.Errorf("degenerate sweep = %v, want end frequency", got)
	}
}

func TestVibrato(t *testing.T) {
	f := Vibrato(1500, 20, 100)
	if got := f(0); got != 1500 {
		t.Errorf("f(0) = %v, want 1500", got)
	}
	// Quarter LFO period
	if got := f(1.0 / 80); math.Abs(got-1600) > 1e-9 {
		t.Errorf("f(1/80) = %v, want 1600", got)
	}
}
