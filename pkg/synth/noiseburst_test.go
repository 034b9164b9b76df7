package synth

import (
	"testing"
	"time"

	noise "soundstage/internal/math"
)

func TestNoiseBurst(t *testing.T) {
	b := NewNoiseBurst(testRate, 100*time.Millisecond, noise.NewNoiseGenerator(3))
	if b.Len() != 800 {
		t.Fatalf("Len = %d, want 800", b.Len())
	}

	out := drain(b, 10000)
	if len(out) != 800 {
		t.Fatalf("streamed %d frames, want 800", len(out))
	}
	if out[0][0] != 0 || out[len(out)-1][0] != 0 {
		t.Errorf("edges not declicked: first %v last %v", out[0][0], out[len(out)-1][0])
	}

	nonzero := 0
	for _, s := range out {
		if s[0] < -1 || s[0] > 1 {
			t.Fatalf("sample %v out of range", s[0])
		}
		if s[0] != s[1] {
			t.Fatal("noise burst should be mono on both channels")
		}
		if s[0] != 0 {
			nonzero++
		}
	}
	if nonzero < 700 {
		t.Errorf("only %d non-zero samples", nonzero)
	}
}

func TestNoiseBurstDeterministic(t *testing.T) {
	a := drain(NewNoiseBurst(testRate, 20*time.Millisecond, noise.NewNoiseGenerator(9)), 1000)
	b := drain(NewNoiseBurst(testRate, 20*time.Millisecond, noise.NewNoiseGenerator(9)), 1000)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs for equal seeds", i)
		}
	}
}
