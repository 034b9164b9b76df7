package engine

import (
	"math"
	"testing"
	"time"

	noise "soundstage/internal/math"
	"soundstage/pkg/config"
	"soundstage/pkg/synth"
)

func testBed(t *testing.T) *synth.Bed {
	t.Helper()
	bed, err := synth.BuildAmbientBed(testRate, 0.5, noise.NewNoiseGenerator(5))
	if err != nil {
		t.Fatal(err)
	}
	return bed
}

func startTestSession(t *testing.T, g *Graph, fadeIn time.Duration) *Session {
	t.Helper()
	s, err := StartSession(g, testBed(t), SessionParams{
		Theme:   config.ThemeDark,
		Profile: config.ThemeConfig{LowpassHz: 800, Q: 0.5},
		Level:   0.3,
		Master:  0.5,
		FadeIn:  fadeIn,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSessionFadeIn(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, time.Second)

	if s.State() != SessionPlaying || s.Gain() != 0 {
		t.Fatalf("new session: state %s gain %v", s.State(), s.Gain())
	}

	g.Stream(make([][2]float64, testRate.N(500*time.Millisecond)))
	if math.Abs(s.Gain()-0.075) > 1e-9 {
		t.Errorf("halfway gain = %v, want 0.075", s.Gain())
	}

	g.Stream(make([][2]float64, testRate.N(time.Second)))
	if math.Abs(s.Gain()-0.15) > 1e-12 {
		t.Errorf("final gain = %v, want 0.15", s.Gain())
	}
}

func TestSessionLoops(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, 0)

	// Several bed lengths
	buf := make([][2]float64, testRate.N(2*time.Second))
	g.Stream(buf)
	if s.State() != SessionPlaying || g.ActiveVoices() != 1 {
		t.Errorf("looping bed ended: state %s voices %d", s.State(), g.ActiveVoices())
	}
	if silent(buf[len(buf)-100:]) {
		t.Error("bed silent after wrapping")
	}
}

func TestSessionSetVolume(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, 2*time.Second)

	s.SetVolume(1)
	if math.Abs(s.Gain()-0.3) > 1e-12 {
		t.Errorf("gain = %v, want 0.3", s.Gain())
	}
	g.Stream(make([][2]float64, 1000))
	if math.Abs(s.Gain()-0.3) > 1e-12 {
		t.Errorf("SetVolume should cancel the fade-in, gain = %v", s.Gain())
	}
}

func TestSessionStopIdempotent(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, 0)
	g.Stream(make([][2]float64, 500))

	if !s.Stop() {
		t.Error("first Stop should report true")
	}
	if s.Stop() {
		t.Error("second Stop should be a no-op")
	}
	if s.State() != SessionIdle || g.ActiveVoices() != 0 {
		t.Errorf("after Stop: state %s voices %d", s.State(), g.ActiveVoices())
	}
	if s.cursor.Position() != 0 {
		t.Errorf("cursor at %d, want rewound to 0", s.cursor.Position())
	}

	s.SetVolume(1)
	if s.Gain() == 0.3 {
		t.Error("SetVolume on an idle session should do nothing")
	}
}

func TestSessionRelease(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, 0)

	s.Release(300 * time.Millisecond)
	if s.State() != SessionStopping {
		t.Fatalf("state = %s, want stopping", s.State())
	}
	if g.ActiveVoices() != 1 {
		t.Fatal("released bed should keep playing during the fade")
	}

	g.Stream(make([][2]float64, testRate.N(400*time.Millisecond)))
	if s.State() != SessionIdle || g.ActiveVoices() != 0 {
		t.Errorf("after fade: state %s voices %d", s.State(), g.ActiveVoices())
	}
}

func TestSessionReleaseWithoutFade(t *testing.T) {
	g := newRunningGraph(t)
	s := startTestSession(t, g, 0)
	s.Release(0)
	if s.State() != SessionIdle || g.ActiveVoices() != 0 {
		t.Errorf("hard release: state %s voices %d", s.State(), g.ActiveVoices())
	}
}
