package engine

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"soundstage/internal/logger"
	"soundstage/pkg/config"
)

const testRate = beep.SampleRate(8000)

// constant streams value on both channels forever
type constant float64

func (c constant) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = float64(c)
		samples[i][1] = float64(c)
	}
	return len(samples), true
}

func (c constant) Err() error { return nil }

// deviceBackend behaves like a real device: not offline, and Open can fail
type deviceBackend struct {
	mu       sync.Mutex
	failOpen int
	opens    int
}

func (b *deviceBackend) Name() string { return "device" }

func (b *deviceBackend) Open(beep.SampleRate, int, beep.Streamer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opens++
	if b.failOpen > 0 {
		b.failOpen--
		return errors.New("no output device")
	}
	return nil
}

func (b *deviceBackend) Resume() error  { return nil }
func (b *deviceBackend) Suspend() error { return nil }
func (b *deviceBackend) Close() error   { return nil }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Audio.Backend = config.BackendNone
	cfg.Audio.SampleRate = int(testRate)
	cfg.Audio.FramesPerBuffer = 256
	cfg.Audio.Seed = 42
	cfg.Music.BedSeconds = 1
	return cfg
}

type testEngine struct {
	*Engine
	clock   *ManualClock
	backend *NullBackend
	logs    *bytes.Buffer
}

func newTestEngine(t *testing.T, mutate func(*config.Config)) *testEngine {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	var logs bytes.Buffer
	log := logger.NewLogger("debug")
	log.EnableColors(false)
	log.SetOutput(&logs)

	clock := NewManualClock(time.Unix(0, 0))
	backend := NewNullBackend()
	e := New(cfg, log, WithBackend(backend), WithScheduler(clock))
	t.Cleanup(func() { e.Close() })

	return &testEngine{Engine: e, clock: clock, backend: backend, logs: &logs}
}

func (te *testEngine) render(t *testing.T, d time.Duration) [][2]float64 {
	t.Helper()
	out, err := te.Render(d)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func silent(frames [][2]float64) bool {
	for _, f := range frames {
		if f[0] != 0 || f[1] != 0 {
			return false
		}
	}
	return true
}
