package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	"soundstage/internal/logger"
	"soundstage/pkg/config"
	"soundstage/pkg/engine"
)

// liveBackend stands in for a device that pulls on its own
type liveBackend struct{}

func (liveBackend) Name() string                                   { return "live" }
func (liveBackend) Open(beep.SampleRate, int, beep.Streamer) error { return nil }
func (liveBackend) Resume() error                                  { return nil }
func (liveBackend) Suspend() error                                 { return nil }
func (liveBackend) Close() error                                   { return nil }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Audio.Backend = config.BackendNone
	cfg.Audio.SampleRate = 8000
	cfg.Audio.Seed = 1
	cfg.Music.BedSeconds = 1
	return cfg
}

func TestShellCommands(t *testing.T) {
	var out bytes.Buffer
	eng := engine.New(testConfig(), nil)
	defer eng.Close()
	sh := newShell(context.Background(), eng, &out)

	tests := []struct {
		line string
		want string
	}{
		{"init", "audio ready"},
		{"volume 40", "volume is 40"},
		{"volume 400", "volume is 100"},
		{"volume loud", "bad volume"},
		{"mute", "muted"},
		{"mute", "unmuted"},
		{"status", "initialized=true"},
		{"dance", "unknown command"},
	}
	for _, tt := range tests {
		out.Reset()
		if sh.exec(tt.line) {
			t.Fatalf("%q asked to quit", tt.line)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%q printed %q, want %q", tt.line, out.String(), tt.want)
		}
	}

	if !sh.exec("quit") {
		t.Error("quit should end the shell")
	}
}

func TestShellMusicAndStop(t *testing.T) {
	var out bytes.Buffer
	eng := engine.New(testConfig(), nil)
	defer eng.Close()
	sh := newShell(context.Background(), eng, &out)

	sh.exec("init")
	sh.exec("music light")
	if st := eng.Status(); st.Theme != config.ThemeLight || st.Session != engine.SessionPlaying {
		t.Errorf("after music: %v", st)
	}
	sh.exec("stop")
	if !eng.IsStopped() {
		t.Error("stop should stop all audio")
	}
	sh.exec("resume")
	if eng.IsStopped() {
		t.Error("resume should clear stopped")
	}
}

func TestInteractiveNeedsLiveBackend(t *testing.T) {
	offline := engine.New(testConfig(), nil)
	defer offline.Close()
	if err := checkInteractive(offline); err == nil {
		t.Error("offline backend should be refused for the shell")
	}

	live := engine.New(testConfig(), nil, engine.WithBackend(liveBackend{}))
	defer live.Close()
	if err := checkInteractive(live); err != nil {
		t.Errorf("live backend refused: %v", err)
	}
}

func TestShellRunUntilEOF(t *testing.T) {
	var out bytes.Buffer
	eng := engine.New(testConfig(), nil)
	defer eng.Close()
	sh := newShell(context.Background(), eng, &out)

	if err := sh.run(strings.NewReader("init\nstatus\n")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "audio ready") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRenderJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders", "launch.wav")
	job := renderJob{Path: path, Script: "both", Theme: "dark", Seconds: 1}

	if err := job.run(context.Background(), testConfig(), logger.NewDiscardLogger()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf.Data) != 2*8000 {
		t.Errorf("decoded %d samples, want %d", len(buf.Data), 2*8000)
	}
}

func TestRenderJobRejectsBadInput(t *testing.T) {
	log := logger.NewDiscardLogger()
	tests := []renderJob{
		{Path: "x.wav", Script: "opera", Seconds: 1},
		{Path: "x.wav", Script: "music", Seconds: 0},
	}
	for _, job := range tests {
		if err := job.run(context.Background(), testConfig(), log); err == nil {
			t.Errorf("%+v: expected error", job)
		}
	}
}
