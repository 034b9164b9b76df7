package engine

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SpeakerBackend plays the graph through beep's speaker package
type SpeakerBackend struct {
	mu   sync.Mutex
	open bool
}

// NewSpeakerBackend creates an unopened speaker backend
func NewSpeakerBackend() *SpeakerBackend {
	return &SpeakerBackend{}
}

func (s *SpeakerBackend) Name() string { return "speaker" }

func (s *SpeakerBackend) Open(rate beep.SampleRate, framesPerBuffer int, src beep.Streamer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if err := speaker.Init(rate, framesPerBuffer); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	// The graph stays silent until resumed, so holding the device is harmless
	if err := speaker.Suspend(); err != nil {
		speaker.Close()
		return fmt.Errorf("failed to suspend speaker: %w", err)
	}
	speaker.Play(src)
	s.open = true
	return nil
}

func (s *SpeakerBackend) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return fmt.Errorf("speaker not open")
	}
	return speaker.Resume()
}

func (s *SpeakerBackend) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	return speaker.Suspend()
}

func (s *SpeakerBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	s.open = false
	return nil
}
