package engine

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"

	"soundstage/pkg/config"
)

// Backend pulls samples from the graph and delivers them somewhere
type Backend interface {
	Name() string
	// Open prepares the device to pull from src; it must not start playback
	Open(rate beep.SampleRate, framesPerBuffer int, src beep.Streamer) error
	Resume() error
	Suspend() error
	Close() error
}

// offliner is implemented by backends that never pull on their own, so the
// graph can be rendered by hand
type offliner interface {
	Offline() bool
}

func isOffline(b Backend) bool {
	o, ok := b.(offliner)
	return ok && o.Offline()
}

// NewBackend returns the backend for a config backend name
func NewBackend(name string) (Backend, error) {
	switch name {
	case config.BackendPortAudio:
		return NewPortAudioBackend(), nil
	case config.BackendSpeaker:
		return NewSpeakerBackend(), nil
	case config.BackendNone:
		return NewNullBackend(), nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", name)
}

// NullBackend drives nothing; the graph is rendered with Engine.Render
type NullBackend struct {
	mu       sync.Mutex
	src      beep.Streamer
	opens    int
	resumes  int
	suspends int
	closed   bool
}

// NewNullBackend creates an offline backend
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Name() string { return config.BackendNone }

func (b *NullBackend) Offline() bool { return true }

func (b *NullBackend) Open(rate beep.SampleRate, framesPerBuffer int, src beep.Streamer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.src = src
	b.opens++
	return nil
}

func (b *NullBackend) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resumes++
	return nil
}

func (b *NullBackend) Suspend() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suspends++
	return nil
}

func (b *NullBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *NullBackend) openCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

func (b *NullBackend) suspendCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.suspends
}
