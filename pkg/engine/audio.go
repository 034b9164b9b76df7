package engine

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"
)

const numChannels = 2

// PortAudioBackend plays the graph through the default PortAudio output
type PortAudioBackend struct {
	mu          sync.Mutex
	stream      *portaudio.Stream
	src         beep.Streamer
	buffer      [][2]float64
	initialized bool
}

// NewPortAudioBackend creates an unopened PortAudio backend
func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

func (pa *PortAudioBackend) Name() string { return "portaudio" }

// Open initializes PortAudio and opens the default output stream
func (pa *PortAudioBackend) Open(rate beep.SampleRate, framesPerBuffer int, src beep.Streamer) error {
	pa.mu.Lock()
	defer pa.mu.Unlock()

	if pa.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	pa.initialized = true

	pa.src = src
	pa.buffer = make([][2]float64, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, numChannels, float64(rate), framesPerBuffer, pa.audioCallback)
	if err != nil {
		portaudio.Terminate()
		pa.initialized = false
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	pa.stream = stream
	return nil
}

// audioCallback is called by PortAudio to fill the interleaved output buffer
func (pa *PortAudioBackend) audioCallback(out []float32) {
	frames := len(out) / numChannels
	if cap(pa.buffer) < frames {
		pa.buffer = make([][2]float64, frames)
	}
	buf := pa.buffer[:frames]

	n, _ := pa.src.Stream(buf)
	for i := 0; i < frames; i++ {
		if i >= n {
			out[i*numChannels] = 0
			out[i*numChannels+1] = 0
			continue
		}
		out[i*numChannels] = float32(buf[i][0])
		out[i*numChannels+1] = float32(buf[i][1])
	}
}

func (pa *PortAudioBackend) Resume() error {
	pa.mu.Lock()
	defer pa.mu.Unlock()
	if pa.stream == nil {
		return fmt.Errorf("audio stream not open")
	}
	if err := pa.stream.Start(); err != nil {
		return fmt.Errorf("failed to start audio stream: %w", err)
	}
	return nil
}

func (pa *PortAudioBackend) Suspend() error {
	pa.mu.Lock()
	defer pa.mu.Unlock()
	if pa.stream == nil {
		return nil
	}
	if err := pa.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop audio stream: %w", err)
	}
	return nil
}

// Close stops the stream and terminates PortAudio
func (pa *PortAudioBackend) Close() error {
	pa.mu.Lock()
	defer pa.mu.Unlock()

	var firstErr error
	if pa.stream != nil {
		pa.stream.Stop()
		if err := pa.stream.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close audio stream: %w", err)
		}
		pa.stream = nil
	}
	if pa.initialized {
		if err := portaudio.Terminate(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		pa.initialized = false
	}
	return firstErr
}
