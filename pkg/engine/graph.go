package engine

import (
	"fmt"
	"sync"

	"github.com/gopxl/beep"
)

// GraphState is the run state of the output graph
type GraphState int

const (
	GraphSuspended GraphState = iota
	GraphRunning
	GraphClosed
)

func (s GraphState) String() string {
	switch s {
	case GraphSuspended:
		return "suspended"
	case GraphRunning:
		return "running"
	case GraphClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Graph is the output graph: a mixer of live voices pulled by a backend.
// It starts suspended and emits silence until resumed.
//
// mu guards the mixer, the voice set and every streamer reachable from a
// voice, so sessions adjust their faders under the same lock the audio
// callback holds while streaming.
type Graph struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	backend Backend
	mixer   beep.Mixer
	voices  map[uint64]*Voice
	nextID  uint64
	created uint64
	frames  uint64
	state   GraphState
}

// NewGraph creates a suspended graph at rate for backend
func NewGraph(rate beep.SampleRate, backend Backend) *Graph {
	return &Graph{
		rate:    rate,
		backend: backend,
		voices:  make(map[uint64]*Voice),
		state:   GraphSuspended,
	}
}

// open connects the graph to its backend
func (g *Graph) open(framesPerBuffer int) error {
	if g.backend == nil {
		return fmt.Errorf("%w: no backend", ErrGraphUnavailable)
	}
	if err := g.backend.Open(g.rate, framesPerBuffer, g); err != nil {
		return fmt.Errorf("%w: open %s backend: %v", ErrGraphUnavailable, g.backend.Name(), err)
	}
	return nil
}

// SampleRate returns the graph sample rate
func (g *Graph) SampleRate() beep.SampleRate { return g.rate }

// Stream mixes all live voices into samples. It always fills the buffer so a
// device callback never underruns, and never reports the graph drained.
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GraphRunning {
		clear(samples)
		return len(samples), true
	}

	n, _ = g.mixer.Stream(samples)
	clear(samples[n:])

	for i := range samples {
		samples[i][0] = softLimit(samples[i][0])
		samples[i][1] = softLimit(samples[i][1])
	}
	g.frames += uint64(len(samples))
	return len(samples), true
}

func (g *Graph) Err() error { return nil }

// softLimit compresses peaks above 0.8 and hard clips at unity
func softLimit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}

	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return v
}

// Play registers src as a new voice. onEnd runs under the graph lock when the
// voice finishes or is stopped. A graph that is not running takes no voices,
// so nothing queued while suspended can sound on the next resume.
func (g *Graph) Play(kind VoiceKind, src beep.Streamer, onEnd func()) (*Voice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GraphRunning {
		return nil, fmt.Errorf("%w: graph %s", ErrGraphUnavailable, g.state)
	}

	g.nextID++
	v := &Voice{
		id:    g.nextID,
		kind:  kind,
		graph: g,
		src:   src,
		onEnd: onEnd,
	}
	g.voices[v.id] = v
	g.created++
	g.mixer.Add(v)
	return v, nil
}

// StopAll stops every live voice
func (g *Graph) StopAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	stopped := 0
	for _, v := range g.voices {
		if v.stopLocked() {
			stopped++
		}
	}
	g.mixer.Clear()
	return stopped
}

// Resume starts the backend and lets voices play
func (g *Graph) Resume() error {
	g.mu.Lock()
	switch g.state {
	case GraphClosed:
		g.mu.Unlock()
		return fmt.Errorf("%w: graph closed", ErrGraphUnavailable)
	case GraphRunning:
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	// Backend calls stay outside the lock: a device may block until its
	// callback, which takes the lock, has returned.
	if err := g.backend.Resume(); err != nil {
		return fmt.Errorf("%w: resume %s backend: %v", ErrGraphUnavailable, g.backend.Name(), err)
	}

	g.mu.Lock()
	if g.state == GraphSuspended {
		g.state = GraphRunning
	}
	g.mu.Unlock()
	return nil
}

// Suspend silences the graph and pauses the backend
func (g *Graph) Suspend() error {
	g.mu.Lock()
	if g.state != GraphRunning {
		g.mu.Unlock()
		return nil
	}
	g.state = GraphSuspended
	g.mu.Unlock()

	if err := g.backend.Suspend(); err != nil {
		return fmt.Errorf("suspend %s backend: %w", g.backend.Name(), err)
	}
	return nil
}

// Close stops every voice and releases the backend
func (g *Graph) Close() error {
	g.StopAll()

	g.mu.Lock()
	if g.state == GraphClosed {
		g.mu.Unlock()
		return nil
	}
	g.state = GraphClosed
	g.mu.Unlock()

	return g.backend.Close()
}

// activeOf returns the number of live voices of kind
func (g *Graph) activeOf(kind VoiceKind) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, v := range g.voices {
		if v.kind == kind {
			n++
		}
	}
	return n
}

// State returns the current run state
func (g *Graph) State() GraphState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ActiveVoices returns the number of live voices
func (g *Graph) ActiveVoices() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.voices)
}

// VoicesCreated returns the number of voices ever started
func (g *Graph) VoicesCreated() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created
}

// FramesRendered returns the number of frames streamed while running
func (g *Graph) FramesRendered() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}

// locked runs fn while holding the graph lock
func (g *Graph) locked(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
