package engine

import "github.com/gopxl/beep"

// VoiceKind classifies what a voice is playing
type VoiceKind int

const (
	VoiceTone VoiceKind = iota
	VoiceNoise
	VoiceBed
)

func (k VoiceKind) String() string {
	switch k {
	case VoiceTone:
		return "tone"
	case VoiceNoise:
		return "noise"
	case VoiceBed:
		return "bed"
	default:
		return "unknown"
	}
}

// Voice is one live sound in the graph. A voice ends when its streamer is
// drained or when it is stopped, and never plays again afterwards.
// All fields are guarded by the graph lock.
type Voice struct {
	id       uint64
	kind     VoiceKind
	graph    *Graph
	src      beep.Streamer
	onEnd    func()
	stopped  bool
	finished bool
}

// active reports whether the voice is still producing sound
func (v *Voice) active() bool {
	v.graph.mu.Lock()
	defer v.graph.mu.Unlock()
	return !v.stopped && !v.finished
}

// Stop ends the voice. Stopping an ended voice is a no-op that returns false.
func (v *Voice) Stop() bool {
	v.graph.mu.Lock()
	defer v.graph.mu.Unlock()
	return v.stopLocked()
}

func (v *Voice) stopLocked() bool {
	if v.stopped || v.finished {
		return false
	}
	v.stopped = true
	v.end()
	return true
}

func (v *Voice) end() {
	delete(v.graph.voices, v.id)
	if v.onEnd != nil {
		v.onEnd()
	}
}

// Stream is called by the graph mixer with the graph lock held. It keeps
// reading until samples is full or the source drains, since the mixer drops
// a streamer that returns short.
func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.stopped || v.finished {
		return 0, false
	}

	for n < len(samples) {
		sn, sok := v.src.Stream(samples[n:])
		n += sn
		if !sok {
			v.finished = true
			v.end()
			return n, n > 0
		}
		if sn == 0 {
			break
		}
	}
	return n, true
}

func (v *Voice) Err() error { return v.src.Err() }
