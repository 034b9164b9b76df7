package engine

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"

	"soundstage/pkg/config"
	"soundstage/pkg/synth"
)

// SessionState is the playback state of a background bed
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionPlaying
	SessionStopping
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionPlaying:
		return "playing"
	case SessionStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Session owns one looping bed voice and its gain. Its state is guarded by
// the graph lock because the audio callback ends the session when a release
// fade completes.
type Session struct {
	graph  *Graph
	theme  config.Theme
	level  float64
	cursor *synth.Cursor
	fader  *synth.Fader
	voice  *Voice
	state  SessionState
}

// SessionParams configures a new session
type SessionParams struct {
	Theme   config.Theme
	Profile config.ThemeConfig
	Level   float64 // gain relative to master volume
	Master  float64
	FadeIn  time.Duration
}

// StartSession loops bed through the theme's lowpass and fades it in from
// silence to Level*Master
func StartSession(g *Graph, bed *synth.Bed, p SessionParams) (*Session, error) {
	if g == nil {
		return nil, ErrGraphUnavailable
	}
	if bed == nil || bed.Len() == 0 {
		return nil, fmt.Errorf("%w: empty bed", ErrBufferGeneration)
	}

	rate := g.SampleRate()
	cursor := bed.Cursor()
	var src beep.Streamer = beep.Loop(-1, cursor)
	src = synth.NewBiquad(src, rate, synth.Lowpass, p.Profile.LowpassHz, p.Profile.Q)

	fader := synth.NewFader(src, 0)
	fader.RampTo(p.Level*p.Master, rate.N(p.FadeIn))

	s := &Session{
		graph:  g,
		theme:  p.Theme,
		level:  p.Level,
		cursor: cursor,
		fader:  fader,
		state:  SessionPlaying,
	}

	voice, err := g.Play(VoiceBed, fader, s.ended)
	if err != nil {
		return nil, err
	}
	s.voice = voice
	return s, nil
}

// ended runs under the graph lock when the bed voice stops or drains
func (s *Session) ended() {
	s.state = SessionIdle
}

// Stop halts playback immediately and rewinds the bed. Calling Stop on an
// idle session does nothing and returns false.
func (s *Session) Stop() bool {
	stopped := false
	s.graph.locked(func() {
		if s.voice != nil {
			stopped = s.voice.stopLocked()
		}
		s.cursor.Seek(0)
		s.state = SessionIdle
	})
	return stopped
}

// Release fades the bed out over d and ends it. A zero duration stops at once.
func (s *Session) Release(d time.Duration) {
	frames := s.graph.SampleRate().N(d)
	if frames <= 0 {
		s.Stop()
		return
	}
	s.graph.locked(func() {
		if s.state != SessionPlaying {
			return
		}
		s.fader.Release(frames)
		s.state = SessionStopping
	})
}

// SetVolume sets the gain to level*master at once, cancelling any fade-in
func (s *Session) SetVolume(master float64) {
	s.graph.locked(func() {
		if s.state != SessionPlaying {
			return
		}
		s.fader.Set(s.level * master)
	})
}

// Gain returns the current effective gain of the bed
func (s *Session) Gain() float64 {
	var g float64
	s.graph.locked(func() { g = s.fader.Gain() })
	return g
}

// Fading reports whether a fade in or out is in progress
func (s *Session) Fading() bool {
	var f bool
	s.graph.locked(func() { f = s.fader.Ramping() })
	return f
}

// State returns the session state
func (s *Session) State() SessionState {
	var st SessionState
	s.graph.locked(func() { st = s.state })
	return st
}

// Theme returns the theme the session is playing
func (s *Session) Theme() config.Theme { return s.theme }
