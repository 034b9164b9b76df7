package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"soundstage/internal/logger"
	noise "soundstage/internal/math"
	"soundstage/internal/util"
	"soundstage/pkg/config"
	"soundstage/pkg/synth"
)

const (
	testBeepFreq     = 440.0
	testBeepDuration = 500 * time.Millisecond
	testBeepVolume   = 0.3
)

// Option configures an Engine
type Option func(*Engine)

// WithBackend overrides the backend chosen by config
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithScheduler sets the clock the launch sequence runs on
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.clock = s }
}

// WithSeed fixes the noise seed so output is reproducible
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// Engine is the audio facade used by the UI layer. Public methods never
// return errors for playback problems: failures are logged and the engine
// carries on silently. Create one Engine per process and share it.
type Engine struct {
	mu      sync.Mutex
	config  *config.Config
	logger  *logger.Logger
	backend Backend
	clock   Scheduler
	seed    int64

	masterVolume atomic.Uint64 // float64 bits
	muted        atomic.Bool
	stopped      atomic.Bool
	initialized  atomic.Bool

	graph      *Graph
	tones      *Tones
	sequencer  *Sequencer
	session    *Session
	beds       *bedCache
	warnedInit bool
	warnedDown bool
	lastErr    error
	closed     bool
}

// Status is a snapshot of engine state for display
type Status struct {
	Initialized   bool
	Muted         bool
	Stopped       bool
	MasterVolume  float64
	Backend       string
	Graph         string
	Session       SessionState
	Theme         config.Theme
	SessionGain   float64
	Fading        bool
	ActiveVoices  int
	OneShots      int
	VoicesCreated uint64
	Frames        uint64
	Cues          uint64
	CachedBeds    int
	LastError     error
}

func (s Status) String() string {
	lastErr := "none"
	if s.LastError != nil {
		lastErr = s.LastError.Error()
	}
	return fmt.Sprintf("initialized=%t muted=%t stopped=%t volume=%.0f%% backend=%s graph=%s session=%s theme=%s gain=%.3f fading=%t voices=%d/%d oneshots=%d cues=%d frames=%d beds=%d error=%s",
		s.Initialized, s.Muted, s.Stopped, s.MasterVolume*100, s.Backend, s.Graph, s.Session, s.Theme,
		s.SessionGain, s.Fading, s.ActiveVoices, s.VoicesCreated, s.OneShots, s.Cues, s.Frames, s.CachedBeds, lastErr)
}

// New creates an engine from cfg. Nothing touches the audio device until
// Initialize.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Normalize()
	if log == nil {
		log = logger.NewDiscardLogger()
	}

	e := &Engine{
		config: cfg,
		logger: log,
		seed:   cfg.Audio.Seed,
		beds:   newBedCache(),
	}
	e.masterVolume.Store(math.Float64bits(cfg.Audio.MasterVolume))
	e.muted.Store(!cfg.Audio.Enabled)

	for _, opt := range opts {
		opt(e)
	}

	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}
	if e.clock == nil {
		e.clock = WallClock{}
	}
	if e.backend == nil {
		b, err := NewBackend(cfg.Audio.Backend)
		if err != nil {
			log.Warnf("%v, rendering offline", err)
			b = NewNullBackend()
		}
		e.backend = b
	}
	return e
}

// Initialize creates the output graph on first use and resumes it. It is safe
// to call repeatedly and from any goroutine. On failure the engine logs and
// stays uninitialized; a later call retries.
func (e *Engine) Initialize(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.initialized.Load() {
		return
	}
	if err := ctx.Err(); err != nil {
		e.fail(fmt.Errorf("%w: %v", ErrGraphUnavailable, err))
		return
	}

	if e.graph == nil {
		g := NewGraph(beep.SampleRate(e.config.Audio.SampleRate), e.backend)
		if err := g.open(e.config.Audio.FramesPerBuffer); err != nil {
			e.fail(err)
			return
		}
		e.graph = g
		e.tones = NewTones(g, noise.NewNoiseGenerator(e.seed), e.MasterVolume)
		e.sequencer = NewSequencer(e.tones, e.clock, e.logger)
	}

	if err := e.graph.Resume(); err != nil {
		e.fail(err)
		return
	}

	e.initialized.Store(true)
	e.stopped.Store(false)
	e.warnedDown = false
	e.logger.Infof("Audio initialized: %s backend at %d Hz", e.backend.Name(), e.config.Audio.SampleRate)
}

// PlayBackgroundMusic starts the ambient bed for theme, replacing any bed
// already playing. Unknown themes fall back to dark.
func (e *Engine) PlayBackgroundMusic(theme string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canPlay("PlayBackgroundMusic") {
		return
	}

	t, err := e.config.Music.Resolve(theme)
	if err != nil {
		e.logger.Warnf("%v (themes: %s), using %s", err, strings.Join(e.config.Music.ThemeNames(), ", "), t)
	}

	if err := e.startMusic(t); err != nil {
		e.fail(err)
	}
}

func (e *Engine) startMusic(theme config.Theme) error {
	bed, err := e.beds.get(theme, func() (*synth.Bed, error) {
		return e.buildBed(theme)
	})

	// The previous bed goes either way
	e.releaseSession(time.Duration(e.config.Music.FadeOutMs) * time.Millisecond)
	if err != nil {
		return err
	}

	s, err := StartSession(e.graph, bed, SessionParams{
		Theme:   theme,
		Profile: e.config.Music.Profile(theme),
		Level:   e.config.Music.Level,
		Master:  e.MasterVolume(),
		FadeIn:  time.Duration(e.config.Music.FadeInMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	e.session = s
	e.logger.Debugf("Background music started: %s", theme)
	return nil
}

func (e *Engine) buildBed(theme config.Theme) (*synth.Bed, error) {
	secs := e.config.Music.BedSeconds
	if limit := e.config.Music.MaxBedSeconds; secs > limit {
		return nil, fmt.Errorf("%w: %vs exceeds limit of %vs", ErrBufferGeneration, secs, limit)
	}
	defer util.TimeTrack(time.Now(), "ambient bed "+string(theme), e.logger.Debugf)

	h := fnv.New64a()
	h.Write([]byte(theme))
	ng := noise.NewNoiseGenerator(e.seed ^ int64(h.Sum64()))

	bed, err := synth.BuildAmbientBed(e.graph.SampleRate(), secs, ng)
	if err != nil {
		return nil, err
	}
	e.logger.Debugf("Ambient bed %s: %v, peak %.3f", theme, bed.Duration(), bed.Peak())
	return bed, nil
}

func (e *Engine) releaseSession(fade time.Duration) {
	if e.session == nil {
		return
	}
	e.session.Release(fade)
	e.session = nil
}

func (e *Engine) stopSession() {
	if e.session == nil {
		return
	}
	e.session.Stop()
	e.session = nil
}

// PlayRocketLaunchSequence schedules the countdown, ignition, launch and warp
// stages. Readiness is checked once here, so a sequence never starts half way.
func (e *Engine) PlayRocketLaunchSequence() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canPlay("PlayRocketLaunchSequence") {
		return
	}
	epoch := e.sequencer.Play()
	e.logger.Debugf("Launch sequence %d scheduled", epoch)
}

// TestAudioWithBeep plays a short 440 Hz tone
func (e *Engine) TestAudioWithBeep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canPlay("TestAudioWithBeep") {
		return
	}
	if err := e.tones.Beep(testBeepFreq, testBeepDuration, testBeepVolume); err != nil {
		e.fail(err)
	}
}

// StopAllAudio silences everything and suspends the output graph. Playback
// stays off until ResumeAudio.
func (e *Engine) StopAllAudio() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped.Store(true)
	if e.graph == nil {
		return
	}

	// Suspend before sweeping so a cue racing this call cannot leave a voice
	// behind for the next resume
	e.sequencer.Cancel()
	if err := e.graph.Suspend(); err != nil {
		e.logger.Warnf("Failed to suspend audio: %v", err)
	}
	e.stopSession()
	n := e.graph.StopAll()
	e.logger.Infof("All audio stopped (%d voices)", n)
}

// ResumeAudio resumes a suspended graph. Music is not restarted.
func (e *Engine) ResumeAudio() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		e.stopped.Store(false)
		return
	}
	if err := e.graph.Resume(); err != nil {
		e.fail(err)
		return
	}
	e.stopped.Store(false)
	e.logger.Info("Audio resumed")
}

// SetMasterVolume sets the master volume from a 0-100 percentage and rescales
// the playing bed. One-shots already playing keep their volume.
func (e *Engine) SetMasterVolume(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	v := util.Clamp(percent/100.0, 0, 1)
	e.masterVolume.Store(math.Float64bits(v))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.SetVolume(v)
	}
}

// ToggleMute flips mute and returns the new state. Muting stops the bed and
// any pending launch cues; unmuting does not restart them.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	muted := !e.muted.Load()
	e.muted.Store(muted)
	if muted {
		e.stopSession()
		if e.sequencer != nil {
			e.sequencer.Cancel()
		}
	}
	e.logger.Debugf("Mute: %t", muted)
	return muted
}

// MasterVolume returns the master volume in [0, 1]
func (e *Engine) MasterVolume() float64 {
	return math.Float64frombits(e.masterVolume.Load())
}

func (e *Engine) IsMuted() bool { return e.muted.Load() }

func (e *Engine) IsInitialized() bool { return e.initialized.Load() }

func (e *Engine) IsStopped() bool { return e.stopped.Load() }

// Offline reports whether the backend never pulls on its own. An offline
// engine only makes sound through Render.
func (e *Engine) Offline() bool { return isOffline(e.backend) }

// LastError returns the most recent failure swallowed by the facade
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Status returns a snapshot of the engine
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Initialized:  e.initialized.Load(),
		Muted:        e.muted.Load(),
		Stopped:      e.stopped.Load(),
		MasterVolume: e.MasterVolume(),
		Backend:      e.backend.Name(),
		Graph:        "none",
		Session:      SessionIdle,
		CachedBeds:   e.beds.len(),
		LastError:    e.lastErr,
	}
	if e.graph != nil {
		st.Graph = e.graph.State().String()
		st.ActiveVoices = e.graph.ActiveVoices()
		st.OneShots = st.ActiveVoices - e.graph.activeOf(VoiceBed)
		st.Frames = e.graph.FramesRendered()
		st.Cues = e.sequencer.Fired()
		st.VoicesCreated = e.graph.VoicesCreated()
	}
	if e.session != nil {
		st.Session = e.session.State()
		st.Theme = e.session.Theme()
		st.SessionGain = e.session.Gain()
		st.Fading = e.session.Fading()
	}
	return st
}

// Close stops all audio and releases the backend
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.initialized.Store(false)

	if e.graph == nil {
		return nil
	}
	e.stopSession()
	e.sequencer.Cancel()
	if err := e.graph.Close(); err != nil {
		return fmt.Errorf("failed to close audio backend: %w", err)
	}
	e.logger.Info("Audio engine closed")
	return nil
}

// canPlay reports whether a play call should go ahead, logging why not
func (e *Engine) canPlay(op string) bool {
	if e.closed {
		return false
	}
	if !e.initialized.Load() {
		e.notReady(op)
		return false
	}
	if e.muted.Load() {
		e.logger.Debugf("%s ignored: muted", op)
		return false
	}
	if e.stopped.Load() {
		e.logger.Debugf("%s ignored: audio stopped", op)
		return false
	}
	return true
}

// notReady reports a call made before Initialize: loudly in strict mode,
// once otherwise
func (e *Engine) notReady(op string) {
	if e.config.Audio.Strict {
		e.logger.Errorf("%s called before Initialize", op)
		return
	}
	if !e.warnedInit {
		e.warnedInit = true
		e.logger.Warnf("%s called before Initialize, audio calls are ignored until then", op)
	}
}

// fail records err. An unavailable graph is warned about once until the next
// successful Initialize; repeats go to debug.
func (e *Engine) fail(err error) {
	e.lastErr = err
	if errors.Is(err, ErrGraphUnavailable) {
		if e.warnedDown {
			e.logger.Debugf("Audio still unavailable: %v", err)
			return
		}
		e.warnedDown = true
		e.logger.Warnf("Audio unavailable: %v", err)
		return
	}
	e.logger.Errorf("Audio error: %v", err)
}
