package engine

import (
	"sync"
	"sync/atomic"

	"soundstage/internal/logger"
)

// Sequencer plays the launch schedule through a tone generator.
// Every Play or Cancel bumps an epoch; cues scheduled under an older epoch
// do nothing when they fire.
type Sequencer struct {
	tones    ToneGenerator
	clock    Scheduler
	log      *logger.Logger
	schedule []Stage

	epoch atomic.Uint64
	fired atomic.Uint64

	mu      sync.Mutex
	pending []Timer
}

// NewSequencer creates a sequencer for the launch schedule
func NewSequencer(tones ToneGenerator, clock Scheduler, log *logger.Logger) *Sequencer {
	if clock == nil {
		clock = WallClock{}
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Sequencer{
		tones:    tones,
		clock:    clock,
		log:      log,
		schedule: LaunchSchedule(),
	}
}

// Play schedules every cue relative to now and cancels any earlier run.
// It returns the epoch of the new run.
func (s *Sequencer) Play() uint64 {
	epoch := s.epoch.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPendingLocked()
	for _, stage := range s.schedule {
		for _, cue := range stage.Cues {
			kind, effect := stage.Kind, cue.Effect
			t := s.clock.AfterFunc(stage.Offset+cue.Offset, func() {
				s.fire(epoch, kind, effect)
			})
			s.pending = append(s.pending, t)
		}
	}
	return epoch
}

// Cancel stops any scheduled cues of the current run
func (s *Sequencer) Cancel() {
	s.epoch.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPendingLocked()
}

// Fired returns how many cues have been issued
func (s *Sequencer) Fired() uint64 { return s.fired.Load() }

func (s *Sequencer) stopPendingLocked() {
	for _, t := range s.pending {
		t.Stop()
	}
	s.pending = s.pending[:0]
}

func (s *Sequencer) fire(epoch uint64, stage StageKind, effect Effect) {
	if s.epoch.Load() != epoch {
		return
	}
	s.fired.Add(1)
	if err := effect.Play(s.tones); err != nil {
		s.log.Debugf("%s cue %s skipped: %v", stage, effect, err)
	}
}
