package engine

import (
	"sync"
	"testing"
	"time"

	"soundstage/pkg/synth"
)

type call struct {
	at     time.Duration
	effect EffectKind
	freq   float64
}

// recorder is a ToneGenerator that notes when each call happens
type recorder struct {
	mu    sync.Mutex
	clock *ManualClock
	start time.Time
	calls []call
}

func (r *recorder) add(kind EffectKind, freq float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{at: r.clock.Now().Sub(r.start), effect: kind, freq: freq})
	return nil
}

func (r *recorder) Beep(freqHz float64, _ time.Duration, _ float64) error {
	return r.add(EffectBeep, freqHz)
}

func (r *recorder) FilteredNoise(_ float64, _ time.Duration, _ synth.FilterType, cutoffHz float64) error {
	return r.add(EffectNoise, cutoffHz)
}

func (r *recorder) Sweep(startHz, _ float64, _ time.Duration, _ float64) error {
	return r.add(EffectSweep, startHz)
}

func (r *recorder) ModulatedTone(carrierHz float64, _ time.Duration, _ float64) error {
	return r.add(EffectModulated, carrierHz)
}

func newRecordedSequencer() (*Sequencer, *recorder) {
	start := time.Unix(0, 0)
	clock := NewManualClock(start)
	rec := &recorder{clock: clock, start: start}
	return NewSequencer(rec, clock, nil), rec
}

func TestLaunchSequenceTiming(t *testing.T) {
	seq, rec := newRecordedSequencer()
	seq.Play()
	rec.clock.Advance(10 * time.Second)

	want := []call{
		{ms(0), EffectBeep, 800},
		{ms(50), EffectBeep, 1200},
		{ms(600), EffectBeep, 800},
		{ms(650), EffectBeep, 1200},
		{ms(1200), EffectBeep, 1000},
		{ms(1250), EffectBeep, 1500},
		{ms(2400), EffectNoise, 150},
		{ms(2600), EffectNoise, 300},
		{ms(2800), EffectNoise, 2000},
		{ms(3200), EffectSweep, 80},
		{ms(3500), EffectSweep, 200},
		{ms(3800), EffectNoise, 1500},
		{ms(4400), EffectSweep, 600},
		{ms(4500), EffectSweep, 400},
		{ms(4700), EffectSweep, 800},
		{ms(4900), EffectModulated, 1500},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("got %d calls, want %d: %v", len(rec.calls), len(want), rec.calls)
	}
	for i, w := range want {
		if rec.calls[i] != w {
			t.Errorf("call %d = %+v, want %+v", i, rec.calls[i], w)
		}
	}
	if seq.Fired() != uint64(len(want)) {
		t.Errorf("Fired = %d", seq.Fired())
	}
}

func TestSequencerCancel(t *testing.T) {
	seq, rec := newRecordedSequencer()
	seq.Play()
	rec.clock.Advance(ms(700))
	seq.Cancel()
	rec.clock.Advance(10 * time.Second)

	if len(rec.calls) != 4 {
		t.Errorf("got %d calls, want the 4 before cancel", len(rec.calls))
	}
	if rec.clock.Pending() != 0 {
		t.Errorf("%d timers left pending", rec.clock.Pending())
	}
}

func TestSequencerReplayDropsStaleRun(t *testing.T) {
	seq, rec := newRecordedSequencer()
	first := seq.Play()
	rec.clock.Advance(ms(100))
	second := seq.Play()
	if second == first {
		t.Fatal("new run should get a new epoch")
	}
	rec.clock.Advance(10 * time.Second)

	// 2 calls from the first run, 16 from the second
	if len(rec.calls) != 18 {
		t.Errorf("got %d calls, want 18", len(rec.calls))
	}
}

func TestStaleCueIsIgnored(t *testing.T) {
	seq, rec := newRecordedSequencer()
	epoch := seq.Play()
	seq.epoch.Add(1)
	seq.fire(epoch, StageWarp, Effect{Kind: EffectBeep, Freq: 1, Duration: ms(1)})
	if len(rec.calls) != 0 {
		t.Error("stale cue reached the tone generator")
	}
}

func TestLaunchScheduleIsCopied(t *testing.T) {
	s := LaunchSchedule()
	s[0].Cues[0].Effect.Freq = 1
	if launchSchedule[0].Cues[0].Effect.Freq != 800 {
		t.Error("LaunchSchedule exposed internal state")
	}
	if got := SequenceLength(s); got != ms(5700) {
		t.Errorf("SequenceLength = %v, want 5.7s", got)
	}
}
