package engine

import (
	"fmt"
	"time"

	"soundstage/pkg/synth"
)

// StageKind names a block of the launch sequence
type StageKind int

const (
	StageCountdown StageKind = iota
	StageIgnition
	StageLaunch
	StageWarp
)

func (k StageKind) String() string {
	switch k {
	case StageCountdown:
		return "countdown"
	case StageIgnition:
		return "ignition"
	case StageLaunch:
		return "launch"
	case StageWarp:
		return "warp"
	default:
		return "unknown"
	}
}

// EffectKind selects the tone generator call for a cue
type EffectKind int

const (
	EffectBeep EffectKind = iota
	EffectNoise
	EffectSweep
	EffectModulated
)

func (k EffectKind) String() string {
	switch k {
	case EffectBeep:
		return "beep"
	case EffectNoise:
		return "noise"
	case EffectSweep:
		return "sweep"
	case EffectModulated:
		return "modulated"
	default:
		return "unknown"
	}
}

// Effect is one tone generator call
type Effect struct {
	Kind     EffectKind
	Freq     float64 // beep, sweep start, carrier or noise cutoff
	EndFreq  float64 // sweep end
	Duration time.Duration
	Volume   float64
	Filter   synth.FilterType
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectNoise:
		return fmt.Sprintf("noise %s@%.0fHz %v", e.Filter, e.Freq, e.Duration)
	case EffectSweep:
		return fmt.Sprintf("sweep %.0f->%.0fHz %v", e.Freq, e.EndFreq, e.Duration)
	default:
		return fmt.Sprintf("%s %.0fHz %v", e.Kind, e.Freq, e.Duration)
	}
}

// Play issues the effect on t
func (e Effect) Play(t ToneGenerator) error {
	switch e.Kind {
	case EffectBeep:
		return t.Beep(e.Freq, e.Duration, e.Volume)
	case EffectNoise:
		return t.FilteredNoise(e.Volume, e.Duration, e.Filter, e.Freq)
	case EffectSweep:
		return t.Sweep(e.Freq, e.EndFreq, e.Duration, e.Volume)
	case EffectModulated:
		return t.ModulatedTone(e.Freq, e.Duration, e.Volume)
	}
	return fmt.Errorf("unknown effect kind %d", e.Kind)
}

// Cue is an effect at an offset from the start of its stage
type Cue struct {
	Offset time.Duration
	Effect Effect
}

// Stage is a block of cues at an offset from the start of the sequence
type Stage struct {
	Kind   StageKind
	Offset time.Duration
	Cues   []Cue
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func countdown(at time.Duration, hz float64) Stage {
	return Stage{
		Kind:   StageCountdown,
		Offset: at,
		Cues: []Cue{
			{0, Effect{Kind: EffectBeep, Freq: hz, Duration: ms(150), Volume: 0.3}},
			// Harmonic companion
			{ms(50), Effect{Kind: EffectBeep, Freq: hz * 1.5, Duration: ms(150), Volume: 0.15}},
		},
	}
}

var launchSchedule = []Stage{
	countdown(0, 800),
	countdown(ms(600), 800),
	countdown(ms(1200), 1000),
	{
		Kind:   StageIgnition,
		Offset: ms(2400),
		Cues: []Cue{
			{0, Effect{Kind: EffectNoise, Freq: 150, Duration: ms(1200), Volume: 0.4, Filter: synth.Lowpass}},
			{ms(200), Effect{Kind: EffectNoise, Freq: 300, Duration: ms(800), Volume: 0.3, Filter: synth.Bandpass}},
			{ms(400), Effect{Kind: EffectNoise, Freq: 2000, Duration: ms(600), Volume: 0.15, Filter: synth.Highpass}},
		},
	},
	{
		Kind:   StageLaunch,
		Offset: ms(3200),
		Cues: []Cue{
			{0, Effect{Kind: EffectSweep, Freq: 80, EndFreq: 200, Duration: ms(2000), Volume: 0.35}},
			{ms(300), Effect{Kind: EffectSweep, Freq: 200, EndFreq: 600, Duration: ms(1800), Volume: 0.25}},
			{ms(600), Effect{Kind: EffectNoise, Freq: 1500, Duration: ms(200), Volume: 0.2, Filter: synth.Highpass}},
			// Doppler recession
			{ms(1200), Effect{Kind: EffectSweep, Freq: 600, EndFreq: 300, Duration: ms(1000), Volume: 0.2}},
		},
	},
	{
		Kind:   StageWarp,
		Offset: ms(4500),
		Cues: []Cue{
			{0, Effect{Kind: EffectSweep, Freq: 400, EndFreq: 2000, Duration: ms(1200), Volume: 0.25}},
			{ms(200), Effect{Kind: EffectSweep, Freq: 800, EndFreq: 4000, Duration: ms(1000), Volume: 0.15}},
			{ms(400), Effect{Kind: EffectModulated, Freq: 1500, Duration: ms(800), Volume: 0.2}},
		},
	},
}

// LaunchSchedule returns a copy of the fixed launch sequence
func LaunchSchedule() []Stage {
	out := make([]Stage, len(launchSchedule))
	for i, st := range launchSchedule {
		out[i] = st
		out[i].Cues = append([]Cue(nil), st.Cues...)
	}
	return out
}

// SequenceLength returns when the last cue of the schedule finishes
func SequenceLength(stages []Stage) time.Duration {
	var end time.Duration
	for _, st := range stages {
		for _, c := range st.Cues {
			if e := st.Offset + c.Offset + c.Effect.Duration; e > end {
				end = e
			}
		}
	}
	return end
}
