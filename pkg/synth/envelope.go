package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"soundstage/internal/util"
)

// DecayFloor is the fraction of peak an envelope decays to by its end
const DecayFloor = 0.01

// Envelope applies a linear attack to peak followed by an exponential decay.
// The stream ends after duration regardless of the wrapped streamer.
type Envelope struct {
	streamer beep.Streamer
	peak     float64
	attack   int
	total    int
	pos      int
}

// NewEnvelope wraps s with an attack/decay envelope lasting duration
func NewEnvelope(s beep.Streamer, rate beep.SampleRate, peak float64, attack, duration time.Duration) *Envelope {
	total := rate.N(duration)
	att := rate.N(attack)
	if att > total {
		att = total
	}
	return &Envelope{
		streamer: s,
		peak:     peak,
		attack:   att,
		total:    total,
	}
}

// Level returns the envelope gain at frame pos
func (e *Envelope) Level(pos int) float64 {
	switch {
	case pos < 0 || pos >= e.total:
		return 0
	case pos < e.attack:
		return util.Lerp(0, e.peak, float64(pos)/float64(e.attack))
	}
	decay := e.total - e.attack
	if decay <= 0 {
		return e.peak
	}
	k := float64(pos-e.attack) / float64(decay)
	return e.peak * math.Pow(DecayFloor, k)
}

func (e *Envelope) Stream(samples [][2]float64) (n int, ok bool) {
	remaining := e.total - e.pos
	if remaining <= 0 {
		return 0, false
	}
	if len(samples) > remaining {
		samples = samples[:remaining]
	}

	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := e.Level(e.pos)
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	if !ok && n == 0 {
		e.pos = e.total
		return 0, false
	}
	return n, true
}

func (e *Envelope) Err() error { return e.streamer.Err() }
