package synth

import "github.com/gopxl/beep"

// Fader scales a stream by a gain that can be set instantly or ramped
// linearly per sample. A released fader ramps to silence and then ends.
//
// Fader is not safe for concurrent use; callers serialise access with the
// lock that guards the audio graph.
type Fader struct {
	streamer beep.Streamer
	gain     float64
	target   float64
	step     float64
	left     int
	release  bool
	done     bool
}

// NewFader wraps s starting at gain
func NewFader(s beep.Streamer, gain float64) *Fader {
	return &Fader{streamer: s, gain: gain, target: gain}
}

// Set jumps to gain and cancels any ramp in progress
func (f *Fader) Set(gain float64) {
	f.gain = gain
	f.target = gain
	f.left = 0
	f.step = 0
}

// RampTo moves linearly to target over frames samples
func (f *Fader) RampTo(target float64, frames int) {
	if frames <= 0 {
		f.Set(target)
		return
	}
	f.target = target
	f.left = frames
	f.step = (target - f.gain) / float64(frames)
}

// Release fades to silence over frames and ends the stream afterwards
func (f *Fader) Release(frames int) {
	f.release = true
	if frames <= 0 {
		f.Set(0)
		f.done = true
		return
	}
	f.RampTo(0, frames)
}

// Gain returns the current gain
func (f *Fader) Gain() float64 { return f.gain }

// Ramping reports whether a ramp is in progress
func (f *Fader) Ramping() bool { return f.left > 0 }

func (f *Fader) Stream(samples [][2]float64) (n int, ok bool) {
	if f.done {
		return 0, false
	}
	if f.release && f.left == 0 {
		f.done = true
		return 0, false
	}

	// Stop at the end of a release so the tail is not streamed at zero gain
	if f.release && len(samples) > f.left {
		samples = samples[:f.left]
	}

	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if f.left > 0 {
			f.left--
			if f.left == 0 {
				f.gain = f.target
			} else {
				f.gain += f.step
			}
		}
		samples[i][0] *= f.gain
		samples[i][1] *= f.gain
	}
	if !ok && n == 0 {
		f.done = true
		return 0, false
	}
	return n, true
}

func (f *Fader) Err() error { return f.streamer.Err() }
