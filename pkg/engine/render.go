package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// Render pulls d of audio from the graph by hand. It only works with an
// offline backend. With a ManualClock the clock advances alongside the
// samples, so scheduled cues start on the exact frame they are due.
func (e *Engine) Render(d time.Duration) ([][2]float64, error) {
	e.mu.Lock()
	g, b, clock, closed := e.graph, e.backend, e.clock, e.closed
	e.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if g == nil {
		return nil, ErrGraphUnavailable
	}
	if !isOffline(b) {
		return nil, ErrNotOffline
	}

	rate := g.SampleRate()
	total := rate.N(d)
	out := make([][2]float64, total)
	mc, manual := clock.(*ManualClock)

	for pos := 0; pos < total; {
		n := total - pos
		if manual {
			mc.Advance(0)
			if due, ok := mc.NextDue(); ok {
				if k := rate.N(due.Sub(mc.Now())); k < n {
					n = max(k, 1)
				}
			}
		}

		g.Stream(out[pos : pos+n])
		pos += n

		if manual {
			mc.Advance(rate.D(n))
		}
	}
	return out, nil
}

// WriteWAV encodes stereo frames as 16-bit PCM
func WriteWAV(w io.WriteSeeker, sampleRate int, frames [][2]float64) error {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, numChannels, 1)

	data := make([]int, len(frames)*numChannels)
	for i, f := range frames {
		data[i*2] = toPCM16(f[0])
		data[i*2+1] = toPCM16(f[1])
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

func toPCM16(v float64) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
