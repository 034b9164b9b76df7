package synth

import "github.com/gopxl/beep"

const testRate = beep.SampleRate(8000)

// constant streams value on both channels forever
type constant float64

func (c constant) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = float64(c)
		samples[i][1] = float64(c)
	}
	return len(samples), true
}

func (c constant) Err() error { return nil }

// drain reads s to the end in small chunks
func drain(s beep.Streamer, limit int) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 97)
	for len(out) < limit {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
	}
	return out
}
