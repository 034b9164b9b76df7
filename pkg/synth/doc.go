// Package synth holds the signal primitives the engine assembles into voices:
// oscillators, envelopes, biquad filters, noise bursts, gain faders and the
// looping ambient bed. Every primitive is a beep.Streamer producing stereo
// float samples at unity scale; none of them touch an output device.
package synth
