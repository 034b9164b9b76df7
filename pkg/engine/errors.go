package engine

import (
	"errors"

	"soundstage/pkg/config"
	"soundstage/pkg/synth"
)

var (
	// ErrGraphUnavailable means the output graph could not be created or
	// resumed, or an operation ran before Initialize.
	ErrGraphUnavailable = errors.New("audio output graph unavailable")

	// ErrBufferGeneration means an ambient bed could not be synthesized
	ErrBufferGeneration = synth.ErrBufferGeneration

	// ErrUnknownTheme is logged when music is requested for an unknown theme
	ErrUnknownTheme = config.ErrUnknownTheme

	// ErrNotOffline is returned by Render when a device backend drives the graph
	ErrNotOffline = errors.New("engine is not using an offline backend")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("audio engine closed")
)
