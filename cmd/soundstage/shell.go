package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"soundstage/pkg/engine"
)

const helpText = `commands:
  init            initialize audio output
  music [theme]   play background music (dark, light)
  launch          play the rocket launch sequence
  beep            play a test beep
  stop            stop all audio
  resume          resume audio after stop
  volume N        set master volume, 0-100
  mute            toggle mute
  status          show engine state
  quit            exit`

// shell drives an engine from text commands
type shell struct {
	ctx context.Context
	eng *engine.Engine
	out io.Writer
}

// checkInteractive refuses an engine with an offline backend. Nothing pulls
// its graph, so one-shot voices would pile up without ever draining.
func checkInteractive(eng *engine.Engine) error {
	if eng.Offline() {
		return fmt.Errorf("audio backend %q plays nothing live, use -render to write a WAV file", eng.Status().Backend)
	}
	return nil
}

func newShell(ctx context.Context, eng *engine.Engine, out io.Writer) *shell {
	return &shell{ctx: ctx, eng: eng, out: out}
}

// run reads commands until quit, EOF or context cancellation
func (s *shell) run(in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		errc <- scanner.Err()
		close(lines)
	}()

	fmt.Fprint(s.out, "> ")
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if s.exec(line) {
				return nil
			}
			fmt.Fprint(s.out, "> ")
		}
	}
}

// exec runs one command and reports whether the shell should exit
func (s *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "init":
		s.eng.Initialize(s.ctx)
		if s.eng.IsInitialized() {
			fmt.Fprintln(s.out, "audio ready")
		} else {
			fmt.Fprintf(s.out, "audio unavailable: %v\n", s.eng.LastError())
		}
	case "music":
		theme := "dark"
		if len(args) > 0 {
			theme = args[0]
		}
		s.eng.PlayBackgroundMusic(theme)
	case "launch":
		s.eng.PlayRocketLaunchSequence()
	case "beep":
		s.eng.TestAudioWithBeep()
	case "stop":
		s.eng.StopAllAudio()
	case "resume":
		s.eng.ResumeAudio()
	case "volume":
		if len(args) != 1 {
			fmt.Fprintf(s.out, "volume is %.0f\n", s.eng.MasterVolume()*100)
			break
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Fprintf(s.out, "bad volume %q\n", args[0])
			break
		}
		s.eng.SetMasterVolume(v)
		fmt.Fprintf(s.out, "volume is %.0f\n", s.eng.MasterVolume()*100)
	case "mute":
		if s.eng.ToggleMute() {
			fmt.Fprintln(s.out, "muted")
		} else {
			fmt.Fprintln(s.out, "unmuted")
		}
	case "status":
		fmt.Fprintln(s.out, s.eng.Status())
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, helpText)
	default:
		fmt.Fprintf(s.out, "unknown command %q\n%s\n", cmd, helpText)
	}
	return false
}
