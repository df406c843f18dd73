package runner

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/maxvaer/dirbust/internal/engine"
	"github.com/maxvaer/dirbust/internal/output"
)

// startStdinToggle reads single keypresses from stdin and toggles the
// returned gate on Enter or Space. The cleanup function restores the
// terminal. If stdin is not a terminal it returns a nil gate and a no-op
// cleanup.
func startStdinToggle(bar *output.ProgressBar) (gate *engine.Gate, cleanup func()) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.WithError(err).Warn("Could not enable raw terminal, pause toggle disabled")
		return nil, func() {}
	}

	// MakeRaw disables OPOST which stops \n -> \r\n translation. Only raw
	// input is needed, so turn output processing back on.
	restoreOutputProcessing(fd)

	gate = engine.NewGate()

	cleanup = func() {
		_ = term.Restore(fd, oldState)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			switch key := buf[0]; key {
			case 0x03:
				// Ctrl+C: restore the terminal and re-raise SIGINT so the
				// signal context cancels the scan.
				_ = term.Restore(fd, oldState)
				raiseInterrupt()
				return
			case '\r', '\n', ' ':
				paused := gate.Toggle()
				bar.SetPaused(paused)
				if paused {
					log.Debug("scan paused")
				} else {
					log.WithField("paused", gate.PausedFor().Round(time.Millisecond)).Debug("scan resumed")
				}
			}
		}
	}()

	return gate, cleanup
}
