package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/maxvaer/dirbust/internal/engine"
)

// ProgressBar renders scan progress from engine snapshots. A nil
// *ProgressBar is valid and draws nothing.
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	paused atomic.Bool
}

// NewProgressBar creates a bar for total candidates. A total of 0 (unknown,
// e.g. a wordlist on stdin) renders a spinner instead.
func NewProgressBar(w io.Writer, total int64, noColor bool) *ProgressBar {
	n := total
	if n <= 0 {
		n = -1
	}
	bar := progressbar.NewOptions64(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(!noColor),
		progressbar.OptionSetDescription(scanningLabel),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("req"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &ProgressBar{bar: bar}
}

// Update moves the bar to the snapshot's position.
func (p *ProgressBar) Update(s engine.Snapshot) {
	if p == nil {
		return
	}
	p.bar.Describe(p.description(s))
	_ = p.bar.Set64(s.Attempted + s.Skipped)
}

// SetPaused switches the label between scanning and paused. Updates that
// arrive while paused keep the paused label.
func (p *ProgressBar) SetPaused(paused bool) {
	if p == nil {
		return
	}
	p.paused.Store(paused)
	if paused {
		p.bar.Describe(pausedLabel)
	} else {
		p.bar.Describe(scanningLabel)
	}
}

const (
	scanningLabel = "[cyan]Scanning[reset]"
	pausedLabel   = "[yellow]Paused[reset] (press Enter or Space to resume)"
)

func (p *ProgressBar) description(s engine.Snapshot) string {
	if p.paused.Load() {
		return pausedLabel
	}
	return fmt.Sprintf("%s found:%d errors:%d", scanningLabel, s.Found, s.Failed)
}

// Clear erases the bar so a result line can be printed. The next Update
// redraws it.
func (p *ProgressBar) Clear() {
	if p == nil {
		return
	}
	_ = p.bar.Clear()
}

// Finish removes the bar.
func (p *ProgressBar) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
