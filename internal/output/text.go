package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/maxvaer/dirbust/internal/engine"
	"github.com/maxvaer/dirbust/internal/filter"
)

// TextWriter writes colored, column-aligned text. Found results go to w;
// error lines and the footer go to errW.
type TextWriter struct {
	w        io.Writer
	errW     io.Writer
	closer   io.Closer
	noStatus bool
	noError  bool
	quiet    bool

	green, cyan, yellow, red, dim *color.Color
}

// NewTextWriter creates a text writer. closer may be nil.
func NewTextWriter(w, errW io.Writer, closer io.Closer, opts Options) *TextWriter {
	t := &TextWriter{
		w:        w,
		errW:     errW,
		closer:   closer,
		noStatus: opts.NoStatus,
		noError:  opts.NoError,
		quiet:    opts.Quiet,
		green:    color.New(color.FgGreen),
		cyan:     color.New(color.FgCyan),
		yellow:   color.New(color.FgYellow),
		red:      color.New(color.FgRed),
		dim:      color.New(color.Faint),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{t.green, t.cyan, t.yellow, t.red, t.dim} {
			c.DisableColor()
		}
	}
	return t
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	header := "Code      Size  URL"
	if t.noStatus {
		header = "    Size  URL"
	}
	_, err := t.dim.Fprintln(t.w, header)
	return err
}

func (t *TextWriter) WriteResult(result *engine.Result) error {
	if result.Verdict == filter.Error {
		if t.noError {
			return nil
		}
		_, err := t.red.Fprintf(t.errW, "[!] %s (%s): %v\n", result.Candidate.URL, result.Reason, result.Err)
		return err
	}
	if result.Verdict != filter.Found {
		return nil
	}

	redirect := ""
	if result.RedirectURL != "" {
		redirect = " -> " + result.RedirectURL
	}

	if t.noStatus {
		_, err := fmt.Fprintf(t.w, "%8d  %s%s\n", result.ContentLength, result.URL, redirect)
		return err
	}
	status := t.colorForStatus(result.StatusCode).Sprintf("%3d", result.StatusCode)
	_, err := fmt.Fprintf(t.w, "%s  %8d  %s%s\n", status, result.ContentLength, result.URL, redirect)
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(t.errW,
		"\nCompleted: %d requests | Found: %d | Filtered: %d | Errors: %d | Skipped: %d | Duration: %s | %.1f req/s\n",
		stats.Requests,
		stats.Found,
		stats.Filtered,
		stats.Errors,
		stats.Skipped,
		stats.Duration.Round(time.Millisecond),
		stats.RequestsPerSec,
	)
	if err != nil {
		return err
	}
	if stats.Aborted != nil {
		_, err = t.red.Fprintf(t.errW, "Scan aborted: %v\n", stats.Aborted)
	}
	return err
}

func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *TextWriter) colorForStatus(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return t.green
	case code >= 300 && code < 400:
		return t.cyan
	case code >= 400 && code < 500:
		return t.yellow
	default:
		return t.red
	}
}
