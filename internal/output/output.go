package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/dirbust/internal/engine"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Stats holds aggregate scan statistics.
type Stats struct {
	Requests       int64
	Found          int64
	Filtered       int64
	Errors         int64
	Skipped        int64
	Duration       time.Duration
	RequestsPerSec float64
	Aborted        error // abort cause, nil for a completed scan
}

// NewStats derives the footer statistics from the final scan counters.
func NewStats(snap engine.Snapshot, elapsed time.Duration, abort error) Stats {
	s := Stats{
		Requests: snap.Attempted,
		Found:    snap.Found,
		Filtered: snap.Filtered,
		Errors:   snap.Failed,
		Skipped:  snap.Skipped,
		Duration: elapsed,
		Aborted:  abort,
	}
	if elapsed.Seconds() > 0 {
		s.RequestsPerSec = float64(snap.Attempted) / elapsed.Seconds()
	}
	return s
}

// Writer is implemented by each output format. Writers receive Found and
// Error results; which of them they render is up to the format.
type Writer interface {
	WriteHeader() error
	WriteResult(result *engine.Result) error
	WriteFooter(stats Stats) error
	Close() error
}

// Options select and configure a Writer.
type Options struct {
	File     string // empty for stdout
	Format   string
	NoColor  bool
	NoStatus bool
	NoError  bool
	Quiet    bool
	Ordered  bool
}

// New creates the writer for opts. Results go to opts.File or stdout;
// error lines and the footer of the text format go to stderr.
func New(opts Options) (Writer, error) {
	switch opts.Format {
	case "", FormatText, FormatJSON, FormatCSV:
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or csv)", opts.Format)
	}

	w, closer, err := open(opts.File)
	if err != nil {
		return nil, err
	}

	var out Writer
	switch opts.Format {
	case FormatJSON:
		out = NewJSONWriter(w, closer)
	case FormatCSV:
		out = NewCSVWriter(w, closer)
	default:
		if opts.File != "" {
			opts.NoColor = true
		}
		out = NewTextWriter(w, os.Stderr, closer, opts)
	}
	if opts.Ordered {
		out = NewOrderedWriter(out)
	}
	return out, nil
}

func open(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f, nil
}
