package output

import (
	"sort"

	"github.com/maxvaer/dirbust/internal/engine"
)

// OrderedWriter buffers results and replays them in wordlist order (line,
// then extension position) when WriteFooter is called. It wraps any other
// Writer.
type OrderedWriter struct {
	inner   Writer
	results []engine.Result
}

// NewOrderedWriter wraps inner and buffers results for ordered replay.
func NewOrderedWriter(inner Writer) *OrderedWriter {
	return &OrderedWriter{inner: inner}
}

func (w *OrderedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *OrderedWriter) WriteResult(result *engine.Result) error {
	w.results = append(w.results, *result)
	return nil
}

func (w *OrderedWriter) WriteFooter(stats Stats) error {
	sort.SliceStable(w.results, func(i, j int) bool {
		a, b := w.results[i].Candidate, w.results[j].Candidate
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Seq < b.Seq
	})
	for i := range w.results {
		if err := w.inner.WriteResult(&w.results[i]); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *OrderedWriter) Close() error {
	return w.inner.Close()
}
