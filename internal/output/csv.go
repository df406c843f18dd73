package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/dirbust/internal/engine"
	"github.com/maxvaer/dirbust/internal/filter"
)

// CSVWriter writes Found results in CSV format.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV writer. closer may be nil.
func NewCSVWriter(w io.Writer, closer io.Closer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"url", "path", "status", "size", "redirect"})
}

func (c *CSVWriter) WriteResult(result *engine.Result) error {
	if result.Verdict != filter.Found {
		return nil
	}
	return c.w.Write([]string{
		result.URL,
		result.Path(),
		strconv.Itoa(result.StatusCode),
		strconv.FormatInt(result.ContentLength, 10),
		result.RedirectURL,
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
