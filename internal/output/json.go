package output

import (
	"encoding/json"
	"io"

	"github.com/maxvaer/dirbust/internal/engine"
	"github.com/maxvaer/dirbust/internal/filter"
)

type jsonEntry struct {
	URL           string `json:"url"`
	Path          string `json:"path"`
	StatusCode    int    `json:"status"`
	ContentLength int64  `json:"size"`
	RedirectURL   string `json:"redirect,omitempty"`
	Line          int    `json:"line"`
}

// JSONWriter streams Found results as the elements of one JSON array. The
// array is closed by WriteFooter, which also runs for aborted scans.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
	n      int
}

// NewJSONWriter creates a JSON writer. closer may be nil.
func NewJSONWriter(w io.Writer, closer io.Closer) *JSONWriter {
	return &JSONWriter{w: w, closer: closer}
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(result *engine.Result) error {
	if result.Verdict != filter.Found {
		return nil
	}
	data, err := json.Marshal(jsonEntry{
		URL:           result.URL,
		Path:          result.Path(),
		StatusCode:    result.StatusCode,
		ContentLength: result.ContentLength,
		RedirectURL:   result.RedirectURL,
		Line:          result.Candidate.Line,
	})
	if err != nil {
		return err
	}

	sep := ",\n  "
	if j.n == 0 {
		sep = "[\n  "
	}
	if _, err := io.WriteString(j.w, sep); err != nil {
		return err
	}
	j.n++
	_, err = j.w.Write(data)
	return err
}

func (j *JSONWriter) WriteFooter(_ Stats) error {
	end := "\n]\n"
	if j.n == 0 {
		end = "[]\n"
	}
	_, err := io.WriteString(j.w, end)
	return err
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
