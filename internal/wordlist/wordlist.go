package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the wordlist path that selects standard input.
const Stdin = "-"

const maxLineLength = 1 << 20

// Reader yields the non-empty, trimmed lines of a wordlist lazily, in file
// order. It is not restartable: rescanning needs a fresh Open.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	err     error
}

// Open opens the wordlist at path, or standard input when path is "-".
func Open(path string) (*Reader, error) {
	if path == Stdin {
		return NewReader(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wordlist %s: %w", path, err)
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// NewReader reads a wordlist from r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Reader{scanner: s}
}

// FromSlice returns a Reader over in-memory lines.
func FromSlice(lines []string) *Reader {
	return NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

// Next returns the next non-empty line. It returns false at the end of the
// wordlist or on a read error, which Err then reports.
func (r *Reader) Next() (string, bool) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		r.line++
		return line, true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("reading wordlist: %w", err)
	}
	return "", false
}

// Line returns the 1-based index of the last line returned by Next,
// counting only non-empty lines.
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file. Standard input is left open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Count returns the number of non-empty lines in the wordlist at path. It
// reads the file once without keeping it in memory. Standard input cannot
// be counted and yields 0.
func Count(path string) (int, error) {
	if path == Stdin {
		return 0, nil
	}
	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	n := 0
	for {
		if _, ok := r.Next(); !ok {
			break
		}
		n++
	}
	return n, r.Err()
}
