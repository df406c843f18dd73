package engine

import (
	"github.com/maxvaer/dirbust/internal/filter"
	"github.com/maxvaer/dirbust/internal/scanner"
	"github.com/maxvaer/dirbust/internal/target"
)

// Result is one classified candidate as published on the result stream.
type Result struct {
	Candidate target.Candidate
	scanner.Outcome
	Verdict filter.Verdict
	Reason  string // filter name or failure kind; empty for Found
}

// Path returns the escaped request path, including the base URL's path.
func (r Result) Path() string {
	return r.Candidate.Path
}
