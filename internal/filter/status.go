package filter

import (
	"github.com/maxvaer/dirbust/internal/config"
	"github.com/maxvaer/dirbust/internal/scanner"
)

// Verdict is the classification of one request outcome.
type Verdict int

const (
	Found Verdict = iota
	Filtered
	Error
)

func (v Verdict) String() string {
	switch v {
	case Found:
		return "found"
	case Filtered:
		return "filtered"
	default:
		return "error"
	}
}

// Classify maps an outcome to a verdict. A failure is always an Error.
// With an allow-list a response is Found only if its status is listed;
// with a deny-list it is Found only if its status is not listed.
func Classify(outcome scanner.Outcome, policy config.StatusPolicy) Verdict {
	if !outcome.OK() {
		return Error
	}
	listed := policy.Contains(outcome.StatusCode)
	if policy.Mode == config.AllowList {
		if listed {
			return Found
		}
		return Filtered
	}
	if listed {
		return Filtered
	}
	return Found
}

// Classifier combines the status policy with a chain of extra filters.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	policy config.StatusPolicy
	chain  *Chain
}

// NewClassifier builds the classifier for a scan.
func NewClassifier(cfg *config.ScanConfig) *Classifier {
	chain := NewChain()
	if len(cfg.ExcludeSizes) > 0 {
		chain.Add(NewSizeFilter(cfg.ExcludeSizes))
	}
	return &Classifier{policy: cfg.Policy, chain: chain}
}

// Classify returns the verdict for outcome and, for Filtered and Error
// verdicts, a short reason.
func (c *Classifier) Classify(outcome scanner.Outcome) (Verdict, string) {
	v := Classify(outcome, c.policy)
	switch v {
	case Error:
		return v, outcome.Failure.String()
	case Filtered:
		return v, "status"
	}
	if filtered, name := c.chain.Apply(outcome); filtered {
		return Filtered, name
	}
	return Found, ""
}
