package filter

import "github.com/maxvaer/dirbust/internal/scanner"

// Filter decides whether a response should be hidden from output even
// though its status code passed the policy.
type Filter interface {
	Name() string
	ShouldFilter(outcome scanner.Outcome) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Apply runs every filter against the outcome. Returns true and the filter
// name if the outcome should be filtered out.
func (c *Chain) Apply(outcome scanner.Outcome) (bool, string) {
	for _, f := range c.filters {
		if f.ShouldFilter(outcome) {
			return true, f.Name()
		}
	}
	return false, ""
}
