package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PolicyMode selects how a StatusPolicy interprets its codes.
type PolicyMode int

const (
	DenyList PolicyMode = iota
	AllowList
)

func (m PolicyMode) String() string {
	if m == AllowList {
		return "allow"
	}
	return "deny"
}

// StatusPolicy is either an allow-list or a deny-list of status codes.
type StatusPolicy struct {
	Mode  PolicyMode
	codes map[int]struct{}
}

// NewStatusPolicy resolves the allow and deny lists into one policy. A
// non-empty deny-list always wins; otherwise a non-empty allow-list is
// used; otherwise DefaultDenyStatus applies. Empty lists count as unset.
// Both lists are range-checked even when one of them is ignored.
func NewStatusPolicy(allow, deny []int) (StatusPolicy, error) {
	for _, list := range [][]int{allow, deny} {
		for _, c := range list {
			if c < 100 || c > 599 {
				return StatusPolicy{}, fmt.Errorf("%w: %d", ErrInvalidStatus, c)
			}
		}
	}

	mode, codes := DenyList, deny
	switch {
	case len(deny) > 0:
	case len(allow) > 0:
		mode, codes = AllowList, allow
	default:
		codes = DefaultDenyStatus
	}

	p := StatusPolicy{Mode: mode, codes: make(map[int]struct{}, len(codes))}
	for _, c := range codes {
		p.codes[c] = struct{}{}
	}
	return p, nil
}

// Contains reports whether code is listed in the policy.
func (p StatusPolicy) Contains(code int) bool {
	_, ok := p.codes[code]
	return ok
}

// Codes returns the listed codes in ascending order.
func (p StatusPolicy) Codes() []int {
	out := make([]int, 0, len(p.codes))
	for c := range p.codes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func (p StatusPolicy) String() string {
	parts := make([]string, 0, len(p.codes))
	for _, c := range p.Codes() {
		parts = append(parts, strconv.Itoa(c))
	}
	return p.Mode.String() + ":" + strings.Join(parts, ",")
}
