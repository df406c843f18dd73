package filter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/maxvaer/dirbust/internal/scanner"
)

// SizeFilter hides responses whose body size is one of a fixed set, the
// usual way to drop a catch-all page that answers 200 for everything.
type SizeFilter struct {
	sizes []int64 // sorted, unique
}

func NewSizeFilter(sizes []int) *SizeFilter {
	f := &SizeFilter{sizes: make([]int64, 0, len(sizes))}
	for _, s := range sizes {
		f.sizes = append(f.sizes, int64(s))
	}
	slices.Sort(f.sizes)
	f.sizes = slices.Compact(f.sizes)
	return f
}

func (f *SizeFilter) Name() string { return "size" }

func (f *SizeFilter) ShouldFilter(o scanner.Outcome) bool {
	if !o.OK() {
		return false
	}
	_, found := slices.BinarySearch(f.sizes, o.ContentLength)
	return found
}

func (f *SizeFilter) String() string {
	parts := make([]string, len(f.sizes))
	for i, s := range f.sizes {
		parts[i] = strconv.FormatInt(s, 10)
	}
	return strings.Join(parts, ",")
}
