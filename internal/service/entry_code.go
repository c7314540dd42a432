package service

import (
	"errors"
	"math/rand/v2"
	"strconv"
)

// Entry codes are the course tag followed by a numeric suffix drawn from a
// small fixed range, e.g. "BIO107".  With 21 possible suffixes per tag the
// code space is a hard capacity limit, not just a formatting detail: once a
// tag has 21 paid enrollments no further code can be issued for it.
const (
	codeSuffixMin = 100
	codeSuffixMax = 120
)

// CodeSpaceSize is the number of entry codes available per course tag.
const CodeSpaceSize = codeSuffixMax - codeSuffixMin + 1

// ErrCodeSpaceExhausted is returned when every suffix for a course tag has
// already been issued.
var ErrCodeSpaceExhausted = errors.New("entry code space exhausted for course tag")

// CodeAllocator picks unused entry codes for a course tag.  It selects
// uniformly at random from the remaining free suffixes, so it terminates in
// a single draw and never revisits a used value.  Callers must obtain the
// used set under the workflow transaction's row locks for the uniqueness
// guarantee to hold.
type CodeAllocator struct {
	randInt func(n int) int // uniform draw in [0, n); replaced in tests
}

// NewCodeAllocator returns an allocator backed by math/rand/v2.
func NewCodeAllocator() *CodeAllocator {
	return &CodeAllocator{randInt: rand.IntN}
}

// Allocate returns an entry code for the given course tag that is not in
// the used set.  The used set maps suffixes already present in the
// enrollment ledger.  It returns ErrCodeSpaceExhausted when no suffix is
// free.
func (a *CodeAllocator) Allocate(tag string, used map[int]struct{}) (string, error) {
	free := make([]int, 0, CodeSpaceSize)
	for s := codeSuffixMin; s <= codeSuffixMax; s++ {
		if _, taken := used[s]; !taken {
			free = append(free, s)
		}
	}
	if len(free) == 0 {
		return "", ErrCodeSpaceExhausted
	}
	return tag + strconv.Itoa(free[a.randInt(len(free))]), nil
}
