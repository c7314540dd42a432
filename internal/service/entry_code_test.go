package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateStaysInRange(t *testing.T) {
	a := NewCodeAllocator()
	for i := 0; i < 200; i++ {
		code, err := a.Allocate("BIO", map[int]struct{}{})
		require.NoError(t, err)
		require.True(t, len(code) > 3, "code %q too short", code)
		assert.Equal(t, "BIO", code[:3])
		suffix, err := strconv.Atoi(code[3:])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, suffix, 100)
		assert.LessOrEqual(t, suffix, 120)
	}
}

func TestAllocateSkipsUsedSuffixes(t *testing.T) {
	a := NewCodeAllocator()

	// Leave a single free suffix; the allocator must find it every time.
	used := make(map[int]struct{})
	for s := 100; s <= 120; s++ {
		if s != 113 {
			used[s] = struct{}{}
		}
	}
	for i := 0; i < 50; i++ {
		code, err := a.Allocate("CHEM", used)
		require.NoError(t, err)
		assert.Equal(t, "CHEM113", code)
	}
}

func TestAllocateUniqueAcrossFullSpace(t *testing.T) {
	a := NewCodeAllocator()
	used := make(map[int]struct{})
	seen := make(map[string]struct{})

	// Drain the whole space one code at a time, feeding each allocation
	// back into the used set the way the ledger read does.
	for i := 0; i < CodeSpaceSize; i++ {
		code, err := a.Allocate("MATH", used)
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "code %q issued twice", code)
		seen[code] = struct{}{}
		suffix, err := strconv.Atoi(code[len("MATH"):])
		require.NoError(t, err)
		used[suffix] = struct{}{}
	}
	assert.Len(t, seen, CodeSpaceSize)
}

func TestAllocateExhausted(t *testing.T) {
	a := NewCodeAllocator()
	used := make(map[int]struct{})
	for s := 100; s <= 120; s++ {
		used[s] = struct{}{}
	}
	code, err := a.Allocate("BIO", used)
	assert.Empty(t, code)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestAllocateDeterministicPick(t *testing.T) {
	// With the draw pinned to index 0 the allocator returns the smallest
	// free suffix, which makes the free-set ordering observable.
	a := &CodeAllocator{randInt: func(int) int { return 0 }}

	code, err := a.Allocate("BIO", map[int]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "BIO100", code)

	code, err = a.Allocate("BIO", map[int]struct{}{100: {}, 101: {}})
	require.NoError(t, err)
	assert.Equal(t, "BIO102", code)
}
