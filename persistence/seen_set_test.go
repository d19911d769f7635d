package persistence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/persistence"
)

func Test_SeenSet_Track_Returns_The_Tracked_Instance(t *testing.T) {
	seen := persistence.NewSeenSet[string, *account]()
	first := newAccount("a")
	second := newAccount("a")

	assert.Same(t, first, seen.Track(first))
	assert.Same(t, first, seen.Track(second))
	assert.Equal(t, 1, seen.Len())

	tracked, ok := seen.Lookup("a")
	require.True(t, ok)
	assert.Same(t, first, tracked)
}

func Test_SeenSet_CollectEvents_Drains_Each_Aggregate_Once(t *testing.T) {
	seen := persistence.NewSeenSet[string, *account]()
	a := newAccount("a")
	b := newAccount("b")
	a.deposit(1, at(1))
	b.deposit(2, at(2))

	seen.Track(a)
	seen.Track(b)
	seen.Track(a)
	seen.Put(a)

	events := seen.CollectEvents()

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].(deposited).AccountID)
	assert.Equal(t, "b", events[1].(deposited).AccountID)
	assert.Empty(t, seen.CollectEvents())
}

func Test_SeenSet_Put_When_Another_Instance_Was_Tracked(t *testing.T) {
	seen := persistence.NewSeenSet[string, *account]()
	loaded := newAccount("a")
	loaded.deposit(1, at(1))
	seen.Track(loaded)

	replacement := newAccount("a")
	replacement.deposit(2, at(2))
	seen.Put(replacement)

	tracked, ok := seen.Lookup("a")
	require.True(t, ok)
	assert.Same(t, replacement, tracked)

	events := seen.CollectEvents()
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].(deposited).Amount)
	assert.Equal(t, 2, events[1].(deposited).Amount)
}

func Test_SeenSet_Lookup_When_Unknown(t *testing.T) {
	seen := persistence.NewSeenSet[string, *account]()

	_, ok := seen.Lookup("missing")

	assert.False(t, ok)
	assert.Empty(t, seen.CollectEvents())
}
