package ladder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntries(n int) []RankEntry {
	entries := make([]RankEntry, n)
	for i := range entries {
		entries[i] = RankEntry{TeamID: fmt.Sprintf("t%d", i+1), Rank: i + 1}
	}
	return entries
}

func ranksByID(entries []RankEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.TeamID] = e.Rank
	}
	return out
}

func TestCheckPermutation(t *testing.T) {
	t.Run("dense ranks pass", func(t *testing.T) {
		assert.NoError(t, CheckPermutation(seedEntries(6)))
	})
	t.Run("empty division passes", func(t *testing.T) {
		assert.NoError(t, CheckPermutation(nil))
	})
	t.Run("duplicate rank fails", func(t *testing.T) {
		entries := seedEntries(3)
		entries[2].Rank = 2
		assert.Error(t, CheckPermutation(entries))
	})
	t.Run("gap fails", func(t *testing.T) {
		entries := seedEntries(3)
		entries[2].Rank = 4
		assert.Error(t, CheckPermutation(entries))
	})
}

func TestSwapAfterWin(t *testing.T) {
	t.Run("underdog takes the loser's rank and the block shifts down", func(t *testing.T) {
		// Setup
		entries := seedEntries(5)

		// Execute: rank 4 beats rank 2
		changes, err := SwapAfterWin(entries, "t4", "t2")

		// Assert
		require.NoError(t, err)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, map[string]int{"t1": 1, "t4": 2, "t2": 3, "t3": 4, "t5": 5}, ranks)
	})

	t.Run("adjacent underdog win is a plain swap", func(t *testing.T) {
		entries := seedEntries(4)
		changes, err := SwapAfterWin(entries, "t3", "t2")
		require.NoError(t, err)
		assert.Len(t, changes, 2)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, 2, ranks["t3"])
		assert.Equal(t, 3, ranks["t2"])
	})

	t.Run("favourite win drops the loser one place", func(t *testing.T) {
		entries := seedEntries(5)
		changes, err := SwapAfterWin(entries, "t2", "t4")
		require.NoError(t, err)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, map[string]int{"t1": 1, "t2": 2, "t3": 3, "t5": 4, "t4": 5}, ranks)
	})

	t.Run("favourite win against the last team changes nothing", func(t *testing.T) {
		entries := seedEntries(4)
		changes, err := SwapAfterWin(entries, "t2", "t4")
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("equal ranks change nothing", func(t *testing.T) {
		entries := []RankEntry{{TeamID: "a", Rank: 1}, {TeamID: "b", Rank: 1}}
		changes, err := SwapAfterWin(entries, "a", "b")
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("unknown team is an error", func(t *testing.T) {
		_, err := SwapAfterWin(seedEntries(3), "t1", "nope")
		assert.Error(t, err)
	})

	t.Run("every pair keeps a permutation", func(t *testing.T) {
		for n := 5; n <= 20; n++ {
			entries := seedEntries(n)
			for w := 1; w <= n; w++ {
				for l := 1; l <= n; l++ {
					if w == l {
						continue
					}
					winner, loser := fmt.Sprintf("t%d", w), fmt.Sprintf("t%d", l)
					changes, err := SwapAfterWin(entries, winner, loser)
					require.NoError(t, err)
					after := ApplyChanges(entries, changes)
					require.NoError(t, CheckPermutation(after), "n=%d winner=%d loser=%d", n, w, l)
					ranks := ranksByID(after)
					if w > l {
						assert.Equal(t, l, ranks[winner], "n=%d winner=%d loser=%d", n, w, l)
						assert.Equal(t, l+1, ranks[loser], "n=%d winner=%d loser=%d", n, w, l)
					} else {
						assert.Equal(t, w, ranks[winner], "n=%d winner=%d loser=%d", n, w, l)
						assert.Equal(t, min(l+1, n), ranks[loser], "n=%d winner=%d loser=%d", n, w, l)
					}
				}
			}
		}
	})
}

func TestPenalize(t *testing.T) {
	t.Run("moves the team down and the others up", func(t *testing.T) {
		entries := seedEntries(5)
		changes, err := Penalize(entries, "t2", 2)
		require.NoError(t, err)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, map[string]int{"t1": 1, "t3": 2, "t4": 3, "t2": 4, "t5": 5}, ranks)
	})

	t.Run("is capped at the bottom", func(t *testing.T) {
		entries := seedEntries(4)
		changes, err := Penalize(entries, "t3", 10)
		require.NoError(t, err)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, 4, ranks["t3"])
		assert.NoError(t, CheckPermutation(ApplyChanges(entries, changes)))
	})

	t.Run("last place is a no-op", func(t *testing.T) {
		changes, err := Penalize(seedEntries(4), "t4", 1)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("non-positive amount is a no-op", func(t *testing.T) {
		for _, amount := range []int{0, -1} {
			changes, err := Penalize(seedEntries(4), "t1", amount)
			require.NoError(t, err)
			assert.Empty(t, changes)
		}
	})
}

func TestMoveTo(t *testing.T) {
	t.Run("moving up shifts the block down", func(t *testing.T) {
		entries := seedEntries(5)
		changes, err := MoveTo(entries, "t5", 1)
		require.NoError(t, err)
		ranks := ranksByID(ApplyChanges(entries, changes))
		assert.Equal(t, map[string]int{"t5": 1, "t1": 2, "t2": 3, "t3": 4, "t4": 5}, ranks)
	})

	t.Run("target is clamped", func(t *testing.T) {
		entries := seedEntries(3)
		changes, err := MoveTo(entries, "t2", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, ranksByID(ApplyChanges(entries, changes))["t2"])
	})
}

func TestRemove(t *testing.T) {
	entries := seedEntries(5)
	changes, err := Remove(entries, "t2")
	require.NoError(t, err)

	after := ApplyChanges(entries, changes)
	require.Len(t, after, 4)
	assert.NoError(t, CheckPermutation(after))
	assert.Equal(t, map[string]int{"t1": 1, "t3": 2, "t4": 3, "t5": 4}, ranksByID(after))
}
