package league

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamsWithWins(wins ...int) []*Team {
	teams := make([]*Team, len(wins))
	for i, w := range wins {
		teams[i] = &Team{ID: fmt.Sprintf("t%d", i+1), Wins: w}
	}
	return teams
}

func TestSortStandings(t *testing.T) {
	teams := []*Team{
		{ID: "c", Wins: 2, SetsFor: 4, SetsAgainst: 2},
		{ID: "b", Wins: 2, SetsFor: 5, SetsAgainst: 1},
		{ID: "a", Wins: 2, SetsFor: 4, SetsAgainst: 2},
		{ID: "d", Wins: 3},
	}
	SortStandings(teams)

	ids := make([]string, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
}

func TestPairRound(t *testing.T) {
	t.Run("first round pairs neighbours", func(t *testing.T) {
		pairings := PairRound(teamsWithWins(0, 0, 0, 0), PlayedSet{})
		assert.Equal(t, []Pairing{{"t1", "t2"}, {"t3", "t4"}}, pairings)
	})

	t.Run("repeat matchups are avoided", func(t *testing.T) {
		played := PlayedSet{}
		played.Add("t1", "t2")
		played.Add("t3", "t4")

		pairings := PairRound(teamsWithWins(1, 1, 0, 0), played)
		assert.Equal(t, []Pairing{{"t1", "t3"}, {"t2", "t4"}}, pairings)
	})

	t.Run("falls back to a repeat when nothing else is left", func(t *testing.T) {
		played := PlayedSet{}
		played.Add("t1", "t2")

		pairings := PairRound(teamsWithWins(0, 0), played)
		assert.Equal(t, []Pairing{{"t1", "t2"}}, pairings)
	})

	t.Run("odd count gives the lowest team a bye", func(t *testing.T) {
		pairings := PairRound(teamsWithWins(2, 1, 0), PlayedSet{})
		require.Len(t, pairings, 2)
		assert.Equal(t, Pairing{"t1", "t2"}, pairings[0])
		assert.Equal(t, Pairing{TeamAID: "t3"}, pairings[1])
	})

	t.Run("every team appears exactly once", func(t *testing.T) {
		for n := 2; n <= 15; n++ {
			wins := make([]int, n)
			for i := range wins {
				wins[i] = (i * 7) % 4
			}
			seen := map[string]int{}
			for _, p := range PairRound(teamsWithWins(wins...), PlayedSet{}) {
				seen[p.TeamAID]++
				if p.TeamBID != "" {
					seen[p.TeamBID]++
				}
			}
			assert.Len(t, seen, n, "n=%d", n)
			for id, c := range seen {
				assert.Equal(t, 1, c, "n=%d team=%s", n, id)
			}
		}
	})

	t.Run("input order is not modified", func(t *testing.T) {
		teams := teamsWithWins(0, 3)
		PairRound(teams, PlayedSet{})
		assert.Equal(t, "t1", teams[0].ID)
	})
}

func TestNextSlot(t *testing.T) {
	testCases := []struct {
		stage Stage
		next  Stage
		slot  Slot
	}{
		{StageQF1, StageSF1, SlotA},
		{StageQF2, StageSF1, SlotB},
		{StageQF3, StageSF2, SlotA},
		{StageQF4, StageSF2, SlotB},
		{StageSF1, StageF1, SlotA},
		{StageSF2, StageF1, SlotB},
	}
	for _, tc := range testCases {
		t.Run(string(tc.stage), func(t *testing.T) {
			next, slot, ok := NextSlot(tc.stage)
			require.True(t, ok)
			assert.Equal(t, tc.next, next)
			assert.Equal(t, tc.slot, slot)
		})
	}

	_, _, ok := NextSlot(StageF1)
	assert.False(t, ok)
	assert.True(t, ValidStage(StageF1))
	assert.False(t, ValidStage("QF5"))
}
