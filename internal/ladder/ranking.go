package ladder

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

// RankEntry is a team's position in its division.
type RankEntry struct {
	TeamID string
	Rank   int
}

// RankChange describes one team moving from OldRank to NewRank.
// NewRank is 0 when the team left the ladder.
type RankChange struct {
	TeamID  string `json:"team_id"`
	OldRank int    `json:"old_rank"`
	NewRank int    `json:"new_rank"`
}

// CheckPermutation verifies that the ranks are exactly 1..N with no gaps or duplicates.
func CheckPermutation(entries []RankEntry) error {
	seen := make([]bool, len(entries)+1)
	for _, e := range entries {
		if e.Rank < 1 || e.Rank > len(entries) {
			return fmt.Errorf("team %s has rank %d outside 1..%d", e.TeamID, e.Rank, len(entries))
		}
		if seen[e.Rank] {
			return fmt.Errorf("rank %d is held by more than one team", e.Rank)
		}
		seen[e.Rank] = true
	}
	return nil
}

func rankOf(entries []RankEntry, teamID string) (int, bool) {
	for _, e := range entries {
		if e.TeamID == teamID {
			return e.Rank, true
		}
	}
	return 0, false
}

// MoveTo rotates the block between the team's current rank and target so the
// team lands on target and every team in between shifts one slot towards the
// vacated rank. Target is clamped to 1..N.
func MoveTo(entries []RankEntry, teamID string, target int) ([]RankChange, error) {
	old, ok := rankOf(entries, teamID)
	if !ok {
		return nil, fmt.Errorf("team %s is not ranked in this division", teamID)
	}
	n := len(entries)
	if target < 1 {
		target = 1
	}
	if target > n {
		target = n
	}
	if target == old {
		return nil, nil
	}

	var changes []RankChange
	for _, e := range entries {
		switch {
		case e.TeamID == teamID:
			changes = append(changes, RankChange{TeamID: e.TeamID, OldRank: old, NewRank: target})
		case target < old && e.Rank >= target && e.Rank < old:
			changes = append(changes, RankChange{TeamID: e.TeamID, OldRank: e.Rank, NewRank: e.Rank + 1})
		case target > old && e.Rank > old && e.Rank <= target:
			changes = append(changes, RankChange{TeamID: e.TeamID, OldRank: e.Rank, NewRank: e.Rank - 1})
		}
	}
	sortChanges(changes)
	return changes, nil
}

// SwapAfterWin computes the rank changes of a decisive result.
//
// When the lower ranked team wins it takes the loser's rank and the block
// [loserRank, winnerRank) moves down by one. When the higher ranked team wins
// the loser drops one place, swapping with the team directly below it; a
// loser already in last place keeps its rank. Equal ranks change nothing.
func SwapAfterWin(entries []RankEntry, winnerID, loserID string) ([]RankChange, error) {
	winnerRank, ok := rankOf(entries, winnerID)
	if !ok {
		return nil, fmt.Errorf("winner %s is not ranked in this division", winnerID)
	}
	loserRank, ok := rankOf(entries, loserID)
	if !ok {
		return nil, fmt.Errorf("loser %s is not ranked in this division", loserID)
	}

	switch {
	case winnerRank == loserRank:
		log.Warn("Rank swap requested for teams with equal rank, ignoring", "winner", winnerID, "loser", loserID, "rank", winnerRank)
		return nil, nil
	case winnerRank > loserRank:
		return MoveTo(entries, winnerID, loserRank)
	default:
		return MoveTo(entries, loserID, loserRank+1)
	}
}

// Penalize moves a team down by amount ranks, capped at the bottom of the division.
func Penalize(entries []RankEntry, teamID string, amount int) ([]RankChange, error) {
	if amount <= 0 {
		return nil, nil
	}
	old, ok := rankOf(entries, teamID)
	if !ok {
		return nil, fmt.Errorf("team %s is not ranked in this division", teamID)
	}
	return MoveTo(entries, teamID, old+amount)
}

// Remove takes a team out of the division and closes the gap below it.
func Remove(entries []RankEntry, teamID string) ([]RankChange, error) {
	old, ok := rankOf(entries, teamID)
	if !ok {
		return nil, fmt.Errorf("team %s is not ranked in this division", teamID)
	}
	changes := []RankChange{{TeamID: teamID, OldRank: old, NewRank: 0}}
	for _, e := range entries {
		if e.Rank > old {
			changes = append(changes, RankChange{TeamID: e.TeamID, OldRank: e.Rank, NewRank: e.Rank - 1})
		}
	}
	sortChanges(changes)
	return changes, nil
}

// ApplyChanges returns a copy of entries with changes applied. Removed teams are dropped.
func ApplyChanges(entries []RankEntry, changes []RankChange) []RankEntry {
	byID := make(map[string]int, len(changes))
	for _, c := range changes {
		byID[c.TeamID] = c.NewRank
	}
	out := make([]RankEntry, 0, len(entries))
	for _, e := range entries {
		if r, ok := byID[e.TeamID]; ok {
			if r == 0 {
				continue
			}
			e.Rank = r
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

func sortChanges(changes []RankChange) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].OldRank < changes[j].OldRank })
}

func changeFor(changes []RankChange, teamID string) (RankChange, bool) {
	for _, c := range changes {
		if c.TeamID == teamID {
			return c, true
		}
	}
	return RankChange{}, false
}
