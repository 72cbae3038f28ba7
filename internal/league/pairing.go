package league

import "sort"

// PlayedSet holds the unordered team pairs that already met.
type PlayedSet map[[2]string]bool

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Add records that a and b played each other.
func (p PlayedSet) Add(a, b string) {
	p[pairKey(a, b)] = true
}

// Has reports whether a and b already played.
func (p PlayedSet) Has(a, b string) bool {
	return p[pairKey(a, b)]
}

// SortStandings orders teams by wins, then set differential, then id.
func SortStandings(teams []*Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.SetsDiff() != b.SetsDiff() {
			return a.SetsDiff() > b.SetsDiff()
		}
		return a.ID < b.ID
	})
}

// PairRound pairs every team with the next team in standings order it has not
// played yet, falling back to the next free team when all remaining opponents
// are repeats. With an odd count the last unpaired team gets the bye.
func PairRound(teams []*Team, played PlayedSet) []Pairing {
	order := make([]*Team, len(teams))
	copy(order, teams)
	SortStandings(order)

	paired := make(map[string]bool, len(order))
	var pairings []Pairing
	for i, team := range order {
		if paired[team.ID] {
			continue
		}
		var opponent *Team
		for _, candidate := range order[i+1:] {
			if !paired[candidate.ID] && !played.Has(team.ID, candidate.ID) {
				opponent = candidate
				break
			}
		}
		if opponent == nil {
			for _, candidate := range order[i+1:] {
				if !paired[candidate.ID] {
					opponent = candidate
					break
				}
			}
		}
		if opponent == nil {
			continue
		}
		paired[team.ID] = true
		paired[opponent.ID] = true
		pairings = append(pairings, Pairing{TeamAID: team.ID, TeamBID: opponent.ID})
	}

	if len(order)%2 == 1 {
		for i := len(order) - 1; i >= 0; i-- {
			if !paired[order[i].ID] {
				pairings = append(pairings, Pairing{TeamAID: order[i].ID})
				break
			}
		}
	}
	return pairings
}
