package ladder

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minGames = 0
	maxGames = 7
)

// Set holds the games won by team A and team B in one set.
type Set struct {
	A int `json:"a" msgpack:"a"`
	B int `json:"b" msgpack:"b"`
}

// SetScores is a full match result in team A's perspective. Sets one and two are
// mandatory, the third is only present when it was played.
type SetScores struct {
	Sets []Set `json:"sets" msgpack:"sets"`
}

// Tally is the aggregate of a score.
type Tally struct {
	SetsA  int
	SetsB  int
	GamesA int
	GamesB int
}

// Validate checks the structure and the per-set game counts.
func (s SetScores) Validate() error {
	if len(s.Sets) < 2 {
		return newError(ErrValidation, "scores for set 1 and set 2 are required")
	}
	if len(s.Sets) > 3 {
		return newError(ErrValidation, "a match has at most 3 sets")
	}
	for i, set := range s.Sets {
		if set.A < minGames || set.A > maxGames || set.B < minGames || set.B > maxGames {
			return newError(ErrValidation, "set %d: games must be between %d and %d", i+1, minGames, maxGames)
		}
		if set.A == set.B {
			return newError(ErrValidation, "set %d cannot end level at %d-%d", i+1, set.A, set.B)
		}
	}
	return nil
}

// HasThirdSet reports whether a deciding set was recorded.
func (s SetScores) HasThirdSet() bool {
	return len(s.Sets) == 3
}

// Tally counts sets and games per side.
func (s SetScores) Tally() Tally {
	var t Tally
	for _, set := range s.Sets {
		t.GamesA += set.A
		t.GamesB += set.B
		switch {
		case set.A > set.B:
			t.SetsA++
		case set.B > set.A:
			t.SetsB++
		}
	}
	return t
}

// Winner returns the side with more sets, or false on a level set count.
func (s SetScores) Winner() (Side, bool) {
	t := s.Tally()
	switch {
	case t.SetsA > t.SetsB:
		return SideA, true
	case t.SetsB > t.SetsA:
		return SideB, true
	}
	return "", false
}

// Equal compares two scores set by set.
func (s SetScores) Equal(o SetScores) bool {
	if len(s.Sets) != len(o.Sets) {
		return false
	}
	for i := range s.Sets {
		if s.Sets[i] != o.Sets[i] {
			return false
		}
	}
	return true
}

// String renders the score as "6-4, 3-6, 7-5".
func (s SetScores) String() string {
	parts := make([]string, len(s.Sets))
	for i, set := range s.Sets {
		parts[i] = fmt.Sprintf("%d-%d", set.A, set.B)
	}
	return strings.Join(parts, ", ")
}

// ParseSetScores reads a score like "6-4, 6-3" or "6-4 3-6 7-5". The result is validated.
func ParseSetScores(raw string) (SetScores, error) {
	scores, err := parseSets(raw)
	if err != nil {
		return SetScores{}, err
	}
	if err := scores.Validate(); err != nil {
		return SetScores{}, err
	}
	return scores, nil
}

func parseSets(raw string) (SetScores, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var scores SetScores
	for _, f := range fields {
		games := strings.Split(f, "-")
		if len(games) != 2 {
			return SetScores{}, newError(ErrValidation, "malformed set %q (expected games-games)", f)
		}
		a, errA := strconv.Atoi(strings.TrimSpace(games[0]))
		b, errB := strconv.Atoi(strings.TrimSpace(games[1]))
		if errA != nil || errB != nil {
			return SetScores{}, newError(ErrValidation, "malformed set %q (games must be numbers)", f)
		}
		scores.Sets = append(scores.Sets, Set{A: a, B: b})
	}
	return scores, nil
}

// compareSubmissions decides whether two independently submitted scores agree.
// Structural disagreement (set 3 played on one side only) and value
// disagreement both count as a mismatch.
func compareSubmissions(a, b *SetScores) (bool, string) {
	if a == nil || b == nil {
		return false, "both teams must submit a score"
	}
	if err := a.Validate(); err != nil {
		return false, "team A submission: " + Reason(err)
	}
	if err := b.Validate(); err != nil {
		return false, "team B submission: " + Reason(err)
	}
	if a.HasThirdSet() != b.HasThirdSet() {
		return false, "teams disagree on whether a third set was played"
	}
	if !a.Equal(*b) {
		return false, fmt.Sprintf("submitted scores differ (%s vs %s)", a, b)
	}
	return true, ""
}
