package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(sets ...Set) SetScores {
	return SetScores{Sets: sets}
}

func TestSetScores_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		scores  SetScores
		wantErr bool
	}{
		{"two sets", score(Set{6, 4}, Set{6, 3}), false},
		{"three sets", score(Set{6, 4}, Set{3, 6}, Set{7, 5}), false},
		{"tie-break set", score(Set{7, 6}, Set{6, 7}, Set{6, 0}), false},
		{"one set only", score(Set{6, 4}), true},
		{"four sets", score(Set{6, 4}, Set{6, 4}, Set{6, 4}, Set{6, 4}), true},
		{"too many games", score(Set{8, 6}, Set{6, 3}), true},
		{"negative games", score(Set{-1, 6}, Set{6, 3}), true},
		{"level set", score(Set{6, 6}, Set{6, 3}), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scores.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetScores_Winner(t *testing.T) {
	t.Run("straight sets", func(t *testing.T) {
		side, ok := score(Set{6, 4}, Set{6, 3}).Winner()
		assert.True(t, ok)
		assert.Equal(t, SideA, side)
	})
	t.Run("team B in three", func(t *testing.T) {
		side, ok := score(Set{6, 4}, Set{3, 6}, Set{5, 7}).Winner()
		assert.True(t, ok)
		assert.Equal(t, SideB, side)
	})
	t.Run("one set each is a draw", func(t *testing.T) {
		_, ok := score(Set{6, 4}, Set{3, 6}).Winner()
		assert.False(t, ok)
	})
}

func TestSetScores_Tally(t *testing.T) {
	tally := score(Set{6, 4}, Set{3, 6}, Set{7, 5}).Tally()
	assert.Equal(t, Tally{SetsA: 2, SetsB: 1, GamesA: 16, GamesB: 15}, tally)
}

func TestParseSetScores(t *testing.T) {
	t.Run("comma separated", func(t *testing.T) {
		s, err := ParseSetScores("6-4, 3-6, 7-5")
		require.NoError(t, err)
		assert.Equal(t, score(Set{6, 4}, Set{3, 6}, Set{7, 5}), s)
		assert.Equal(t, "6-4, 3-6, 7-5", s.String())
	})
	t.Run("space separated", func(t *testing.T) {
		s, err := ParseSetScores("6-1 6-2")
		require.NoError(t, err)
		assert.False(t, s.HasThirdSet())
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := ParseSetScores("6:4 6-2")
		assert.ErrorIs(t, err, ErrValidation)
	})
	t.Run("invalid games", func(t *testing.T) {
		_, err := ParseSetScores("9-4 6-2")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCompareSubmissions(t *testing.T) {
	a := score(Set{6, 4}, Set{6, 3})

	t.Run("identical submissions agree", func(t *testing.T) {
		b := score(Set{6, 4}, Set{6, 3})
		ok, _ := compareSubmissions(&a, &b)
		assert.True(t, ok)
	})
	t.Run("different values disagree", func(t *testing.T) {
		b := score(Set{6, 4}, Set{6, 2})
		ok, reason := compareSubmissions(&a, &b)
		assert.False(t, ok)
		assert.Contains(t, reason, "differ")
	})
	t.Run("third set on one side only disagrees", func(t *testing.T) {
		b := score(Set{6, 4}, Set{6, 3}, Set{6, 0})
		ok, reason := compareSubmissions(&a, &b)
		assert.False(t, ok)
		assert.Contains(t, reason, "third set")
	})
	t.Run("missing submission disagrees", func(t *testing.T) {
		ok, _ := compareSubmissions(&a, nil)
		assert.False(t, ok)
	})
}
