package ladder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/padel-ladder/internal/database"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx     context.Context
	svc     *Service
	store   Store
	notif   *notifier.Mock
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
	clock   *testClock
	teams   map[string]*Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := &fixture{
		ctx:     context.Background(),
		store:   New(db),
		notif:   notifier.NewMock(),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock(),
		clock:   &testClock{now: epoch},
		teams:   make(map[string]*Team),
	}
	f.svc = NewService(f.store, f.notif, f.metrics, f.pubsub, WithClock(f.clock.Now))
	return f
}

// seed registers one team per name in the men's division, ranked in the given order.
func (f *fixture) seed(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		lower := strings.ToLower(name)
		team, err := f.svc.RegisterTeam(f.ctx, TeamInput{
			Name:         name,
			Division:     "men",
			Player1Name:  name + " one",
			Player1Email: lower + "1@example.com",
			Player2Name:  name + " two",
			Player2Email: lower + "2@example.com",
		})
		require.NoError(t, err)
		f.teams[name] = team
	}
	f.notif.Reset()
	f.pubsub.Reset()
}

func (f *fixture) id(name string) string {
	return f.teams[name].ID
}

// ranks returns the current rank of every active team by name.
func (f *fixture) ranks(t *testing.T) map[string]int {
	t.Helper()
	rows, err := f.svc.Rankings(f.ctx, DivisionMen, false)
	require.NoError(t, err)
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Team.Name] = r.Team.Rank
	}
	return out
}

func (f *fixture) team(t *testing.T, name string) *Team {
	t.Helper()
	team, err := f.store.GetTeam(f.ctx, f.id(name))
	require.NoError(t, err)
	return team
}

// acceptedMatch creates and accepts a challenge and returns its match.
func (f *fixture) acceptedMatch(t *testing.T, challenger, challenged string) (*Challenge, *Match) {
	t.Helper()
	c, err := f.svc.CreateChallenge(f.ctx, f.id(challenger), f.id(challenged))
	require.NoError(t, err)
	c, err = f.svc.AcceptChallenge(f.ctx, c.ID, f.id(challenged))
	require.NoError(t, err)
	m, err := f.store.GetMatchByChallenge(f.ctx, c.ID)
	require.NoError(t, err)
	return c, m
}

func TestRegisterTeam(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B")

	t.Run("appends at the bottom with a token", func(t *testing.T) {
		team, err := f.svc.RegisterTeam(f.ctx, TeamInput{Name: "C", Division: "men", Player1Name: "x", Player2Name: "y"})
		require.NoError(t, err)
		assert.Equal(t, 3, team.Rank)
		assert.NotEmpty(t, team.AccessToken)

		byToken, err := f.svc.TeamByToken(f.ctx, team.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, team.ID, byToken.ID)
	})

	t.Run("divisions are ranked separately", func(t *testing.T) {
		team, err := f.svc.RegisterTeam(f.ctx, TeamInput{Name: "W", Division: "women", Player1Name: "x", Player2Name: "y"})
		require.NoError(t, err)
		assert.Equal(t, 1, team.Rank)
	})

	t.Run("rejects unknown division and missing names", func(t *testing.T) {
		_, err := f.svc.RegisterTeam(f.ctx, TeamInput{Name: "X", Division: "juniors", Player1Name: "x", Player2Name: "y"})
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.svc.RegisterTeam(f.ctx, TeamInput{Name: " ", Division: "men", Player1Name: "x", Player2Name: "y"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		_, err := f.svc.TeamByToken(f.ctx, "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestChallengeLifecycle(t *testing.T) {
	t.Run("underdog win moves the challenger up", func(t *testing.T) {
		// Setup
		f := newFixture(t)
		f.seed(t, "A", "B", "C", "D")

		// Execute
		c, m := f.acceptedMatch(t, "D", "B")
		assert.Equal(t, ChallengeAccepted, c.Status)
		require.NotNil(t, c.CompletionDeadline)
		assert.Equal(t, epoch.Add(7*24*time.Hour), *c.CompletionDeadline)
		assert.Equal(t, f.id("D"), m.TeamAID)

		result := score(Set{6, 4}, Set{6, 3})
		m, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("D"), result)
		require.NoError(t, err)
		assert.Equal(t, MatchPendingOpponentScore, m.Status)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, f.ranks(t), "ranks must not move before verification")

		m, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), result)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, MatchCompleted, m.Status)
		assert.True(t, m.Verified)
		assert.Equal(t, f.id("D"), m.WinnerID)
		assert.Equal(t, 4, m.WinnerOldRank)
		assert.Equal(t, 2, m.WinnerNewRank)
		assert.Equal(t, 2, m.LoserOldRank)
		assert.Equal(t, 3, m.LoserNewRank)
		assert.Equal(t, map[string]int{"A": 1, "D": 2, "B": 3, "C": 4}, f.ranks(t))

		c, err = f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeCompleted, c.Status)

		d := f.team(t, "D")
		assert.Equal(t, 1, d.Stats.Wins)
		assert.Equal(t, 2, d.Stats.SetsWon)
		assert.Equal(t, 12, d.Stats.GamesWon)
		assert.Equal(t, 7, d.Stats.GamesLost)
		b := f.team(t, "B")
		assert.Equal(t, 1, b.Stats.Losses)
		assert.Equal(t, -5, b.Stats.GamesDiff())

		assert.Contains(t, f.notif.Subjects(), "Match confirmed")
		assert.Contains(t, f.pubsub.Topics(), pubsub.EventRankChanged)
		assert.Contains(t, f.pubsub.Topics(), pubsub.EventMatchCompleted)
		assert.Equal(t, 1, f.metrics.MatchesVerified())
		assert.Equal(t, 1, f.metrics.ChallengesCreated())
		assert.NoError(t, f.svc.VerifyDivision(f.ctx, DivisionMen))

		history, err := f.svc.RankHistory(f.ctx, f.id("C"))
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 3, history[0].OldRank)
		assert.Equal(t, 4, history[0].NewRank)
		assert.Equal(t, ReasonMatch, history[0].Reason)
	})

	t.Run("favourite win drops the challenger one place", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C", "D", "E")
		_, m := f.acceptedMatch(t, "C", "A")

		result := score(Set{2, 6}, Set{6, 7})
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), result)
		require.NoError(t, err)
		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("A"), result)
		require.NoError(t, err)

		assert.Equal(t, map[string]int{"A": 1, "B": 2, "D": 3, "C": 4, "E": 5}, f.ranks(t))
	})

	t.Run("one set each is a draw without rank change", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		_, m := f.acceptedMatch(t, "C", "B")

		result := score(Set{6, 4}, Set{4, 6})
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), result)
		require.NoError(t, err)
		m, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), result)
		require.NoError(t, err)

		assert.Equal(t, MatchCompleted, m.Status)
		assert.Empty(t, m.WinnerID)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, f.ranks(t))
		assert.Equal(t, 1, f.team(t, "C").Stats.Draws)
	})

	t.Run("reject frees both teams", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("A"))
		require.NoError(t, err)

		_, err = f.svc.RejectChallenge(f.ctx, c.ID, f.id("C"))
		assert.ErrorIs(t, err, ErrUnauthorized, "only the challenged team may respond")

		c, err = f.svc.RejectChallenge(f.ctx, c.ID, f.id("A"))
		require.NoError(t, err)
		assert.Equal(t, ChallengeRejected, c.Status)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, f.ranks(t))

		_, err = f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		assert.NoError(t, err)
		assert.Equal(t, 1, f.metrics.ChallengeTransitions(string(ChallengeRejected)))
	})
}

func TestCreateChallenge_Validation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C", "D", "E", "F")
	women, err := f.svc.RegisterTeam(f.ctx, TeamInput{Name: "W", Division: "women", Player1Name: "x", Player2Name: "y"})
	require.NoError(t, err)

	testCases := []struct {
		name       string
		challenger string
		challenged string
		wantErr    error
	}{
		{"self", f.id("C"), f.id("C"), ErrValidation},
		{"lower ranked target", f.id("B"), f.id("D"), ErrValidation},
		{"too far above", f.id("F"), f.id("B"), ErrValidation},
		{"other division", f.id("A"), women.ID, ErrValidation},
		{"unknown team", "missing", f.id("A"), ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateChallenge(f.ctx, tc.challenger, tc.challenged)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("max rank difference is inclusive", func(t *testing.T) {
		_, err := f.svc.CreateChallenge(f.ctx, f.id("E"), f.id("B"))
		assert.NoError(t, err)
	})

	t.Run("teams with an active challenge are locked", func(t *testing.T) {
		_, err := f.svc.CreateChallenge(f.ctx, f.id("D"), f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState)
		_, err = f.svc.CreateChallenge(f.ctx, f.id("E"), f.id("C"))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("settings apply to the next challenge", func(t *testing.T) {
		st, err := f.svc.GetSettings(f.ctx)
		require.NoError(t, err)
		st.MaxChallengeRankDifference = 1
		_, err = f.svc.UpdateSettings(f.ctx, st)
		require.NoError(t, err)

		_, err = f.svc.CreateChallenge(f.ctx, f.id("D"), f.id("A"))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = f.svc.CreateChallenge(f.ctx, f.id("D"), f.id("C"))
		assert.NoError(t, err)
		_, err = f.svc.CreateChallenge(f.ctx, f.id("F"), f.id("A"))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCreateChallenge_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C", "D", "E")

	var wg sync.WaitGroup
	errs := make([]error, 0, 3)
	var mu sync.Mutex
	for _, name := range []string{"C", "D", "E"} {
		wg.Add(1)
		go func(challenger string) {
			defer wg.Done()
			_, err := f.svc.CreateChallenge(f.ctx, f.id(challenger), f.id("B"))
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidState)
	}
	assert.Equal(t, 1, succeeded, "exactly one challenge against B may win the race")
}

func TestAcceptanceDeadline(t *testing.T) {
	t.Run("late accept expires the challenge and penalizes the challenged team", func(t *testing.T) {
		// Setup
		f := newFixture(t)
		f.seed(t, "A", "B", "C", "D")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("D"), f.id("B"))
		require.NoError(t, err)

		// Execute
		f.clock.Advance(49 * time.Hour)
		_, err = f.svc.AcceptChallenge(f.ctx, c.ID, f.id("B"))

		// Assert
		assert.ErrorIs(t, err, ErrDeadlinePassed)
		c, err = f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeExpired, c.Status)
		assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3, "D": 4}, f.ranks(t))
		assert.Equal(t, 1, f.metrics.RankPenalties(ReasonAcceptancePenalty))
		assert.Contains(t, f.notif.Subjects(), "Rank penalty applied")

		_, err = f.svc.AcceptChallenge(f.ctx, c.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3, "D": 4}, f.ranks(t), "penalty applies once")
	})

	t.Run("late reject is treated the same way", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("A"))
		require.NoError(t, err)

		f.clock.Advance(48*time.Hour + time.Second)
		_, err = f.svc.RejectChallenge(f.ctx, c.ID, f.id("A"))
		assert.ErrorIs(t, err, ErrDeadlinePassed)
		assert.Equal(t, map[string]int{"B": 1, "A": 2, "C": 3}, f.ranks(t))
	})

	t.Run("overdue challenges are reported without changing anything", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		require.NoError(t, err)
		f.clock.Advance(72 * time.Hour)

		overdue, err := f.svc.OverdueChallenges(f.ctx, f.clock.Now())
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, c.ID, overdue[0].ID)

		c, err = f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengePendingAcceptance, c.Status)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, f.ranks(t))
	})

	t.Run("sweep expiry runs once", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		require.NoError(t, err)

		expired, err := f.svc.ExpireChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, expired, "deadline has not passed yet")

		f.clock.Advance(49 * time.Hour)
		expired, err = f.svc.ExpireChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, expired)
		expired, err = f.svc.ExpireChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3}, f.ranks(t))
	})

	t.Run("kill-switch suppresses the penalty but not the expiry", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		st := DefaultSettings()
		st.PenaltiesActive = false
		_, err := f.svc.UpdateSettings(f.ctx, st)
		require.NoError(t, err)

		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		require.NoError(t, err)
		f.clock.Advance(49 * time.Hour)
		_, err = f.svc.AcceptChallenge(f.ctx, c.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrDeadlinePassed)

		c, err = f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeExpired, c.Status)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, f.ranks(t))
		assert.Zero(t, f.metrics.RankPenalties(ReasonAcceptancePenalty))
	})

	t.Run("admin accept ignores the deadline", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("B"), f.id("A"))
		require.NoError(t, err)
		f.clock.Advance(100 * time.Hour)

		c, err = f.svc.AdminAcceptChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeAccepted, c.Status)
	})
}

func TestCancelChallenge(t *testing.T) {
	t.Run("either party can cancel before a score is in", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, m := f.acceptedMatch(t, "C", "B")

		_, err := f.svc.CancelChallenge(f.ctx, c.ID, f.id("A"))
		assert.ErrorIs(t, err, ErrUnauthorized)

		c, err = f.svc.CancelChallenge(f.ctx, c.ID, f.id("C"))
		require.NoError(t, err)
		assert.Equal(t, ChallengeCancelled, c.Status)
		assert.Equal(t, f.id("C"), c.CancelledBy)

		_, err = f.svc.GetMatch(f.ctx, m.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		assert.NoError(t, err, "teams are free again")
	})

	t.Run("cannot cancel after a score was submitted", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, m := f.acceptedMatch(t, "C", "B")
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), score(Set{6, 1}, Set{6, 1}))
		require.NoError(t, err)

		_, err = f.svc.CancelChallenge(f.ctx, c.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState)
		_, err = f.svc.AdminCancelChallenge(f.ctx, c.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("cannot cancel after rejecting the opponent's score", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, m := f.acceptedMatch(t, "C", "B")
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), score(Set{6, 0}, Set{6, 0}))
		require.NoError(t, err)
		m, err = f.svc.RejectScore(f.ctx, m.ID, f.id("B"))
		require.NoError(t, err)
		require.False(t, m.AnySubmitted())

		_, err = f.svc.CancelChallenge(f.ctx, c.ID, f.id("B"))

		assert.ErrorIs(t, err, ErrInvalidState)
		stored, err := f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeAccepted, stored.Status)
		_, err = f.svc.GetMatch(f.ctx, m.ID)
		assert.NoError(t, err, "the match survives")
	})

	t.Run("cannot cancel a disputed match", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, m := f.acceptedMatch(t, "C", "B")
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), score(Set{6, 0}, Set{6, 0}))
		require.NoError(t, err)
		_, err = f.svc.RejectScore(f.ctx, m.ID, f.id("B"))
		require.NoError(t, err)
		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{0, 6}, Set{0, 6}))
		require.NoError(t, err)
		m, err = f.svc.RejectScore(f.ctx, m.ID, f.id("C"))
		require.NoError(t, err)
		require.Equal(t, MatchDisputed, m.Status)

		_, err = f.svc.CancelChallenge(f.ctx, c.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState)
		_, err = f.svc.AdminCancelChallenge(f.ctx, c.ID)
		assert.ErrorIs(t, err, ErrInvalidState)

		m, err = f.svc.GetMatch(f.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchDisputed, m.Status)
	})

	t.Run("challenged team cannot dodge the acceptance penalty", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		c, err := f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		require.NoError(t, err)
		f.clock.Advance(49 * time.Hour)

		_, err = f.svc.CancelChallenge(f.ctx, c.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrDeadlinePassed)
		assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3}, f.ranks(t))
	})
}

func TestScoreVerification(t *testing.T) {
	t.Run("identical resubmission is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		_, m := f.acceptedMatch(t, "C", "B")
		result := score(Set{6, 4}, Set{6, 4})

		for i := 0; i < 2; i++ {
			_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), result)
			require.NoError(t, err)
		}
		for i := 0; i < 2; i++ {
			_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), result)
			require.NoError(t, err)
		}

		assert.Equal(t, map[string]int{"A": 1, "C": 2, "B": 3}, f.ranks(t))
		assert.Equal(t, 1, f.team(t, "C").Stats.Wins)
		assert.Equal(t, 1, f.metrics.MatchesVerified())

		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{1, 6}, Set{1, 6}))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("outsiders cannot submit", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		_, m := f.acceptedMatch(t, "C", "B")
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("A"), score(Set{6, 4}, Set{6, 4}))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("invalid scores are rejected before anything changes", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		_, m := f.acceptedMatch(t, "B", "A")
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{6, 4}))
		assert.ErrorIs(t, err, ErrValidation)

		m, err = f.svc.GetMatch(f.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchPending, m.Status)
		assert.False(t, m.AnySubmitted())
	})

	t.Run("mismatch disputes and admin resolution equals direct verification", func(t *testing.T) {
		result := score(Set{6, 3}, Set{3, 6}, Set{6, 2})

		direct := newFixture(t)
		direct.seed(t, "A", "B", "C", "D")
		_, m := direct.acceptedMatch(t, "D", "A")
		_, err := direct.svc.SubmitScore(direct.ctx, m.ID, direct.id("D"), result)
		require.NoError(t, err)
		_, err = direct.svc.SubmitScore(direct.ctx, m.ID, direct.id("A"), result)
		require.NoError(t, err)

		disputed := newFixture(t)
		disputed.seed(t, "A", "B", "C", "D")
		_, m = disputed.acceptedMatch(t, "D", "A")
		_, err = disputed.svc.SubmitScore(disputed.ctx, m.ID, disputed.id("D"), result)
		require.NoError(t, err)
		m, err = disputed.svc.SubmitScore(disputed.ctx, m.ID, disputed.id("A"), score(Set{6, 3}, Set{3, 6}))
		require.NoError(t, err)
		assert.Equal(t, MatchDisputed, m.Status)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, disputed.ranks(t))
		assert.Equal(t, 1, disputed.metrics.MatchesDisputed())

		_, err = disputed.svc.SubmitScore(disputed.ctx, m.ID, disputed.id("D"), result)
		assert.ErrorIs(t, err, ErrInvalidState, "disputed matches wait for an admin")

		m, err = disputed.svc.AdminResolveDispute(disputed.ctx, m.ID, result)
		require.NoError(t, err)
		assert.Equal(t, MatchCompleted, m.Status)
		assert.Equal(t, direct.ranks(t), disputed.ranks(t))
		assert.Equal(t, map[string]int{"D": 1, "A": 2, "B": 3, "C": 4}, disputed.ranks(t))

		_, err = disputed.svc.AdminResolveDispute(disputed.ctx, m.ID, result)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("reject clears the opponent score and a second rejection disputes", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		_, m := f.acceptedMatch(t, "C", "B")

		_, err := f.svc.RejectScore(f.ctx, m.ID, f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState, "nothing to reject yet")

		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("C"), score(Set{6, 0}, Set{6, 0}))
		require.NoError(t, err)
		m, err = f.svc.RejectScore(f.ctx, m.ID, f.id("B"))
		require.NoError(t, err)
		assert.Equal(t, MatchPending, m.Status)
		assert.False(t, m.TeamASubmitted)
		assert.Nil(t, m.SubmissionA)
		assert.Equal(t, 1, m.RejectionCount)
		assert.Contains(t, f.notif.Subjects(), "Score rejected")

		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{0, 6}, Set{0, 6}))
		require.NoError(t, err)
		m, err = f.svc.RejectScore(f.ctx, m.ID, f.id("C"))
		require.NoError(t, err)
		assert.Equal(t, MatchDisputed, m.Status)
		assert.Equal(t, 2, m.RejectionCount)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, f.ranks(t))
	})

	t.Run("a team may reject only once", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		_, m := f.acceptedMatch(t, "B", "A")

		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{6, 0}, Set{6, 0}))
		require.NoError(t, err)
		_, err = f.svc.RejectScore(f.ctx, m.ID, f.id("A"))
		require.NoError(t, err)
		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{6, 1}, Set{6, 0}))
		require.NoError(t, err)
		_, err = f.svc.RejectScore(f.ctx, m.ID, f.id("A"))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("failed notifications do not roll back the result", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		f.notif.NotifyFunc = func(recipient, subject, body string) bool { return false }
		f.pubsub.SendMessageFunc = func(topic pubsub.EventType, data any) error { return fmt.Errorf("broker down") }

		_, m := f.acceptedMatch(t, "B", "A")
		result := score(Set{7, 5}, Set{6, 4})
		_, err := f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), result)
		require.NoError(t, err)
		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("A"), result)
		require.NoError(t, err)

		assert.Equal(t, map[string]int{"B": 1, "A": 2}, f.ranks(t))
		assert.NotEmpty(t, f.notif.Calls())
	})
}

func TestAdminCreateMatch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C", "D", "E")

	m, err := f.svc.AdminCreateMatch(f.ctx, f.id("E"), f.id("A"))
	require.NoError(t, err)
	assert.Empty(t, m.ChallengeID)
	assert.Equal(t, MatchPending, m.Status)

	_, err = f.svc.CreateChallenge(f.ctx, f.id("B"), f.id("A"))
	assert.ErrorIs(t, err, ErrInvalidState, "A is busy with the admin match")

	result := score(Set{6, 2}, Set{6, 2})
	_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("E"), result)
	require.NoError(t, err)
	_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("A"), result)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"E": 1, "A": 2, "B": 3, "C": 4, "D": 5}, f.ranks(t))

	t.Run("teams on holiday cannot be scheduled", func(t *testing.T) {
		_, err := f.svc.SetHolidayMode(f.ctx, f.id("C"), true)
		require.NoError(t, err)

		_, err = f.svc.AdminCreateMatch(f.ctx, f.id("D"), f.id("C"))
		assert.ErrorIs(t, err, ErrInvalidState)

		open, err := f.svc.ListOpenMatches(f.ctx)
		require.NoError(t, err)
		assert.Empty(t, open)
		_, err = f.svc.SetHolidayMode(f.ctx, f.id("C"), false)
		assert.NoError(t, err, "C can still leave holiday")
	})
}

func TestNoShow(t *testing.T) {
	t.Run("approved report awards the match and penalizes the absent team", func(t *testing.T) {
		// Setup
		f := newFixture(t)
		f.seed(t, "A", "B", "C", "D")
		c, m := f.acceptedMatch(t, "D", "B")

		_, err := f.svc.ReportNoShow(f.ctx, m.ID, f.id("D"), "did not turn up")
		assert.ErrorIs(t, err, ErrInvalidState, "too early")

		// Execute
		f.clock.Advance(7*24*time.Hour + time.Minute)
		m, err = f.svc.ReportNoShow(f.ctx, m.ID, f.id("D"), "did not turn up")
		require.NoError(t, err)
		assert.Equal(t, MatchNoShowReported, m.Status)
		assert.Equal(t, f.id("B"), m.ReportedNoShowTeamID)

		_, err = f.svc.SubmitScore(f.ctx, m.ID, f.id("B"), score(Set{6, 0}, Set{6, 0}))
		assert.ErrorIs(t, err, ErrInvalidState)

		m, err = f.svc.AdminApproveNoShow(f.ctx, m.ID)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, MatchCompletedNoShow, m.Status)
		assert.Equal(t, f.id("D"), m.WinnerID)
		assert.Equal(t, map[string]int{"A": 1, "D": 2, "C": 3, "B": 4}, f.ranks(t))
		assert.Equal(t, 1, f.metrics.RankPenalties(ReasonNoShowPenalty))

		c, err = f.svc.GetChallenge(f.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ChallengeCompleted, c.Status)

		_, err = f.svc.AdminApproveNoShow(f.ctx, m.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejected report reopens the match", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		_, m := f.acceptedMatch(t, "B", "A")
		f.clock.Advance(8 * 24 * time.Hour)

		_, err := f.svc.ReportNoShow(f.ctx, m.ID, f.id("A"), "")
		require.NoError(t, err)
		m, err = f.svc.AdminRejectNoShow(f.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, MatchPending, m.Status)
		assert.Empty(t, m.ReportedNoShowTeamID)
		assert.Equal(t, map[string]int{"A": 1, "B": 2}, f.ranks(t))
	})

	t.Run("only participants can report", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C")
		_, m := f.acceptedMatch(t, "C", "B")
		f.clock.Advance(8 * 24 * time.Hour)
		_, err := f.svc.ReportNoShow(f.ctx, m.ID, f.id("A"), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestHolidayMode(t *testing.T) {
	t.Run("accrued penalty is shown then applied when switching off", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B", "C", "D")

		team, err := f.svc.SetHolidayMode(f.ctx, f.id("B"), true)
		require.NoError(t, err)
		assert.True(t, team.HolidayActive)

		_, err = f.svc.CreateChallenge(f.ctx, f.id("C"), f.id("B"))
		assert.ErrorIs(t, err, ErrInvalidState, "teams on holiday cannot be challenged")

		f.clock.Advance(4*7*24*time.Hour + time.Hour)
		rows, err := f.svc.Rankings(f.ctx, DivisionMen, false)
		require.NoError(t, err)
		assert.Equal(t, 2, rows[1].PendingHolidayPenalty)
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}, f.ranks(t), "viewing never applies the penalty")

		team, err = f.svc.SetHolidayMode(f.ctx, f.id("B"), false)
		require.NoError(t, err)
		assert.False(t, team.HolidayActive)
		assert.Equal(t, 4, team.Rank)
		assert.Equal(t, map[string]int{"A": 1, "C": 2, "D": 3, "B": 4}, f.ranks(t))
		assert.Equal(t, 1, f.metrics.RankPenalties(ReasonHolidayPenalty))
	})

	t.Run("grace period is free", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		_, err := f.svc.SetHolidayMode(f.ctx, f.id("A"), true)
		require.NoError(t, err)
		f.clock.Advance(13 * 24 * time.Hour)
		_, err = f.svc.SetHolidayMode(f.ctx, f.id("A"), false)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"A": 1, "B": 2}, f.ranks(t))
	})

	t.Run("locked teams cannot toggle", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A", "B")
		_, err := f.svc.CreateChallenge(f.ctx, f.id("B"), f.id("A"))
		require.NoError(t, err)
		_, err = f.svc.SetHolidayMode(f.ctx, f.id("A"), true)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("toggling to the current state is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, "A")
		_, err := f.svc.SetHolidayMode(f.ctx, f.id("A"), false)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestAdminRankOperations(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C", "D", "E")

	t.Run("penalty", func(t *testing.T) {
		change, err := f.svc.AdminApplyPenalty(f.ctx, f.id("A"), 2)
		require.NoError(t, err)
		assert.Equal(t, 1, change.OldRank)
		assert.Equal(t, 3, change.NewRank)
		assert.Equal(t, map[string]int{"B": 1, "C": 2, "A": 3, "D": 4, "E": 5}, f.ranks(t))

		_, err = f.svc.AdminApplyPenalty(f.ctx, f.id("A"), 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("move", func(t *testing.T) {
		_, err := f.svc.AdminMoveTeam(f.ctx, f.id("E"), 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"E": 1, "B": 2, "C": 3, "A": 4, "D": 5}, f.ranks(t))

		_, err = f.svc.AdminMoveTeam(f.ctx, f.id("E"), 6)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("withdraw closes the gap", func(t *testing.T) {
		require.NoError(t, f.svc.WithdrawTeam(f.ctx, f.id("B")))
		assert.Equal(t, map[string]int{"E": 1, "C": 2, "A": 3, "D": 4}, f.ranks(t))
		assert.NoError(t, f.svc.VerifyDivision(f.ctx, DivisionMen))

		_, err := f.svc.TeamByToken(f.ctx, f.teams["B"].AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("public rankings hide unpaid teams", func(t *testing.T) {
		_, err := f.svc.SetPaymentReceived(f.ctx, f.id("C"), true)
		require.NoError(t, err)
		rows, err := f.svc.Rankings(f.ctx, DivisionMen, true)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "C", rows[0].Team.Name)
	})

	t.Run("invalid settings are refused", func(t *testing.T) {
		st := DefaultSettings()
		st.ChallengeAcceptanceHours = 0
		_, err := f.svc.UpdateSettings(f.ctx, st)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestStore_OptimisticLock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B")

	stale := f.team(t, "A")
	fresh := f.team(t, "A")
	require.NoError(t, f.store.UpdateTeamRank(f.ctx, fresh, 1))

	err := f.store.UpdateTeamRank(f.ctx, stale, 2)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestStore_MatchRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B")
	_, m := f.acceptedMatch(t, "B", "A")

	sub := score(Set{6, 4}, Set{4, 6}, Set{7, 6})
	m.SubmissionA = &sub
	m.TeamASubmitted = true
	m.Score = &sub
	m.Status = MatchPendingOpponentScore
	require.NoError(t, f.store.UpdateMatch(f.ctx, m))

	loaded, err := f.store.GetMatch(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Score)
	assert.Equal(t, sub, *loaded.Score)
	require.NotNil(t, loaded.SubmissionA)
	assert.Equal(t, sub, *loaded.SubmissionA)
	assert.Nil(t, loaded.SubmissionB)
	assert.Equal(t, m.Deadline.Unix(), loaded.Deadline.Unix())

	open, err := f.store.OpenMatchForTeam(f.ctx, f.id("A"))
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, m.ID, open.ID)
}
