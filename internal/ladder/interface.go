package ladder

import (
	"context"
	"time"
)

// Store defines the persistence operations of the ladder.
// Methods called on the Store handed to WithTx run inside that transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, s Settings) error

	InsertTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	GetTeamByToken(ctx context.Context, token string) (*Team, error)
	ListTeams(ctx context.Context, division Division) ([]*Team, error)
	UpdateTeamRank(ctx context.Context, t *Team, newRank int) error
	UpdateTeamStats(ctx context.Context, teamID string, stats TeamStats) error
	UpdateTeamHoliday(ctx context.Context, teamID string, active bool, start *time.Time) error
	UpdateTeamPayment(ctx context.Context, teamID string, paid bool) error
	DeactivateTeam(ctx context.Context, t *Team) error
	InsertRankEvent(ctx context.Context, e RankEvent) error
	ListRankEvents(ctx context.Context, teamID string) ([]RankEvent, error)

	InsertChallenge(ctx context.Context, c *Challenge) error
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	UpdateChallenge(ctx context.Context, c *Challenge) error
	ActiveChallengeForTeam(ctx context.Context, teamID string) (*Challenge, error)
	ListChallenges(ctx context.Context, statuses ...ChallengeStatus) ([]*Challenge, error)

	InsertMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	GetMatchByChallenge(ctx context.Context, challengeID string) (*Match, error)
	UpdateMatch(ctx context.Context, m *Match) error
	DeleteMatch(ctx context.Context, id string) error
	OpenMatchForTeam(ctx context.Context, teamID string) (*Match, error)
	ListOpenMatches(ctx context.Context) ([]*Match, error)
}
