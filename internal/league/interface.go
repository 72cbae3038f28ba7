package league

import "context"

// Store defines the persistence operations of the season league.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	InsertTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]*Team, error)
	UpdateTeamStats(ctx context.Context, t *Team) error

	InsertMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	GetMatchByStage(ctx context.Context, stage Stage) (*Match, error)
	UpdateMatch(ctx context.Context, m *Match) error
	// ListRoundMatches returns the matches of a Swiss round, optionally filtered by status.
	ListRoundMatches(ctx context.Context, round int, statuses ...MatchStatus) ([]*Match, error)
	ListPlayoffMatches(ctx context.Context) ([]*Match, error)
	DeleteDrafts(ctx context.Context, round int) error
	// PlayedPairs returns every pairing of live matches in rounds before round.
	PlayedPairs(ctx context.Context, beforeRound int) (PlayedSet, error)
}
