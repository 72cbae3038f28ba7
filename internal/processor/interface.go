package processor

import (
	"context"
	"time"

	"github.com/mauv0809/padel-ladder/internal/ladder"
)

// Ladder defines the ladder operations the deadline sweep drives.
type Ladder interface {
	Now() time.Time
	GetTeam(ctx context.Context, id string) (*ladder.Team, error)
	OverdueChallenges(ctx context.Context, now time.Time) ([]*ladder.Challenge, error)
	ExpireChallenge(ctx context.Context, challengeID string) (bool, error)
	OverdueMatches(ctx context.Context, now time.Time) ([]*ladder.Match, error)
}
