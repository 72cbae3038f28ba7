package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/padel-ladder/internal/config"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/league"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/processor"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

// Announcer posts public ladder news. The Slack notifier implements it.
type Announcer interface {
	AnnounceRankChange(ctx context.Context, event ladder.RankChangedEvent) error
}

type Server struct {
	Ladder         *ladder.Service
	League         *league.Service
	Processor      *processor.Processor
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Announcer      Announcer
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type challengeRequest struct {
	ChallengedID string `json:"challenged_id"`
}

// scoreRequest accepts either a score string like "6-4 3-6 7-5" or explicit sets.
type scoreRequest struct {
	Score string       `json:"score"`
	Sets  []ladder.Set `json:"sets"`
}

func (r scoreRequest) parse() (ladder.SetScores, error) {
	if len(r.Sets) > 0 {
		scores := ladder.SetScores{Sets: r.Sets}
		return scores, scores.Validate()
	}
	return ladder.ParseSetScores(r.Score)
}

type noShowRequest struct {
	Notes string `json:"notes"`
}

type holidayRequest struct {
	Active bool `json:"active"`
}

type paymentRequest struct {
	Paid bool `json:"paid"`
}

type penaltyRequest struct {
	Amount int `json:"amount"`
}

type moveRequest struct {
	Rank int `json:"rank"`
}

type adminMatchRequest struct {
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id"`
}

type playoffRequest struct {
	Stage   league.Stage `json:"stage"`
	TeamAID string       `json:"team_a_id"`
	TeamBID string       `json:"team_b_id"`
}

type teamView struct {
	Team            *ladder.Team      `json:"team"`
	ActiveChallenge *ladder.Challenge `json:"active_challenge,omitempty"`
}

type registeredTeam struct {
	*ladder.Team
	AccessToken string `json:"access_token"`
}
