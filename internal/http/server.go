package http

import (
	"net/http"

	"github.com/mauv0809/padel-ladder/internal/config"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/league"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/processor"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

// NewServer wires the HTTP API. announcer may be nil when Slack is not configured.
func NewServer(ladderSvc *ladder.Service, leagueSvc *league.Service, proc *processor.Processor, metricsSvc metrics.Metrics, metricsHandler http.Handler, announcer Announcer, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Ladder:         ladderSvc,
		League:         leagueSvc,
		Processor:      proc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Announcer:      announcer,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	public := func(h http.Handler) http.Handler { return Chain(h, paramsMiddleware) }
	team := func(h http.Handler) http.Handler { return Chain(h, paramsMiddleware, s.teamMiddleware) }
	admin := func(h http.Handler) http.Handler { return Chain(h, paramsMiddleware, s.adminMiddleware) }

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", public(s.HealthCheckHandler()))

	// Ladder, public and team scoped.
	s.Router.Handle("GET /ladder/{division}/rankings", public(s.RankingsHandler(true)))
	s.Router.Handle("GET /ladder/teams/{id}/history", public(s.RankHistoryHandler()))
	s.Router.Handle("GET /ladder/me", team(s.MeHandler()))
	s.Router.Handle("POST /ladder/challenges", team(s.CreateChallengeHandler()))
	s.Router.Handle("POST /ladder/challenges/{id}/{action}", team(s.ChallengeActionHandler()))
	s.Router.Handle("POST /ladder/matches/{id}/score", team(s.SubmitScoreHandler()))
	s.Router.Handle("POST /ladder/matches/{id}/reject-score", team(s.RejectScoreHandler()))
	s.Router.Handle("POST /ladder/matches/{id}/no-show", team(s.ReportNoShowHandler()))
	s.Router.Handle("POST /ladder/holiday", team(s.HolidayHandler()))

	// Ladder administration.
	s.Router.Handle("GET /admin/ladder/{division}/rankings", admin(s.RankingsHandler(false)))
	s.Router.Handle("GET /admin/ladder/{division}/verify", admin(s.VerifyDivisionHandler()))
	s.Router.Handle("POST /admin/ladder/teams", admin(s.RegisterTeamHandler()))
	s.Router.Handle("POST /admin/ladder/teams/{id}/payment", admin(s.PaymentHandler()))
	s.Router.Handle("POST /admin/ladder/teams/{id}/withdraw", admin(s.WithdrawHandler()))
	s.Router.Handle("POST /admin/ladder/teams/{id}/penalty", admin(s.PenaltyHandler()))
	s.Router.Handle("POST /admin/ladder/teams/{id}/move", admin(s.MoveHandler()))
	s.Router.Handle("POST /admin/ladder/challenges/{id}/{action}", admin(s.AdminChallengeActionHandler()))
	s.Router.Handle("POST /admin/ladder/matches", admin(s.AdminCreateMatchHandler()))
	s.Router.Handle("POST /admin/ladder/matches/{id}/resolve", admin(s.ResolveDisputeHandler()))
	s.Router.Handle("POST /admin/ladder/matches/{id}/no-show/{action}", admin(s.NoShowDecisionHandler()))
	s.Router.Handle("GET /admin/ladder/settings", admin(s.GetSettingsHandler()))
	s.Router.Handle("PUT /admin/ladder/settings", admin(s.UpdateSettingsHandler()))
	s.Router.Handle("POST /admin/ladder/sweep", admin(s.SweepHandler()))

	// Season league.
	s.Router.Handle("GET /league/standings", public(s.StandingsHandler()))
	s.Router.Handle("GET /league/rounds/{round}", public(s.RoundMatchesHandler()))
	s.Router.Handle("GET /league/playoffs", public(s.PlayoffsHandler()))
	s.Router.Handle("POST /admin/league/teams", admin(s.RegisterLeagueTeamHandler()))
	s.Router.Handle("POST /admin/league/rounds/{round}/draft", admin(s.GenerateDraftHandler()))
	s.Router.Handle("GET /admin/league/rounds/{round}/draft", admin(s.DraftHandler()))
	s.Router.Handle("DELETE /admin/league/rounds/{round}/draft", admin(s.DiscardDraftHandler()))
	s.Router.Handle("POST /admin/league/rounds/{round}/confirm", admin(s.ConfirmRoundHandler()))
	s.Router.Handle("POST /admin/league/matches/{id}/result", admin(s.RecordResultHandler()))
	s.Router.Handle("POST /admin/league/playoffs", admin(s.CreatePlayoffHandler()))
	s.Router.Handle("POST /admin/league/check-deadlines", admin(s.CheckDeadlinesHandler()))

	// Integrations.
	s.Router.Handle("POST /slack/command/ladder", Chain(s.LadderCommandHandler(), paramsMiddleware, s.slackVerifyMiddleware))
	s.Router.Handle("POST /pubsub/rank-changed", Chain(s.RankChangedPushHandler(), paramsMiddleware, s.pushAuthMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
