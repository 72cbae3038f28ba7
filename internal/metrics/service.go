package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ChallengesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_ladder_challenges_created_total",
			Help: "The total number of ladder challenges created.",
		}),
		ChallengeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_ladder_challenge_transitions_total",
			Help: "Challenge state transitions by resulting status.",
		}, []string{"status"}),
		RankPenalties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padel_ladder_rank_penalties_total",
			Help: "Rank penalties applied by reason.",
		}, []string{"reason"}),
		MatchesVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_ladder_matches_verified_total",
			Help: "The total number of ladder matches completed with a verified score.",
		}),
		MatchesDisputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_ladder_matches_disputed_total",
			Help: "The total number of ladder matches that went to dispute.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_notifications_sent_total",
			Help: "The total number of notifications successfully delivered.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_notifications_failed_total",
			Help: "The total number of notifications that failed to deliver.",
		}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_deadline_sweep_runs_total",
			Help: "The total number of deadline sweeps run.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padel_deadline_sweep_duration_seconds",
			Help:    "The duration of deadline sweeps.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "padel_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ChallengesCreated,
		s.ChallengeTransitions,
		s.RankPenalties,
		s.MatchesVerified,
		s.MatchesDisputed,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.SweepRuns,
		s.SweepDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncChallengesCreated() {
	s.ChallengesCreated.Inc()
}

func (s *Service) IncChallengeTransition(status string) {
	s.ChallengeTransitions.WithLabelValues(status).Inc()
}

func (s *Service) IncRankPenalty(reason string) {
	s.RankPenalties.WithLabelValues(reason).Inc()
}

func (s *Service) IncMatchesVerified() {
	s.MatchesVerified.Inc()
}

func (s *Service) IncMatchesDisputed() {
	s.MatchesDisputed.Inc()
}

func (s *Service) IncNotificationsSent() {
	s.NotificationsSent.Inc()
}

func (s *Service) IncNotificationsFailed() {
	s.NotificationsFailed.Inc()
}

func (s *Service) IncSweepRuns() {
	s.SweepRuns.Inc()
}

func (s *Service) ObserveSweepDuration(duration float64) {
	s.SweepDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
