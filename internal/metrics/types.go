package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	ChallengesCreated    prometheus.Counter
	ChallengeTransitions *prometheus.CounterVec
	RankPenalties        *prometheus.CounterVec
	MatchesVerified      prometheus.Counter
	MatchesDisputed      prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	SweepRuns            prometheus.Counter
	SweepDuration        prometheus.Histogram
	StartupTimeSeconds   prometheus.Gauge
}
