package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncChallengesCreated()
	IncChallengeTransition(status string)
	IncRankPenalty(reason string)
	IncMatchesVerified()
	IncMatchesDisputed()
	IncNotificationsSent()
	IncNotificationsFailed()
	IncSweepRuns()
	ObserveSweepDuration(duration float64)
	SetStartupTime(duration float64)
}

// MetricsStore persists simple named counters across restarts.
type MetricsStore interface {
	Increment(key string)
	Add(key string, delta int)
	GetAll() (map[string]int, error)
}
