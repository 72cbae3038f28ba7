package processor

import (
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
)

// Processor runs the deadline sweep over the ladder.
type Processor struct {
	ladder   Ladder
	notifier notifier.Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
}

// Result summarises one sweep.
type Result struct {
	DryRun            bool     `json:"dry_run"`
	ExpiredChallenges []string `json:"expired_challenges"`
	OverdueMatches    []string `json:"overdue_matches"`
}
