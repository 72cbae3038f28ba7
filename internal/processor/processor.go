package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
)

const (
	counterSweepRuns         = "sweep_runs"
	counterExpiredChallenges = "sweep_challenges_expired"
	counterMatchReminders    = "sweep_match_reminders"
)

// New creates a new Processor. counters may be nil.
func New(ladder Ladder, notifier notifier.Notifier, metrics metrics.Metrics, counters metrics.MetricsStore) *Processor {
	return &Processor{
		ladder:   ladder,
		notifier: notifier,
		metrics:  metrics,
		counters: counters,
	}
}

// ProcessDeadlines expires every pending challenge whose acceptance window has
// closed and reminds both teams of every open match past its completion
// deadline. A dry run only reports what would happen.
func (p *Processor) ProcessDeadlines(ctx context.Context, dryRun bool) (Result, error) {
	log.Info("Starting deadline processing...", "dryRun", dryRun)
	start := time.Now()
	defer func() {
		p.metrics.ObserveSweepDuration(float64(time.Since(start).Milliseconds()))
	}()

	result := Result{DryRun: dryRun, ExpiredChallenges: []string{}, OverdueMatches: []string{}}
	now := p.ladder.Now()

	challenges, err := p.ladder.OverdueChallenges(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to list overdue challenges: %w", err)
	}
	for _, c := range challenges {
		if dryRun {
			log.Info("Dry run: would expire challenge", "challengeID", c.ID, "challenged", c.ChallengedID)
			result.ExpiredChallenges = append(result.ExpiredChallenges, c.ID)
			continue
		}
		expired, err := p.ladder.ExpireChallenge(ctx, c.ID)
		if err != nil {
			log.Error("Failed to expire challenge", "error", err, "challengeID", c.ID)
			continue
		}
		if expired {
			result.ExpiredChallenges = append(result.ExpiredChallenges, c.ID)
		}
	}

	matches, err := p.ladder.OverdueMatches(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to list overdue matches: %w", err)
	}
	for _, m := range matches {
		result.OverdueMatches = append(result.OverdueMatches, m.ID)
		if dryRun {
			log.Info("Dry run: would remind teams of overdue match", "matchID", m.ID)
			continue
		}
		p.remind(ctx, m)
	}

	if !dryRun {
		p.metrics.IncSweepRuns()
		if p.counters != nil {
			p.counters.Increment(counterSweepRuns)
			p.counters.Add(counterExpiredChallenges, len(result.ExpiredChallenges))
			p.counters.Add(counterMatchReminders, len(result.OverdueMatches))
		}
	}
	log.Info("Deadline processing finished.", "expired", len(result.ExpiredChallenges), "overdue", len(result.OverdueMatches))
	return result, nil
}

func (p *Processor) remind(ctx context.Context, m *ladder.Match) {
	for _, teamID := range []string{m.TeamAID, m.TeamBID} {
		team, err := p.ladder.GetTeam(ctx, teamID)
		if err != nil {
			log.Error("Failed to load team for reminder", "error", err, "teamID", teamID, "matchID", m.ID)
			continue
		}
		opponent, err := p.ladder.GetTeam(ctx, m.Opponent(teamID))
		if err != nil {
			log.Error("Failed to load opponent for reminder", "error", err, "matchID", m.ID)
			continue
		}
		body := fmt.Sprintf("Your match against %s was due by %s and has no confirmed result. "+
			"Submit the score, or report a no-show if %s did not play.",
			opponent.Name, m.Deadline.Format("Mon 2 Jan 15:04 MST"), opponent.Name)
		for _, r := range team.Recipients() {
			if !p.notifier.Notify(ctx, r, "Match deadline passed", body) {
				log.Warn("Failed to deliver match reminder", "recipient", r, "matchID", m.ID)
			}
		}
	}
}
