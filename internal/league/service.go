package league

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/notifier"
)

const (
	pointsWin  = 3
	pointsDraw = 1

	walkoverNote = "Walkover: round deadline missed"
	byeNote      = "Bye round - automatic win"
)

func fail(kind error, format string, args ...any) error {
	return &ladder.Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Service runs the season league: Swiss rounds, results and the playoff bracket.
type Service struct {
	store       Store
	notifier    notifier.Notifier
	seasonStart time.Time
	now         func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a league Service. seasonStart is the Monday of round 1 and
// may be zero when round deadlines are not enforced.
func NewService(store Store, notifier notifier.Notifier, seasonStart time.Time, opts ...Option) *Service {
	s := &Service{
		store:       store,
		notifier:    notifier,
		seasonStart: seasonStart,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type message struct {
	team    *Team
	subject string
	body    string
}

// update runs fn in one transaction under the league lock and sends the
// collected messages once it committed.
func (s *Service) update(ctx context.Context, fn func(tx Store, msgs *[]message) error) error {
	var msgs []message
	err := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.store.WithTx(ctx, func(tx Store) error {
			return fn(tx, &msgs)
		})
	}()
	if err != nil {
		return err
	}

	base := context.WithoutCancel(ctx)
	for _, m := range msgs {
		for _, recipient := range m.team.Recipients() {
			nctx, cancel := context.WithTimeout(base, 10*time.Second)
			if !s.notifier.Notify(nctx, recipient, m.subject, m.body) {
				log.Error("League notification not delivered", "recipient", recipient, "subject", m.subject)
			}
			cancel()
		}
	}
	return nil
}

func (s *Service) RegisterTeam(ctx context.Context, in TeamInput) (*Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fail(ladder.ErrValidation, "team name is required")
	}
	t := &Team{
		ID:           uuid.NewString(),
		Name:         name,
		Player1Name:  strings.TrimSpace(in.Player1Name),
		Player1Email: strings.TrimSpace(in.Player1Email),
		Player2Name:  strings.TrimSpace(in.Player2Name),
		Player2Email: strings.TrimSpace(in.Player2Email),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertTeam(ctx, t); err != nil {
		return nil, err
	}
	log.Info("League team registered", "team", t.Name)
	return t, nil
}

// Standings returns all teams ordered by wins, set differential and id.
func (s *Service) Standings(ctx context.Context) ([]*Team, error) {
	return s.store.ListTeams(ctx)
}

// GenerateDraft pairs the next round and stores it as a draft, replacing any
// earlier draft of the same round.
func (s *Service) GenerateDraft(ctx context.Context, round int) ([]*Match, error) {
	if round < 1 {
		return nil, fail(ladder.ErrValidation, "round must be at least 1")
	}
	var drafts []*Match
	err := s.update(ctx, func(tx Store, msgs *[]message) error {
		live, err := tx.ListRoundMatches(ctx, round, StatusScheduled, StatusCompleted, StatusBye)
		if err != nil {
			return err
		}
		if len(live) > 0 {
			return fail(ladder.ErrInvalidState, "round %d is already confirmed", round)
		}
		if err := tx.DeleteDrafts(ctx, round); err != nil {
			return err
		}
		teams, err := tx.ListTeams(ctx)
		if err != nil {
			return err
		}
		if len(teams) < 2 {
			return fail(ladder.ErrValidation, "at least two teams are needed to pair a round")
		}
		played, err := tx.PlayedPairs(ctx, round)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		for _, p := range PairRound(teams, played) {
			m := &Match{
				ID:        uuid.NewString(),
				Round:     round,
				TeamAID:   p.TeamAID,
				TeamBID:   p.TeamBID,
				Status:    StatusDraft,
				CreatedAt: now,
			}
			if m.IsBye() {
				m.Notes = byeNote
			}
			if err := tx.InsertMatch(ctx, m); err != nil {
				return err
			}
			drafts = append(drafts, m)
		}
		log.Info("Round draft generated", "round", round, "matches", len(drafts))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// Draft returns the pending draft of a round.
func (s *Service) Draft(ctx context.Context, round int) ([]*Match, error) {
	return s.store.ListRoundMatches(ctx, round, StatusDraft)
}

// DiscardDraft removes the draft of a round.
func (s *Service) DiscardDraft(ctx context.Context, round int) error {
	return s.update(ctx, func(tx Store, msgs *[]message) error {
		return tx.DeleteDrafts(ctx, round)
	})
}

// RoundMatches returns the live matches of a round. Drafts are never included.
func (s *Service) RoundMatches(ctx context.Context, round int) ([]*Match, error) {
	return s.store.ListRoundMatches(ctx, round, StatusScheduled, StatusCompleted, StatusBye)
}

// ConfirmRound turns the draft of a round into scheduled matches. The bye is
// recorded as a win straight away.
func (s *Service) ConfirmRound(ctx context.Context, round int) ([]*Match, error) {
	var confirmed []*Match
	err := s.update(ctx, func(tx Store, msgs *[]message) error {
		drafts, err := tx.ListRoundMatches(ctx, round, StatusDraft)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return fail(ladder.ErrInvalidState, "round %d has no draft to confirm", round)
		}

		deadline := s.roundDeadline(round)
		for _, m := range drafts {
			teamA, err := tx.GetTeam(ctx, m.TeamAID)
			if err != nil {
				return err
			}
			if m.IsBye() {
				m.Status = StatusBye
				m.WinnerID = m.TeamAID
				m.Verified = true
				m.StatsCalculated = true
				teamA.Wins++
				teamA.Points += pointsWin
				if err := tx.UpdateTeamStats(ctx, teamA); err != nil {
					return err
				}
				if err := tx.UpdateMatch(ctx, m); err != nil {
					return err
				}
				*msgs = append(*msgs, message{teamA, fmt.Sprintf("Round %d: bye", round),
					fmt.Sprintf("%s has a bye in round %d and is awarded the win.", teamA.Name, round)})
				confirmed = append(confirmed, m)
				continue
			}

			teamB, err := tx.GetTeam(ctx, m.TeamBID)
			if err != nil {
				return err
			}
			m.Status = StatusScheduled
			if err := tx.UpdateMatch(ctx, m); err != nil {
				return err
			}
			body := fmt.Sprintf("Round %d: %s vs %s.", round, teamA.Name, teamB.Name)
			if !deadline.IsZero() {
				body += fmt.Sprintf(" Play before %s.", deadline.Format("Mon 2 Jan 15:04"))
			}
			for _, t := range []*Team{teamA, teamB} {
				*msgs = append(*msgs, message{t, fmt.Sprintf("Round %d pairing", round), body})
			}
			confirmed = append(confirmed, m)
		}
		log.Info("Round confirmed", "round", round, "matches", len(confirmed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// RecordResult enters the final score of a scheduled match in team A's
// perspective. Playoff winners advance into their next bracket slot.
func (s *Service) RecordResult(ctx context.Context, matchID string, scores ladder.SetScores) (*Match, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	var m *Match
	err := s.update(ctx, func(tx Store, msgs *[]message) error {
		var err error
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != StatusScheduled {
			return fail(ladder.ErrInvalidState, "match is %s", m.Status)
		}
		if m.TeamAID == "" || m.TeamBID == "" {
			return fail(ladder.ErrInvalidState, "match is still waiting for both teams")
		}
		if m.Stage != StageNone {
			if _, decisive := scores.Winner(); !decisive {
				return fail(ladder.ErrValidation, "playoff matches need a winner")
			}
		}
		return s.complete(ctx, tx, m, scores, "", msgs)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// complete stores the result, updates Swiss standings once and advances playoff winners.
func (s *Service) complete(ctx context.Context, tx Store, m *Match, scores ladder.SetScores, notes string, msgs *[]message) error {
	tally := scores.Tally()
	m.Score = scores.String()
	m.SetsA, m.SetsB = tally.SetsA, tally.SetsB
	m.GamesA, m.GamesB = tally.GamesA, tally.GamesB
	m.Status = StatusCompleted
	m.Verified = true
	m.Notes = notes
	m.WinnerID = ""
	if side, ok := scores.Winner(); ok {
		m.WinnerID = m.TeamAID
		if side == ladder.SideB {
			m.WinnerID = m.TeamBID
		}
	}

	teamA, err := tx.GetTeam(ctx, m.TeamAID)
	if err != nil {
		return err
	}
	teamB, err := tx.GetTeam(ctx, m.TeamBID)
	if err != nil {
		return err
	}

	// Playoff results never change the Swiss standings.
	if m.Stage == StageNone && !m.StatsCalculated {
		applyStats(teamA, teamB, m)
		if err := tx.UpdateTeamStats(ctx, teamA); err != nil {
			return err
		}
		if err := tx.UpdateTeamStats(ctx, teamB); err != nil {
			return err
		}
		m.StatsCalculated = true
	}
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return err
	}

	for _, t := range []*Team{teamA, teamB} {
		*msgs = append(*msgs, message{t, "League result recorded",
			fmt.Sprintf("%s vs %s: %s.", teamA.Name, teamB.Name, m.Score)})
	}
	log.Info("League result recorded", "match", m.ID, "round", m.Round, "stage", m.Stage, "score", m.Score, "winner", m.WinnerID)

	if m.Stage != StageNone && m.WinnerID != "" {
		return advance(ctx, tx, m)
	}
	return nil
}

func applyStats(a, b *Team, m *Match) {
	a.SetsFor += m.SetsA
	a.SetsAgainst += m.SetsB
	a.GamesFor += m.GamesA
	a.GamesAgainst += m.GamesB
	b.SetsFor += m.SetsB
	b.SetsAgainst += m.SetsA
	b.GamesFor += m.GamesB
	b.GamesAgainst += m.GamesA
	switch m.WinnerID {
	case a.ID:
		a.Wins++
		a.Points += pointsWin
		b.Losses++
	case b.ID:
		b.Wins++
		b.Points += pointsWin
		a.Losses++
	default:
		a.Draws++
		a.Points += pointsDraw
		b.Draws++
		b.Points += pointsDraw
	}
}

// advance writes the winner of a playoff match into its next slot.
func advance(ctx context.Context, tx Store, m *Match) error {
	nextStage, slot, ok := NextSlot(m.Stage)
	if !ok {
		log.Info("Final decided", "match", m.ID, "winner", m.WinnerID)
		return nil
	}
	next, err := tx.GetMatchByStage(ctx, nextStage)
	if errors.Is(err, ladder.ErrNotFound) {
		log.Warn("Next bracket match does not exist yet, winner not advanced", "stage", m.Stage, "next", nextStage)
		return nil
	}
	if err != nil {
		return err
	}
	if slot == SlotA {
		next.TeamAID = m.WinnerID
	} else {
		next.TeamBID = m.WinnerID
	}
	log.Info("Bracket winner advanced", "from", m.Stage, "to", nextStage, "slot", slot, "team", m.WinnerID)
	return tx.UpdateMatch(ctx, next)
}

// CreatePlayoffMatch creates a knockout match. Either team may be empty when
// it is filled by an earlier round's winner.
func (s *Service) CreatePlayoffMatch(ctx context.Context, stage Stage, teamAID, teamBID string) (*Match, error) {
	if !ValidStage(stage) {
		return nil, fail(ladder.ErrValidation, "unknown playoff stage %q", stage)
	}
	if teamAID != "" && teamAID == teamBID {
		return nil, fail(ladder.ErrValidation, "a team cannot play itself")
	}
	var m *Match
	err := s.update(ctx, func(tx Store, msgs *[]message) error {
		if _, err := tx.GetMatchByStage(ctx, stage); err == nil {
			return fail(ladder.ErrInvalidState, "playoff match %s already exists", stage)
		} else if !errors.Is(err, ladder.ErrNotFound) {
			return err
		}
		for _, id := range []string{teamAID, teamBID} {
			if id == "" {
				continue
			}
			if _, err := tx.GetTeam(ctx, id); err != nil {
				return err
			}
		}
		m = &Match{
			ID:        uuid.NewString(),
			Stage:     stage,
			TeamAID:   teamAID,
			TeamBID:   teamBID,
			Status:    StatusScheduled,
			CreatedAt: s.now().UTC(),
		}
		log.Info("Playoff match created", "stage", stage)
		return tx.InsertMatch(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) PlayoffMatches(ctx context.Context) ([]*Match, error) {
	return s.store.ListPlayoffMatches(ctx)
}

// roundDeadline is Sunday 23:59:59 of the round's week, or zero without a season start.
func (s *Service) roundDeadline(round int) time.Time {
	if s.seasonStart.IsZero() || round < 1 {
		return time.Time{}
	}
	monday := s.seasonStart.AddDate(0, 0, 7*(round-1))
	return monday.AddDate(0, 0, 7).Add(-time.Second)
}

// CheckDeadlines awards a 6-0 6-0 walkover to team A of every scheduled round
// match whose week is over. It returns the matches it completed.
func (s *Service) CheckDeadlines(ctx context.Context, dryRun bool) ([]*Match, error) {
	if s.seasonStart.IsZero() {
		return nil, fail(ladder.ErrInvalidState, "season start is not configured")
	}
	now := s.now()
	var applied []*Match
	err := s.update(ctx, func(tx Store, msgs *[]message) error {
		for round := 1; ; round++ {
			deadline := s.roundDeadline(round)
			if !now.After(deadline) {
				return nil
			}
			matches, err := tx.ListRoundMatches(ctx, round, StatusScheduled)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.IsBye() {
					continue
				}
				if dryRun {
					log.Info("Dry run: would award walkover", "match", m.ID, "round", round)
					applied = append(applied, m)
					continue
				}
				walkover := ladder.SetScores{Sets: []ladder.Set{{A: 6, B: 0}, {A: 6, B: 0}}}
				if err := s.complete(ctx, tx, m, walkover, walkoverNote, msgs); err != nil {
					return err
				}
				applied = append(applied, m)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}
