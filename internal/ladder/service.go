package ladder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

const notifyTimeout = 10 * time.Second

// Service implements the ladder workflow on top of a Store. Every mutating
// operation holds the lock of the affected division and runs in a single
// transaction; notifications and events are dispatched after commit.
type Service struct {
	store    Store
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
	now      func() time.Time

	mu    sync.Mutex
	locks map[Division]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a ladder Service.
func NewService(store Store, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		pubsub:   pubsub,
		metrics:  metrics,
		now:      time.Now,
		locks:    make(map[Division]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) lockDivision(d Division) func() {
	s.mu.Lock()
	l, ok := s.locks[d]
	if !ok {
		l = &sync.Mutex{}
		s.locks[d] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type note struct {
	team    *Team
	subject string
	body    string
}

type event struct {
	topic pubsub.EventType
	data  any
}

// outbox collects side effects that must only happen once the transaction commits.
type outbox struct {
	notes  []note
	events []event
	hooks  []func()
	// err is returned to the caller after a successful commit.
	err error
}

func (o *outbox) notify(t *Team, subject, format string, args ...any) {
	o.notes = append(o.notes, note{team: t, subject: subject, body: fmt.Sprintf(format, args...)})
}

func (o *outbox) publish(topic pubsub.EventType, data any) {
	o.events = append(o.events, event{topic: topic, data: data})
}

func (o *outbox) after(fn func()) {
	o.hooks = append(o.hooks, fn)
}

// fail makes the operation return err while still committing its writes.
func (o *outbox) fail(err error) {
	o.err = err
}

type txFunc func(tx Store, st Settings, out *outbox) error

// mutate runs fn under the division lock inside one transaction with freshly loaded settings.
func (s *Service) mutate(ctx context.Context, division Division, fn txFunc) error {
	out := &outbox{}
	err := func() error {
		unlock := s.lockDivision(division)
		defer unlock()
		return s.store.WithTx(ctx, func(tx Store) error {
			st, err := tx.GetSettings(ctx)
			if err != nil {
				return err
			}
			return fn(tx, st, out)
		})
	}()
	if err != nil {
		return err
	}
	s.flush(ctx, out)
	return out.err
}

func (s *Service) flush(ctx context.Context, out *outbox) {
	for _, fn := range out.hooks {
		fn()
	}
	base := context.WithoutCancel(ctx)
	for _, n := range out.notes {
		for _, recipient := range n.team.Recipients() {
			nctx, cancel := context.WithTimeout(base, notifyTimeout)
			if !s.notifier.Notify(nctx, recipient, n.subject, n.body) {
				log.Error("Notification not delivered", "recipient", recipient, "subject", n.subject, "team", n.team.ID)
			}
			cancel()
		}
	}
	for _, e := range out.events {
		if err := s.pubsub.SendMessage(e.topic, e.data); err != nil {
			log.Error("Failed to publish ladder event", "topic", e.topic, "error", err)
		}
	}
}

// loadDivision returns the active teams of a division and their rank entries.
func loadDivision(ctx context.Context, tx Store, d Division) ([]*Team, []RankEntry, error) {
	teams, err := tx.ListTeams(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]RankEntry, len(teams))
	for i, t := range teams {
		entries[i] = RankEntry{TeamID: t.ID, Rank: t.Rank}
	}
	return teams, entries, nil
}

// applyRankChanges writes a computed rank permutation, records the audit trail
// and refuses to commit anything that breaks the dense 1..N ordering.
func (s *Service) applyRankChanges(ctx context.Context, tx Store, d Division, teams []*Team, entries []RankEntry, changes []RankChange, reason string, out *outbox) error {
	if len(changes) == 0 {
		return nil
	}
	if err := CheckPermutation(ApplyChanges(entries, changes)); err != nil {
		return fmt.Errorf("refusing rank update in %s: %w", d, err)
	}

	byID := make(map[string]*Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	now := s.Now()
	for _, c := range changes {
		t, ok := byID[c.TeamID]
		if !ok {
			return fmt.Errorf("team %s missing from division %s", c.TeamID, d)
		}
		if c.NewRank == 0 {
			if err := tx.DeactivateTeam(ctx, t); err != nil {
				return err
			}
		} else if err := tx.UpdateTeamRank(ctx, t, c.NewRank); err != nil {
			return err
		}
		if err := tx.InsertRankEvent(ctx, RankEvent{
			TeamID: t.ID, Division: d, OldRank: c.OldRank, NewRank: c.NewRank, Reason: reason, CreatedAt: now,
		}); err != nil {
			return err
		}
		out.publish(pubsub.EventRankChanged, RankChangedEvent{
			TeamID: t.ID, TeamName: t.Name, Division: string(d), OldRank: c.OldRank, NewRank: c.NewRank, Reason: reason, At: now.Unix(),
		})
		log.Info("Rank changed", "team", t.Name, "division", d, "old_rank", c.OldRank, "new_rank", c.NewRank, "reason", reason)
	}
	return nil
}

// penalize moves a team down without consulting the kill-switch.
func (s *Service) penalize(ctx context.Context, tx Store, teamID string, amount int, reason string, out *outbox) (RankChange, error) {
	team, err := tx.GetTeam(ctx, teamID)
	if err != nil {
		return RankChange{}, err
	}
	teams, entries, err := loadDivision(ctx, tx, team.Division)
	if err != nil {
		return RankChange{}, err
	}
	changes, err := Penalize(entries, teamID, amount)
	if err != nil {
		return RankChange{}, newError(ErrInvalidState, "%s", err.Error())
	}
	if err := s.applyRankChanges(ctx, tx, team.Division, teams, entries, changes, reason, out); err != nil {
		return RankChange{}, err
	}
	change, moved := changeFor(changes, teamID)
	if !moved {
		change = RankChange{TeamID: teamID, OldRank: team.Rank, NewRank: team.Rank}
	}
	return change, nil
}

// applyPenalty is the generic rank penalty primitive: a no-op when amount <= 0
// or penalties are switched off.
func (s *Service) applyPenalty(ctx context.Context, tx Store, st Settings, teamID string, amount int, reason string, out *outbox) (RankChange, error) {
	if amount <= 0 {
		return RankChange{}, nil
	}
	if !st.PenaltiesActive {
		log.Info("Penalties disabled, skipping rank penalty", "team", teamID, "amount", amount, "reason", reason)
		return RankChange{}, nil
	}
	change, err := s.penalize(ctx, tx, teamID, amount, reason, out)
	if err != nil {
		return RankChange{}, err
	}
	out.after(func() { s.metrics.IncRankPenalty(reason) })
	if change.NewRank != change.OldRank {
		team, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return RankChange{}, err
		}
		out.notify(team, "Rank penalty applied",
			"%s dropped from rank %d to rank %d (%s).", team.Name, change.OldRank, change.NewRank, reason)
	}
	return change, nil
}

// lockedBy returns a reason when the team is tied up in an active challenge or open match.
func lockedBy(ctx context.Context, tx Store, t *Team) (string, error) {
	c, err := tx.ActiveChallengeForTeam(ctx, t.ID)
	if err != nil {
		return "", err
	}
	if c != nil {
		return fmt.Sprintf("%s already has an active challenge", t.Name), nil
	}
	m, err := tx.OpenMatchForTeam(ctx, t.ID)
	if err != nil {
		return "", err
	}
	if m != nil {
		return fmt.Sprintf("%s has an unresolved match", t.Name), nil
	}
	return "", nil
}

func newID() string {
	return uuid.NewString()
}

func ptr[T any](v T) *T {
	return &v
}
