package ladder

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

// CreateChallenge lets challengerID challenge a team ranked above it.
func (s *Service) CreateChallenge(ctx context.Context, challengerID, challengedID string) (*Challenge, error) {
	if challengerID == challengedID {
		return nil, newError(ErrValidation, "a team cannot challenge itself")
	}
	challenger, err := s.store.GetTeam(ctx, challengerID)
	if err != nil {
		return nil, err
	}

	var created *Challenge
	err = s.mutate(ctx, challenger.Division, func(tx Store, st Settings, out *outbox) error {
		challenger, err := tx.GetTeam(ctx, challengerID)
		if err != nil {
			return err
		}
		challenged, err := tx.GetTeam(ctx, challengedID)
		if err != nil {
			return err
		}
		if !challenger.Active || !challenged.Active {
			return newError(ErrInvalidState, "both teams must be on the ladder")
		}
		if challenger.Division != challenged.Division {
			return newError(ErrValidation, "%s and %s play in different divisions", challenger.Name, challenged.Name)
		}
		for _, t := range []*Team{challenger, challenged} {
			if t.HolidayActive {
				return newError(ErrInvalidState, "%s is on holiday", t.Name)
			}
			reason, err := lockedBy(ctx, tx, t)
			if err != nil {
				return err
			}
			if reason != "" {
				return newError(ErrInvalidState, "%s", reason)
			}
		}
		diff := challenger.Rank - challenged.Rank
		if diff <= 0 {
			return newError(ErrValidation, "you can only challenge teams ranked above you (you are %d, %s is %d)",
				challenger.Rank, challenged.Name, challenged.Rank)
		}
		if diff > st.MaxChallengeRankDifference {
			return newError(ErrValidation, "you can only challenge teams up to %d ranks above you", st.MaxChallengeRankDifference)
		}

		now := s.Now()
		created = &Challenge{
			ID:                 newID(),
			Division:           challenger.Division,
			ChallengerID:       challenger.ID,
			ChallengedID:       challenged.ID,
			Status:             ChallengePendingAcceptance,
			CreatedAt:          now,
			AcceptanceDeadline: now.Add(st.acceptanceWindow()),
		}
		if err := tx.InsertChallenge(ctx, created); err != nil {
			return err
		}

		out.notify(challenged, "New ladder challenge",
			"%s (rank %d) challenged %s (rank %d). Accept or reject before %s.",
			challenger.Name, challenger.Rank, challenged.Name, challenged.Rank, formatTime(created.AcceptanceDeadline))
		out.notify(challenger, "Challenge sent",
			"Your challenge to %s was sent. They have until %s to respond.", challenged.Name, formatTime(created.AcceptanceDeadline))
		out.publish(pubsub.EventChallengeUpdated, challengeEvent(created, now.Unix()))
		out.after(s.metrics.IncChallengesCreated)
		log.Info("Challenge created", "challenge", created.ID, "challenger", challenger.Name, "challenged", challenged.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AcceptChallenge is called by the challenged team.
func (s *Service) AcceptChallenge(ctx context.Context, challengeID, teamID string) (*Challenge, error) {
	return s.respond(ctx, challengeID, teamID, true)
}

// RejectChallenge is called by the challenged team.
func (s *Service) RejectChallenge(ctx context.Context, challengeID, teamID string) (*Challenge, error) {
	return s.respond(ctx, challengeID, teamID, false)
}

// AdminAcceptChallenge accepts on behalf of the challenged team, ignoring the deadline.
func (s *Service) AdminAcceptChallenge(ctx context.Context, challengeID string) (*Challenge, error) {
	return s.respond(ctx, challengeID, "", true)
}

// AdminRejectChallenge rejects on behalf of the challenged team, ignoring the deadline.
func (s *Service) AdminRejectChallenge(ctx context.Context, challengeID string) (*Challenge, error) {
	return s.respond(ctx, challengeID, "", false)
}

// respond handles accept and reject. An empty teamID means an admin is acting.
func (s *Service) respond(ctx context.Context, challengeID, teamID string, accept bool) (*Challenge, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	admin := teamID == ""

	err = s.mutate(ctx, c.Division, func(tx Store, st Settings, out *outbox) error {
		c, err = tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if !admin && c.ChallengedID != teamID {
			return newError(ErrUnauthorized, "only the challenged team can respond to this challenge")
		}
		if c.Status != ChallengePendingAcceptance {
			return newError(ErrInvalidState, "challenge is already %s", c.Status)
		}

		now := s.Now()
		if !admin && EvaluateChallengeDeadline(c, now) == AcceptanceMissed {
			if err := s.expire(ctx, tx, st, c, now, out); err != nil {
				return err
			}
			out.fail(newError(ErrDeadlinePassed, "the acceptance deadline passed at %s, the challenge has expired", formatTime(c.AcceptanceDeadline)))
			return nil
		}

		challenger, err := tx.GetTeam(ctx, c.ChallengerID)
		if err != nil {
			return err
		}
		challenged, err := tx.GetTeam(ctx, c.ChallengedID)
		if err != nil {
			return err
		}

		if accept {
			deadline := now.Add(st.completionWindow())
			c.Status = ChallengeAccepted
			c.AcceptedAt = ptr(now)
			c.CompletionDeadline = ptr(deadline)
			m := &Match{
				ID:          newID(),
				ChallengeID: c.ID,
				Division:    c.Division,
				TeamAID:     c.ChallengerID,
				TeamBID:     c.ChallengedID,
				Status:      MatchPending,
				Deadline:    ptr(deadline),
				CreatedAt:   now,
			}
			if err := tx.InsertMatch(ctx, m); err != nil {
				return err
			}
			for _, t := range []*Team{challenger, challenged} {
				out.notify(t, "Challenge accepted",
					"%s vs %s is on. Play the match and submit the score before %s. Match id: %s",
					challenger.Name, challenged.Name, formatTime(deadline), m.ID)
			}
		} else {
			c.Status = ChallengeRejected
			c.ResolvedAt = ptr(now)
			out.notify(challenger, "Challenge rejected", "%s rejected your challenge.", challenged.Name)
			out.notify(challenged, "Challenge rejected", "You rejected the challenge from %s.", challenger.Name)
		}
		if err := tx.UpdateChallenge(ctx, c); err != nil {
			return err
		}

		status := string(c.Status)
		out.publish(pubsub.EventChallengeUpdated, challengeEvent(c, now.Unix()))
		out.after(func() { s.metrics.IncChallengeTransition(status) })
		log.Info("Challenge answered", "challenge", c.ID, "status", c.Status, "admin", admin)
		return nil
	})
	if err != nil {
		return c, err
	}
	return c, nil
}

// expire marks a pending challenge expired and penalizes the challenged team.
func (s *Service) expire(ctx context.Context, tx Store, st Settings, c *Challenge, now time.Time, out *outbox) error {
	c.Status = ChallengeExpired
	c.ResolvedAt = ptr(now)
	if err := tx.UpdateChallenge(ctx, c); err != nil {
		return err
	}
	if _, err := s.applyPenalty(ctx, tx, st, c.ChallengedID, st.AcceptancePenaltyRanks, ReasonAcceptancePenalty, out); err != nil {
		return err
	}

	challenger, err := tx.GetTeam(ctx, c.ChallengerID)
	if err != nil {
		return err
	}
	challenged, err := tx.GetTeam(ctx, c.ChallengedID)
	if err != nil {
		return err
	}
	out.notify(challenger, "Challenge expired", "%s did not respond to your challenge in time.", challenged.Name)
	out.notify(challenged, "Challenge expired", "The challenge from %s expired because it was not answered in time.", challenger.Name)
	out.publish(pubsub.EventChallengeUpdated, challengeEvent(c, now.Unix()))
	out.after(func() { s.metrics.IncChallengeTransition(string(ChallengeExpired)) })
	log.Info("Challenge expired", "challenge", c.ID, "challenged", challenged.Name)
	return nil
}

// ExpireChallenge expires a pending challenge whose acceptance window has lapsed.
// It reports false when there was nothing to do.
func (s *Service) ExpireChallenge(ctx context.Context, challengeID string) (bool, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return false, err
	}
	expired := false
	err = s.mutate(ctx, c.Division, func(tx Store, st Settings, out *outbox) error {
		c, err := tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		now := s.Now()
		if EvaluateChallengeDeadline(c, now) != AcceptanceMissed {
			return nil
		}
		expired = true
		return s.expire(ctx, tx, st, c, now, out)
	})
	return expired, err
}

// CancelChallenge withdraws an active challenge. Either party may cancel until
// a score has been submitted.
func (s *Service) CancelChallenge(ctx context.Context, challengeID, teamID string) (*Challenge, error) {
	return s.cancel(ctx, challengeID, teamID)
}

// AdminCancelChallenge cancels any active challenge.
func (s *Service) AdminCancelChallenge(ctx context.Context, challengeID string) (*Challenge, error) {
	return s.cancel(ctx, challengeID, "")
}

func (s *Service) cancel(ctx context.Context, challengeID, teamID string) (*Challenge, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	admin := teamID == ""

	err = s.mutate(ctx, c.Division, func(tx Store, st Settings, out *outbox) error {
		c, err = tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if !admin && !c.Involves(teamID) {
			return newError(ErrUnauthorized, "only the teams in this challenge can cancel it")
		}
		if !c.Status.Active() {
			return newError(ErrInvalidState, "challenge is already %s", c.Status)
		}

		now := s.Now()
		// The challenged team cannot dodge the acceptance penalty by cancelling late.
		if !admin && EvaluateChallengeDeadline(c, now) == AcceptanceMissed {
			if err := s.expire(ctx, tx, st, c, now, out); err != nil {
				return err
			}
			out.fail(newError(ErrDeadlinePassed, "the acceptance deadline passed at %s, the challenge has expired", formatTime(c.AcceptanceDeadline)))
			return nil
		}

		if c.Status == ChallengeAccepted {
			m, err := tx.GetMatchByChallenge(ctx, c.ID)
			if err != nil {
				return err
			}
			if m.Status == MatchNoShowReported {
				return newError(ErrInvalidState, "a no-show report is pending admin review")
			}
			// Rejections clear the submission flags, so history counts too.
			if m.Status != MatchPending || m.AnySubmitted() || m.RejectionCount > 0 || m.RejectedByA || m.RejectedByB {
				return newError(ErrInvalidState, "a score has already been submitted for this match")
			}
			if err := tx.DeleteMatch(ctx, m.ID); err != nil {
				return err
			}
		}

		c.Status = ChallengeCancelled
		c.ResolvedAt = ptr(now)
		c.CancelledBy = teamID
		if admin {
			c.CancelledBy = "admin"
		}
		if err := tx.UpdateChallenge(ctx, c); err != nil {
			return err
		}

		for _, id := range []string{c.ChallengerID, c.ChallengedID} {
			t, err := tx.GetTeam(ctx, id)
			if err != nil {
				return err
			}
			out.notify(t, "Challenge cancelled", "The challenge %s was cancelled.", c.ID)
		}
		out.publish(pubsub.EventChallengeUpdated, challengeEvent(c, now.Unix()))
		out.after(func() { s.metrics.IncChallengeTransition(string(ChallengeCancelled)) })
		log.Info("Challenge cancelled", "challenge", c.ID, "by", c.CancelledBy)
		return nil
	})
	if err != nil {
		return c, err
	}
	return c, nil
}

func (s *Service) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// ListChallenges returns challenges in the given statuses, or all when none are given.
func (s *Service) ListChallenges(ctx context.Context, statuses ...ChallengeStatus) ([]*Challenge, error) {
	return s.store.ListChallenges(ctx, statuses...)
}

// ActiveChallengeFor returns the team's active challenge, or nil.
func (s *Service) ActiveChallengeFor(ctx context.Context, teamID string) (*Challenge, error) {
	return s.store.ActiveChallengeForTeam(ctx, teamID)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Mon 2 Jan 15:04 MST")
}
