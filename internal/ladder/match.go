package ladder

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

// SubmitScore records teamID's view of the result. Scores are given from team
// A's perspective. Once both sides agree the match completes and ranks change.
func (s *Service) SubmitScore(ctx context.Context, matchID, teamID string, scores SetScores) (*Match, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		side, ok := m.SideOf(teamID)
		if !ok {
			return newError(ErrUnauthorized, "only the teams playing this match can submit a score")
		}

		switch m.Status {
		case MatchCompleted, MatchCompletedNoShow:
			if m.Score != nil && m.Score.Equal(scores) {
				return nil
			}
			return newError(ErrInvalidState, "match is already completed")
		case MatchDisputed:
			return newError(ErrInvalidState, "match is disputed and waits for an admin")
		case MatchNoShowReported:
			return newError(ErrInvalidState, "a no-show report is pending admin review")
		}

		own := m.SubmissionA
		if side == SideB {
			own = m.SubmissionB
		}
		if own != nil && own.Equal(scores) {
			return nil
		}

		submitted := scores
		if side == SideA {
			m.SubmissionA, m.TeamASubmitted = &submitted, true
		} else {
			m.SubmissionB, m.TeamBSubmitted = &submitted, true
		}
		m.Score = &submitted

		if m.TeamASubmitted && m.TeamBSubmitted {
			return s.verify(ctx, tx, m, out)
		}

		m.Status = MatchPendingOpponentScore
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return err
		}
		submitter, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		opponent, err := tx.GetTeam(ctx, m.Opponent(teamID))
		if err != nil {
			return err
		}
		out.notify(opponent, "Score submitted",
			"%s submitted %s for your match (match id %s). Submit the same score to confirm it, or reject it.",
			submitter.Name, submitted.String(), m.ID)
		log.Info("Score submitted", "match", m.ID, "team", submitter.Name, "score", submitted.String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// verify compares both submissions and either completes or disputes the match.
func (s *Service) verify(ctx context.Context, tx Store, m *Match, out *outbox) error {
	agree, reason := compareSubmissions(m.SubmissionA, m.SubmissionB)
	if agree {
		return s.completeMatch(ctx, tx, m, *m.SubmissionA, MatchCompleted, out)
	}

	m.Status = MatchDisputed
	m.Verified = false
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return err
	}
	for _, id := range []string{m.TeamAID, m.TeamBID} {
		t, err := tx.GetTeam(ctx, id)
		if err != nil {
			return err
		}
		out.notify(t, "Match disputed", "The scores for match %s do not match: %s. An admin will resolve it.", m.ID, reason)
	}
	out.after(s.metrics.IncMatchesDisputed)
	log.Warn("Match disputed", "match", m.ID, "reason", reason)
	return nil
}

// completeMatch applies a verified result exactly once: stats, rank swap,
// challenge completion and notifications.
func (s *Service) completeMatch(ctx context.Context, tx Store, m *Match, score SetScores, status MatchStatus, out *outbox) error {
	if m.StatsCalculated {
		log.Warn("Match result already applied, skipping", "match", m.ID)
		return nil
	}
	now := s.Now()

	teamA, err := tx.GetTeam(ctx, m.TeamAID)
	if err != nil {
		return err
	}
	teamB, err := tx.GetTeam(ctx, m.TeamBID)
	if err != nil {
		return err
	}

	tally := score.Tally()
	winnerSide, decisive := score.Winner()
	a, b := teamA.Stats, teamB.Stats
	a.SetsWon, a.SetsLost = a.SetsWon+tally.SetsA, a.SetsLost+tally.SetsB
	a.GamesWon, a.GamesLost = a.GamesWon+tally.GamesA, a.GamesLost+tally.GamesB
	b.SetsWon, b.SetsLost = b.SetsWon+tally.SetsB, b.SetsLost+tally.SetsA
	b.GamesWon, b.GamesLost = b.GamesWon+tally.GamesB, b.GamesLost+tally.GamesA
	switch {
	case !decisive:
		a.Draws++
		b.Draws++
	case winnerSide == SideA:
		a.Wins++
		b.Losses++
	default:
		b.Wins++
		a.Losses++
	}
	if err := tx.UpdateTeamStats(ctx, teamA.ID, a); err != nil {
		return err
	}
	if err := tx.UpdateTeamStats(ctx, teamB.ID, b); err != nil {
		return err
	}

	m.Score = &score
	m.Status = status
	m.Verified = true
	m.StatsCalculated = true
	m.CompletedAt = ptr(now)

	var winner, loser *Team
	if decisive {
		winner, loser = teamA, teamB
		if winnerSide == SideB {
			winner, loser = teamB, teamA
		}
		teams, entries, err := loadDivision(ctx, tx, m.Division)
		if err != nil {
			return err
		}
		changes, err := SwapAfterWin(entries, winner.ID, loser.ID)
		if err != nil {
			return newError(ErrInvalidState, "%s", err.Error())
		}
		m.WinnerID = winner.ID
		m.WinnerOldRank, m.WinnerNewRank = winner.Rank, winner.Rank
		m.LoserOldRank, m.LoserNewRank = loser.Rank, loser.Rank
		if c, ok := changeFor(changes, winner.ID); ok {
			m.WinnerNewRank = c.NewRank
		}
		if c, ok := changeFor(changes, loser.ID); ok {
			m.LoserNewRank = c.NewRank
		}
		if err := s.applyRankChanges(ctx, tx, m.Division, teams, entries, changes, ReasonMatch, out); err != nil {
			return err
		}
	}
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return err
	}

	if m.ChallengeID != "" {
		c, err := tx.GetChallenge(ctx, m.ChallengeID)
		if err != nil {
			return err
		}
		c.Status = ChallengeCompleted
		c.ResolvedAt = ptr(now)
		if err := tx.UpdateChallenge(ctx, c); err != nil {
			return err
		}
		out.publish(pubsub.EventChallengeUpdated, challengeEvent(c, now.Unix()))
		out.after(func() { s.metrics.IncChallengeTransition(string(ChallengeCompleted)) })
	}

	for _, t := range []*Team{teamA, teamB} {
		if !decisive {
			out.notify(t, "Match confirmed", "%s vs %s ended %s, a draw. Ranks are unchanged.", teamA.Name, teamB.Name, score.String())
			continue
		}
		out.notify(t, "Match confirmed", "%s beat %s (%s from %s's side). %s is now rank %d, %s is rank %d.",
			winner.Name, loser.Name, score.String(), teamA.Name, winner.Name, m.WinnerNewRank, loser.Name, m.LoserNewRank)
	}
	out.publish(pubsub.EventMatchCompleted, MatchCompletedEvent{
		MatchID:  m.ID,
		Division: string(m.Division),
		TeamAID:  m.TeamAID,
		TeamBID:  m.TeamBID,
		WinnerID: m.WinnerID,
		Score:    score.String(),
		Status:   string(status),
		At:       now.Unix(),
	})
	out.after(s.metrics.IncMatchesVerified)
	log.Info("Match completed", "match", m.ID, "score", score.String(), "winner", m.WinnerID, "status", status)
	return nil
}

// RejectScore lets a team reject the opponent's submission once. The opponent
// has to submit again; a second rejection escalates the match to a dispute.
func (s *Service) RejectScore(ctx context.Context, matchID, teamID string) (*Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		side, ok := m.SideOf(teamID)
		if !ok {
			return newError(ErrUnauthorized, "only the teams playing this match can reject a score")
		}
		if m.Status != MatchPendingOpponentScore {
			return newError(ErrInvalidState, "there is no submitted score to reject (match is %s)", m.Status)
		}

		opponentSubmitted := m.TeamBSubmitted
		alreadyRejected := m.RejectedByA
		if side == SideB {
			opponentSubmitted = m.TeamASubmitted
			alreadyRejected = m.RejectedByB
		}
		if !opponentSubmitted {
			return newError(ErrInvalidState, "your opponent has not submitted a score yet")
		}
		if alreadyRejected {
			return newError(ErrInvalidState, "you have already rejected a score for this match")
		}

		if side == SideA {
			m.RejectedByA = true
			m.SubmissionB, m.TeamBSubmitted = nil, false
		} else {
			m.RejectedByB = true
			m.SubmissionA, m.TeamASubmitted = nil, false
		}
		m.RejectionCount++
		m.Score = nil
		m.Status = MatchPending
		if m.RejectionCount >= 2 {
			m.Status = MatchDisputed
			out.after(s.metrics.IncMatchesDisputed)
		}
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return err
		}

		rejecter, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		opponent, err := tx.GetTeam(ctx, m.Opponent(teamID))
		if err != nil {
			return err
		}
		if m.Status == MatchDisputed {
			for _, t := range []*Team{rejecter, opponent} {
				out.notify(t, "Match disputed", "Both teams rejected a score for match %s. An admin will resolve it.", m.ID)
			}
		} else {
			out.notify(opponent, "Score rejected", "%s rejected your score for match %s. Please submit it again.", rejecter.Name, m.ID)
		}
		log.Info("Score rejected", "match", m.ID, "team", rejecter.Name, "rejections", m.RejectionCount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AdminResolveDispute enters the final score of an open match by hand. The
// result goes through the same completion path as a verified submission.
func (s *Service) AdminResolveDispute(ctx context.Context, matchID string, scores SetScores) (*Match, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if !m.Status.Open() {
			return newError(ErrInvalidState, "match is already %s", m.Status)
		}
		if m.Status == MatchNoShowReported {
			return newError(ErrInvalidState, "approve or reject the pending no-show report first")
		}
		resolved := scores
		m.SubmissionA, m.SubmissionB = &resolved, &resolved
		m.TeamASubmitted, m.TeamBSubmitted = true, true
		log.Info("Admin resolving match", "match", m.ID, "score", resolved.String())
		return s.completeMatch(ctx, tx, m, resolved, MatchCompleted, out)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AdminCreateMatch schedules a match between two free teams without a challenge.
func (s *Service) AdminCreateMatch(ctx context.Context, teamAID, teamBID string) (*Match, error) {
	if teamAID == teamBID {
		return nil, newError(ErrValidation, "a team cannot play itself")
	}
	teamA, err := s.store.GetTeam(ctx, teamAID)
	if err != nil {
		return nil, err
	}

	var m *Match
	err = s.mutate(ctx, teamA.Division, func(tx Store, st Settings, out *outbox) error {
		teamA, err := tx.GetTeam(ctx, teamAID)
		if err != nil {
			return err
		}
		teamB, err := tx.GetTeam(ctx, teamBID)
		if err != nil {
			return err
		}
		if !teamA.Active || !teamB.Active {
			return newError(ErrInvalidState, "both teams must be on the ladder")
		}
		if teamA.Division != teamB.Division {
			return newError(ErrValidation, "%s and %s play in different divisions", teamA.Name, teamB.Name)
		}
		for _, t := range []*Team{teamA, teamB} {
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

		now := s.Now()
		m = &Match{
			ID:        newID(),
			Division:  teamA.Division,
			TeamAID:   teamA.ID,
			TeamBID:   teamB.ID,
			Status:    MatchPending,
			Deadline:  ptr(now.Add(st.completionWindow())),
			CreatedAt: now,
		}
		if err := tx.InsertMatch(ctx, m); err != nil {
			return err
		}
		for _, t := range []*Team{teamA, teamB} {
			out.notify(t, "Match scheduled", "An admin scheduled %s vs %s. Play it before %s. Match id: %s",
				teamA.Name, teamB.Name, formatTime(*m.Deadline), m.ID)
		}
		log.Info("Admin created match", "match", m.ID, "team_a", teamA.Name, "team_b", teamB.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMatch(ctx context.Context, id string) (*Match, error) {
	return s.store.GetMatch(ctx, id)
}

func (s *Service) ListOpenMatches(ctx context.Context) ([]*Match, error) {
	return s.store.ListOpenMatches(ctx)
}

// OverdueMatches returns open matches past their completion deadline at now.
func (s *Service) OverdueMatches(ctx context.Context, now time.Time) ([]*Match, error) {
	open, err := s.store.ListOpenMatches(ctx)
	if err != nil {
		return nil, err
	}
	var overdue []*Match
	for _, m := range open {
		if MatchOverdue(m, now) {
			overdue = append(overdue, m)
		}
	}
	return overdue, nil
}
