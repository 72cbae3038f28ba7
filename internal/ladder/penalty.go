package ladder

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// ApplyRankPenalty moves a team down by amount ranks. It does nothing when
// amount is not positive or penalties are switched off.
func (s *Service) ApplyRankPenalty(ctx context.Context, teamID string, amount int, reason string) (RankChange, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return RankChange{}, err
	}
	if !team.Active {
		return RankChange{}, newError(ErrInvalidState, "%s is no longer on the ladder", team.Name)
	}
	var change RankChange
	err = s.mutate(ctx, team.Division, func(tx Store, st Settings, out *outbox) error {
		change, err = s.applyPenalty(ctx, tx, st, teamID, amount, reason, out)
		return err
	})
	return change, err
}

// AdminApplyPenalty is ApplyRankPenalty with the admin reason.
func (s *Service) AdminApplyPenalty(ctx context.Context, teamID string, amount int) (RankChange, error) {
	if amount <= 0 {
		return RankChange{}, newError(ErrValidation, "penalty must be at least one rank")
	}
	return s.ApplyRankPenalty(ctx, teamID, amount, ReasonAdminPenalty)
}

// OverdueChallenges returns pending challenges whose acceptance window lapsed at now.
// Nothing is changed; the sweep or the next interaction applies the consequences.
func (s *Service) OverdueChallenges(ctx context.Context, now time.Time) ([]*Challenge, error) {
	pending, err := s.store.ListChallenges(ctx, ChallengePendingAcceptance)
	if err != nil {
		return nil, err
	}
	var overdue []*Challenge
	for _, c := range pending {
		if EvaluateChallengeDeadline(c, now) == AcceptanceMissed {
			overdue = append(overdue, c)
		}
	}
	return overdue, nil
}

// ReportNoShow lets a team report that its opponent did not turn up. It is only
// admissible once the completion deadline has passed without any score.
func (s *Service) ReportNoShow(ctx context.Context, matchID, reporterID, notes string) (*Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if _, ok := m.SideOf(reporterID); !ok {
			return newError(ErrUnauthorized, "only the teams playing this match can report a no-show")
		}
		now := s.Now()
		if err := NoShowAdmissible(m, now); err != nil {
			return err
		}

		m.ReportedNoShowTeamID = m.Opponent(reporterID)
		m.ReportedByTeamID = reporterID
		m.NoShowReportDate = ptr(now)
		m.NoShowNotes = notes
		m.Status = MatchNoShowReported
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return err
		}

		reporter, err := tx.GetTeam(ctx, reporterID)
		if err != nil {
			return err
		}
		reported, err := tx.GetTeam(ctx, m.ReportedNoShowTeamID)
		if err != nil {
			return err
		}
		out.notify(reported, "No-show reported", "%s reported that you did not show up for match %s. An admin will review it.", reporter.Name, m.ID)
		out.notify(reporter, "No-show reported", "Your no-show report against %s is waiting for admin review.", reported.Name)
		log.Info("No-show reported", "match", m.ID, "reporter", reporter.Name, "reported", reported.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AdminApproveNoShow awards the match to the reporting team as a walkover and
// penalizes the team that did not show up.
func (s *Service) AdminApproveNoShow(ctx context.Context, matchID string) (*Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != MatchNoShowReported {
			return newError(ErrInvalidState, "match has no pending no-show report (match is %s)", m.Status)
		}
		score := walkover(m.ReportedByTeamID == m.TeamAID)
		if err := s.completeMatch(ctx, tx, m, score, MatchCompletedNoShow, out); err != nil {
			return err
		}
		_, err := s.applyPenalty(ctx, tx, st, m.ReportedNoShowTeamID, st.NoShowPenaltyRanks, ReasonNoShowPenalty, out)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AdminRejectNoShow dismisses a no-show report and reopens the match.
func (s *Service) AdminRejectNoShow(ctx context.Context, matchID string) (*Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, m.Division, func(tx Store, st Settings, out *outbox) error {
		m, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != MatchNoShowReported {
			return newError(ErrInvalidState, "match has no pending no-show report (match is %s)", m.Status)
		}
		reporterID := m.ReportedByTeamID
		m.ReportedNoShowTeamID = ""
		m.ReportedByTeamID = ""
		m.NoShowReportDate = nil
		m.NoShowNotes = ""
		m.Status = MatchPending
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return err
		}
		for _, id := range []string{m.TeamAID, m.TeamBID} {
			t, err := tx.GetTeam(ctx, id)
			if err != nil {
				return err
			}
			out.notify(t, "No-show report rejected", "An admin rejected the no-show report for match %s. The match is open again.", m.ID)
		}
		log.Info("No-show report rejected", "match", m.ID, "reporter", reporterID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// walkover is a 6-0 6-0 result in team A's perspective.
func walkover(teamAWins bool) SetScores {
	if teamAWins {
		return SetScores{Sets: []Set{{A: 6, B: 0}, {A: 6, B: 0}}}
	}
	return SetScores{Sets: []Set{{A: 0, B: 6}, {A: 0, B: 6}}}
}

// SetHolidayMode switches holiday mode. Switching it off settles the
// accumulated holiday penalty.
func (s *Service) SetHolidayMode(ctx context.Context, teamID string, active bool) (*Team, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, team.Division, func(tx Store, st Settings, out *outbox) error {
		team, err = tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !team.Active {
			return newError(ErrInvalidState, "%s is no longer on the ladder", team.Name)
		}
		if team.HolidayActive == active {
			if active {
				return newError(ErrInvalidState, "holiday mode is already on")
			}
			return newError(ErrInvalidState, "holiday mode is already off")
		}
		reason, err := lockedBy(ctx, tx, team)
		if err != nil {
			return err
		}
		if reason != "" {
			return newError(ErrInvalidState, "%s", reason)
		}

		now := s.Now()
		if active {
			if err := tx.UpdateTeamHoliday(ctx, team.ID, true, ptr(now)); err != nil {
				return err
			}
			out.notify(team, "Holiday mode on", "Holiday mode is on. After %d weeks you drop %d rank(s) per further week.",
				st.HolidayModeGraceWeeks, st.HolidayModeWeeklyPenaltyRanks)
		} else {
			penalty := HolidayPenalty(team, st, now)
			if err := tx.UpdateTeamHoliday(ctx, team.ID, false, nil); err != nil {
				return err
			}
			if _, err := s.applyPenalty(ctx, tx, st, team.ID, penalty, ReasonHolidayPenalty, out); err != nil {
				return err
			}
			out.notify(team, "Holiday mode off", "Welcome back, holiday mode is off.")
		}
		log.Info("Holiday mode changed", "team", team.Name, "active", active)

		team, err = tx.GetTeam(ctx, teamID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}
