package ladder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// TeamInput is what is needed to register a team.
type TeamInput struct {
	Name         string `json:"name"`
	Division     string `json:"division"`
	Player1Name  string `json:"player1_name"`
	Player1Email string `json:"player1_email"`
	Player2Name  string `json:"player2_name"`
	Player2Email string `json:"player2_email"`
	SlackChannel string `json:"slack_channel"`
}

// RegisterTeam adds a team at the bottom of its division and hands out its access token.
func (s *Service) RegisterTeam(ctx context.Context, in TeamInput) (*Team, error) {
	division, err := ParseDivision(in.Division)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(ErrValidation, "team name is required")
	}
	if strings.TrimSpace(in.Player1Name) == "" || strings.TrimSpace(in.Player2Name) == "" {
		return nil, newError(ErrValidation, "both player names are required")
	}

	var team *Team
	err = s.mutate(ctx, division, func(tx Store, st Settings, out *outbox) error {
		teams, err := tx.ListTeams(ctx, division)
		if err != nil {
			return err
		}
		team = &Team{
			ID:           newID(),
			Name:         name,
			Division:     division,
			Player1Name:  strings.TrimSpace(in.Player1Name),
			Player1Email: strings.TrimSpace(in.Player1Email),
			Player2Name:  strings.TrimSpace(in.Player2Name),
			Player2Email: strings.TrimSpace(in.Player2Email),
			SlackChannel: strings.TrimSpace(in.SlackChannel),
			Rank:         len(teams) + 1,
			Active:       true,
			AccessToken:  newID(),
			CreatedAt:    s.Now(),
		}
		if err := tx.InsertTeam(ctx, team); err != nil {
			return err
		}
		out.notify(team, "Welcome to the ladder", "%s joined the %s ladder at rank %d.", team.Name, division, team.Rank)
		log.Info("Team registered", "team", team.Name, "division", division, "rank", team.Rank)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.store.GetTeam(ctx, id)
}

// TeamByToken authenticates a team by its access token.
func (s *Service) TeamByToken(ctx context.Context, token string) (*Team, error) {
	t, err := s.store.GetTeamByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, newError(ErrUnauthorized, "team is no longer on the ladder")
	}
	return t, nil
}

// Rankings lists a division in rank order. The public view hides teams that
// have not paid yet. Pending holiday penalties are shown but not applied.
func (s *Service) Rankings(ctx context.Context, division Division, publicOnly bool) ([]RankingRow, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.store.ListTeams(ctx, division)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	rows := make([]RankingRow, 0, len(teams))
	for _, t := range teams {
		if publicOnly && !t.PaymentReceived {
			continue
		}
		c, err := s.store.ActiveChallengeForTeam(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, RankingRow{
			Team:                  t,
			PendingHolidayPenalty: HolidayPenalty(t, st, now),
			Locked:                c != nil,
		})
	}
	return rows, nil
}

// RankHistory returns the audit trail of a team.
func (s *Service) RankHistory(ctx context.Context, teamID string) ([]RankEvent, error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.ListRankEvents(ctx, teamID)
}

// VerifyDivision checks that the ranks of a division are exactly 1..N.
func (s *Service) VerifyDivision(ctx context.Context, division Division) error {
	_, entries, err := loadDivision(ctx, s.store, division)
	if err != nil {
		return err
	}
	if err := CheckPermutation(entries); err != nil {
		return fmt.Errorf("division %s: %w", division, err)
	}
	return nil
}

func (s *Service) SetPaymentReceived(ctx context.Context, teamID string, paid bool) (*Team, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, team.Division, func(tx Store, st Settings, out *outbox) error {
		if err := tx.UpdateTeamPayment(ctx, teamID, paid); err != nil {
			return err
		}
		team, err = tx.GetTeam(ctx, teamID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// WithdrawTeam removes a team from the ladder and closes the gap it leaves.
func (s *Service) WithdrawTeam(ctx context.Context, teamID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, team.Division, func(tx Store, st Settings, out *outbox) error {
		team, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !team.Active {
			return newError(ErrInvalidState, "%s is no longer on the ladder", team.Name)
		}
		reason, err := lockedBy(ctx, tx, team)
		if err != nil {
			return err
		}
		if reason != "" {
			return newError(ErrInvalidState, "%s", reason)
		}
		teams, entries, err := loadDivision(ctx, tx, team.Division)
		if err != nil {
			return err
		}
		changes, err := Remove(entries, teamID)
		if err != nil {
			return newError(ErrInvalidState, "%s", err.Error())
		}
		if err := s.applyRankChanges(ctx, tx, team.Division, teams, entries, changes, ReasonWithdrawal, out); err != nil {
			return err
		}
		out.notify(team, "Left the ladder", "%s has been removed from the %s ladder.", team.Name, team.Division)
		return nil
	})
}

// AdminMoveTeam puts a team on a specific rank, shifting the teams in between.
func (s *Service) AdminMoveTeam(ctx context.Context, teamID string, rank int) (RankChange, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return RankChange{}, err
	}
	var change RankChange
	err = s.mutate(ctx, team.Division, func(tx Store, st Settings, out *outbox) error {
		teams, entries, err := loadDivision(ctx, tx, team.Division)
		if err != nil {
			return err
		}
		if rank < 1 || rank > len(entries) {
			return newError(ErrValidation, "rank must be between 1 and %d", len(entries))
		}
		changes, err := MoveTo(entries, teamID, rank)
		if err != nil {
			return newError(ErrInvalidState, "%s", err.Error())
		}
		if err := s.applyRankChanges(ctx, tx, team.Division, teams, entries, changes, ReasonAdminMove, out); err != nil {
			return err
		}
		var ok bool
		if change, ok = changeFor(changes, teamID); !ok {
			current, _ := rankOf(entries, teamID)
			change = RankChange{TeamID: teamID, OldRank: current, NewRank: current}
		}
		return nil
	})
	return change, err
}

func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	return s.store.GetSettings(ctx)
}

// UpdateSettings validates and stores new settings. They apply to the next operation.
func (s *Service) UpdateSettings(ctx context.Context, st Settings) (Settings, error) {
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.store.UpdateSettings(ctx, st); err != nil {
		return Settings{}, err
	}
	log.Info("Ladder settings updated", "penalties_active", st.PenaltiesActive, "max_rank_difference", st.MaxChallengeRankDifference)
	return s.store.GetSettings(ctx)
}
