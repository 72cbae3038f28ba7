package ladder

import "time"

// Settings is the ladder policy. It is read from the store at the start of
// every operation and passed down explicitly.
type Settings struct {
	ChallengeAcceptanceHours      int  `json:"challenge_acceptance_hours"`
	MatchCompletionDays           int  `json:"match_completion_days"`
	MaxChallengeRankDifference    int  `json:"max_challenge_rank_difference"`
	AcceptancePenaltyRanks        int  `json:"acceptance_penalty_ranks"`
	NoShowPenaltyRanks            int  `json:"no_show_penalty_ranks"`
	HolidayModeGraceWeeks         int  `json:"holiday_mode_grace_weeks"`
	HolidayModeWeeklyPenaltyRanks int  `json:"holiday_mode_weekly_penalty_ranks"`
	PenaltiesActive               bool `json:"penalties_active"`
}

// DefaultSettings mirrors the values seeded by the migrations.
func DefaultSettings() Settings {
	return Settings{
		ChallengeAcceptanceHours:      48,
		MatchCompletionDays:           7,
		MaxChallengeRankDifference:    3,
		AcceptancePenaltyRanks:        1,
		NoShowPenaltyRanks:            1,
		HolidayModeGraceWeeks:         2,
		HolidayModeWeeklyPenaltyRanks: 1,
		PenaltiesActive:               true,
	}
}

// Validate rejects settings that would make the ladder unusable.
func (s Settings) Validate() error {
	switch {
	case s.ChallengeAcceptanceHours <= 0:
		return newError(ErrValidation, "challenge_acceptance_hours must be positive")
	case s.MatchCompletionDays <= 0:
		return newError(ErrValidation, "match_completion_days must be positive")
	case s.MaxChallengeRankDifference <= 0:
		return newError(ErrValidation, "max_challenge_rank_difference must be positive")
	case s.AcceptancePenaltyRanks < 0, s.NoShowPenaltyRanks < 0, s.HolidayModeWeeklyPenaltyRanks < 0:
		return newError(ErrValidation, "penalty ranks cannot be negative")
	case s.HolidayModeGraceWeeks < 0:
		return newError(ErrValidation, "holiday_mode_grace_weeks cannot be negative")
	}
	return nil
}

func (s Settings) acceptanceWindow() time.Duration {
	return time.Duration(s.ChallengeAcceptanceHours) * time.Hour
}

func (s Settings) completionWindow() time.Duration {
	return time.Duration(s.MatchCompletionDays) * 24 * time.Hour
}
