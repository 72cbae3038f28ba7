package ladder

import "time"

const week = 7 * 24 * time.Hour

// DeadlineVerdict is the outcome of checking an entity against the clock.
type DeadlineVerdict int

const (
	DeadlineOK DeadlineVerdict = iota
	// AcceptanceMissed means the challenged team let the acceptance window lapse.
	AcceptanceMissed
	// CompletionMissed means the match was not played within the completion window.
	CompletionMissed
)

func (v DeadlineVerdict) String() string {
	switch v {
	case AcceptanceMissed:
		return "acceptance_missed"
	case CompletionMissed:
		return "completion_missed"
	}
	return "ok"
}

// EvaluateChallengeDeadline reports which deadline, if any, the challenge has
// passed at now. It never mutates anything; callers decide what to do.
func EvaluateChallengeDeadline(c *Challenge, now time.Time) DeadlineVerdict {
	switch c.Status {
	case ChallengePendingAcceptance:
		if now.After(c.AcceptanceDeadline) {
			return AcceptanceMissed
		}
	case ChallengeAccepted:
		if c.CompletionDeadline != nil && now.After(*c.CompletionDeadline) {
			return CompletionMissed
		}
	}
	return DeadlineOK
}

// MatchOverdue reports whether an open match is past its completion deadline.
func MatchOverdue(m *Match, now time.Time) bool {
	return m.Status.Open() && m.Deadline != nil && now.After(*m.Deadline)
}

// NoShowAdmissible checks whether a no-show report on m may be filed at now.
func NoShowAdmissible(m *Match, now time.Time) error {
	if m.ReportedNoShowTeamID != "" || m.Status == MatchNoShowReported {
		return newError(ErrInvalidState, "a no-show has already been reported for this match")
	}
	if !m.Status.Open() {
		return newError(ErrInvalidState, "match is already %s", m.Status)
	}
	if m.AnySubmitted() {
		return newError(ErrInvalidState, "a score has already been submitted for this match")
	}
	if m.Deadline == nil || !now.After(*m.Deadline) {
		return newError(ErrInvalidState, "a no-show can only be reported after the completion deadline")
	}
	return nil
}

// HolidayPenalty is the number of ranks a team on holiday has accrued at now:
// nothing during the grace weeks, then the weekly penalty for every further
// full week.
func HolidayPenalty(t *Team, s Settings, now time.Time) int {
	if !t.HolidayActive || t.HolidayStart == nil {
		return 0
	}
	elapsed := now.Sub(*t.HolidayStart)
	if elapsed <= 0 {
		return 0
	}
	over := int(elapsed/week) - s.HolidayModeGraceWeeks
	if over <= 0 {
		return 0
	}
	return over * s.HolidayModeWeeklyPenaltyRanks
}
