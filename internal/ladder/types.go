package ladder

import (
	"fmt"
	"strings"
	"time"
)

// Division is a separate ladder. It also fixes the gender of the teams in it,
// so teams from different divisions never play each other.
type Division string

const (
	DivisionMen   Division = "men"
	DivisionWomen Division = "women"
	DivisionMixed Division = "mixed"
)

// Divisions lists every division in display order.
var Divisions = []Division{DivisionMen, DivisionWomen, DivisionMixed}

// ParseDivision validates a division name.
func ParseDivision(s string) (Division, error) {
	d := Division(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DivisionMen, DivisionWomen, DivisionMixed:
		return d, nil
	}
	return "", newError(ErrValidation, "unknown division %q (expected men, women or mixed)", s)
}

type ChallengeStatus string

const (
	ChallengePendingAcceptance ChallengeStatus = "pending_acceptance"
	ChallengeAccepted          ChallengeStatus = "accepted"
	ChallengeRejected          ChallengeStatus = "rejected"
	ChallengeExpired           ChallengeStatus = "expired"
	ChallengeCancelled         ChallengeStatus = "cancelled"
	ChallengeCompleted         ChallengeStatus = "completed"
)

// Active reports whether the challenge still locks both of its teams.
func (s ChallengeStatus) Active() bool {
	return s == ChallengePendingAcceptance || s == ChallengeAccepted
}

type MatchStatus string

const (
	MatchPending              MatchStatus = "pending"
	MatchPendingOpponentScore MatchStatus = "pending_opponent_score"
	MatchDisputed             MatchStatus = "disputed"
	MatchCompleted            MatchStatus = "completed"
	MatchCompletedNoShow      MatchStatus = "completed_no_show"
	MatchNoShowReported       MatchStatus = "no_show_reported"
)

// Open reports whether the match is still waiting on the teams or an admin.
func (s MatchStatus) Open() bool {
	return s != MatchCompleted && s != MatchCompletedNoShow
}

// TeamStats are the cumulative results of a team. Differences are derived on read.
type TeamStats struct {
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Draws     int `json:"draws"`
	SetsWon   int `json:"sets_won"`
	SetsLost  int `json:"sets_lost"`
	GamesWon  int `json:"games_won"`
	GamesLost int `json:"games_lost"`
}

func (s TeamStats) SetsDiff() int      { return s.SetsWon - s.SetsLost }
func (s TeamStats) GamesDiff() int     { return s.GamesWon - s.GamesLost }
func (s TeamStats) MatchesPlayed() int { return s.Wins + s.Losses + s.Draws }

// Team is a pair of players holding one rank slot in a division.
type Team struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Division        Division   `json:"division"`
	Player1Name     string     `json:"player1_name"`
	Player1Email    string     `json:"player1_email,omitempty"`
	Player2Name     string     `json:"player2_name"`
	Player2Email    string     `json:"player2_email,omitempty"`
	SlackChannel    string     `json:"slack_channel,omitempty"`
	Rank            int        `json:"rank"`
	Version         int        `json:"-"`
	Active          bool       `json:"active"`
	AccessToken     string     `json:"-"`
	Stats           TeamStats  `json:"stats"`
	HolidayActive   bool       `json:"holiday_mode_active"`
	HolidayStart    *time.Time `json:"holiday_mode_start,omitempty"`
	PaymentReceived bool       `json:"payment_received"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Recipients returns every address notifications for this team go to.
func (t *Team) Recipients() []string {
	var out []string
	for _, r := range []string{t.Player1Email, t.Player2Email, t.SlackChannel} {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

type Challenge struct {
	ID                 string          `json:"id"`
	Division           Division        `json:"division"`
	ChallengerID       string          `json:"challenger_id"`
	ChallengedID       string          `json:"challenged_id"`
	Status             ChallengeStatus `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	AcceptanceDeadline time.Time       `json:"acceptance_deadline"`
	AcceptedAt         *time.Time      `json:"accepted_at,omitempty"`
	CompletionDeadline *time.Time      `json:"completion_deadline,omitempty"`
	ResolvedAt         *time.Time      `json:"resolved_at,omitempty"`
	CancelledBy        string          `json:"cancelled_by,omitempty"`
}

// Involves reports whether teamID is one of the two parties.
func (c *Challenge) Involves(teamID string) bool {
	return c.ChallengerID == teamID || c.ChallengedID == teamID
}

// Side identifies one of the two teams of a match. Team A is the challenger.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Match is the ladder match spawned by an accepted challenge or created by an admin.
// Scores are always stored from team A's perspective.
type Match struct {
	ID                   string      `json:"id"`
	ChallengeID          string      `json:"challenge_id,omitempty"`
	Division             Division    `json:"division"`
	TeamAID              string      `json:"team_a_id"`
	TeamBID              string      `json:"team_b_id"`
	Score                *SetScores  `json:"score,omitempty"`
	SubmissionA          *SetScores  `json:"-"`
	SubmissionB          *SetScores  `json:"-"`
	TeamASubmitted       bool        `json:"team_a_submitted"`
	TeamBSubmitted       bool        `json:"team_b_submitted"`
	RejectionCount       int         `json:"rejection_count"`
	RejectedByA          bool        `json:"-"`
	RejectedByB          bool        `json:"-"`
	Status               MatchStatus `json:"status"`
	Verified             bool        `json:"verified"`
	StatsCalculated      bool        `json:"-"`
	WinnerID             string      `json:"winner_id,omitempty"`
	WinnerOldRank        int         `json:"winner_old_rank,omitempty"`
	WinnerNewRank        int         `json:"winner_new_rank,omitempty"`
	LoserOldRank         int         `json:"loser_old_rank,omitempty"`
	LoserNewRank         int         `json:"loser_new_rank,omitempty"`
	Deadline             *time.Time  `json:"deadline,omitempty"`
	ReportedNoShowTeamID string      `json:"reported_no_show_team_id,omitempty"`
	ReportedByTeamID     string      `json:"reported_by_team_id,omitempty"`
	NoShowReportDate     *time.Time  `json:"no_show_report_date,omitempty"`
	NoShowNotes          string      `json:"no_show_notes,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
}

// SideOf returns which side teamID plays on.
func (m *Match) SideOf(teamID string) (Side, bool) {
	switch teamID {
	case m.TeamAID:
		return SideA, true
	case m.TeamBID:
		return SideB, true
	}
	return "", false
}

// Opponent returns the id of the other team.
func (m *Match) Opponent(teamID string) string {
	if teamID == m.TeamAID {
		return m.TeamBID
	}
	return m.TeamAID
}

// AnySubmitted reports whether at least one team has entered a score.
func (m *Match) AnySubmitted() bool {
	return m.TeamASubmitted || m.TeamBSubmitted
}

// RankEvent is one row of the rank audit trail.
type RankEvent struct {
	TeamID    string    `json:"team_id"`
	Division  Division  `json:"division"`
	OldRank   int       `json:"old_rank"`
	NewRank   int       `json:"new_rank"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Rank change reasons written to the audit trail.
const (
	ReasonMatch             = "match"
	ReasonAcceptancePenalty = "penalty:acceptance"
	ReasonNoShowPenalty     = "penalty:no_show"
	ReasonHolidayPenalty    = "penalty:holiday"
	ReasonAdminPenalty      = "penalty:admin"
	ReasonAdminMove         = "admin_move"
	ReasonWithdrawal        = "withdrawal"
)

// RankingRow is a team as shown in a ranking listing.
type RankingRow struct {
	Team                  *Team `json:"team"`
	PendingHolidayPenalty int   `json:"pending_holiday_penalty,omitempty"`
	Locked                bool  `json:"locked"`
}

func (r RankingRow) String() string {
	return fmt.Sprintf("%d. %s", r.Team.Rank, r.Team.Name)
}
