package league

import (
	"time"
)

// Team is a season league team.
type Team struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Player1Name  string    `json:"player1_name"`
	Player1Email string    `json:"player1_email,omitempty"`
	Player2Name  string    `json:"player2_name"`
	Player2Email string    `json:"player2_email,omitempty"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
	Points       int       `json:"points"`
	SetsFor      int       `json:"sets_for"`
	SetsAgainst  int       `json:"sets_against"`
	GamesFor     int       `json:"games_for"`
	GamesAgainst int       `json:"games_against"`
	CreatedAt    time.Time `json:"created_at"`
}

func (t *Team) SetsDiff() int  { return t.SetsFor - t.SetsAgainst }
func (t *Team) GamesDiff() int { return t.GamesFor - t.GamesAgainst }

// Recipients returns the e-mail addresses of both players.
func (t *Team) Recipients() []string {
	var out []string
	for _, r := range []string{t.Player1Email, t.Player2Email} {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

type MatchStatus string

const (
	// StatusDraft matches are an admin preview; they never count anywhere else.
	StatusDraft     MatchStatus = "draft"
	StatusScheduled MatchStatus = "scheduled"
	StatusCompleted MatchStatus = "completed"
	StatusBye       MatchStatus = "bye"
)

// Stage names a knockout slot. Swiss round matches have no stage.
type Stage string

const (
	StageNone Stage = ""
	StageQF1  Stage = "QF1"
	StageQF2  Stage = "QF2"
	StageQF3  Stage = "QF3"
	StageQF4  Stage = "QF4"
	StageSF1  Stage = "SF1"
	StageSF2  Stage = "SF2"
	StageF1   Stage = "F1"
)

// Match is a Swiss round match, a bye, or a playoff match.
type Match struct {
	ID              string      `json:"id"`
	Round           int         `json:"round,omitempty"`
	Stage           Stage       `json:"stage,omitempty"`
	TeamAID         string      `json:"team_a_id,omitempty"`
	TeamBID         string      `json:"team_b_id,omitempty"`
	Score           string      `json:"score,omitempty"`
	SetsA           int         `json:"sets_a"`
	SetsB           int         `json:"sets_b"`
	GamesA          int         `json:"games_a"`
	GamesB          int         `json:"games_b"`
	WinnerID        string      `json:"winner_id,omitempty"`
	Status          MatchStatus `json:"status"`
	Verified        bool        `json:"verified"`
	StatsCalculated bool        `json:"-"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// IsBye reports whether the match has no opponent.
func (m *Match) IsBye() bool {
	return m.TeamBID == ""
}

// Pairing is one pair of a generated round. TeamBID is empty for the bye.
type Pairing struct {
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id,omitempty"`
}

// TeamInput is what is needed to register a league team.
type TeamInput struct {
	Name         string `json:"name"`
	Player1Name  string `json:"player1_name"`
	Player1Email string `json:"player1_email"`
	Player2Name  string `json:"player2_name"`
	Player2Email string `json:"player2_email"`
}
