package ladder

// Event payloads published to Pub/Sub after a ladder transaction commits.

type RankChangedEvent struct {
	TeamID   string `json:"team_id" msgpack:"team_id"`
	TeamName string `json:"team_name" msgpack:"team_name"`
	Division string `json:"division" msgpack:"division"`
	OldRank  int    `json:"old_rank" msgpack:"old_rank"`
	NewRank  int    `json:"new_rank" msgpack:"new_rank"`
	Reason   string `json:"reason" msgpack:"reason"`
	At       int64  `json:"at" msgpack:"at"`
}

type ChallengeUpdatedEvent struct {
	ChallengeID  string `json:"challenge_id" msgpack:"challenge_id"`
	Division     string `json:"division" msgpack:"division"`
	ChallengerID string `json:"challenger_id" msgpack:"challenger_id"`
	ChallengedID string `json:"challenged_id" msgpack:"challenged_id"`
	Status       string `json:"status" msgpack:"status"`
	At           int64  `json:"at" msgpack:"at"`
}

type MatchCompletedEvent struct {
	MatchID  string `json:"match_id" msgpack:"match_id"`
	Division string `json:"division" msgpack:"division"`
	TeamAID  string `json:"team_a_id" msgpack:"team_a_id"`
	TeamBID  string `json:"team_b_id" msgpack:"team_b_id"`
	WinnerID string `json:"winner_id,omitempty" msgpack:"winner_id"`
	Score    string `json:"score" msgpack:"score"`
	Status   string `json:"status" msgpack:"status"`
	At       int64  `json:"at" msgpack:"at"`
}

func challengeEvent(c *Challenge, at int64) ChallengeUpdatedEvent {
	return ChallengeUpdatedEvent{
		ChallengeID:  c.ID,
		Division:     string(c.Division),
		ChallengerID: c.ChallengerID,
		ChallengedID: c.ChallengedID,
		Status:       string(c.Status),
		At:           at,
	}
}
