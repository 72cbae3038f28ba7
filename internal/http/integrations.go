package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	slacknotifier "github.com/mauv0809/padel-ladder/internal/notifier/slack"
	"github.com/slack-go/slack"
)

// LadderCommandHandler answers the /ladder slash command. The text selects a
// division ("men", "women", "mixed") or "league" for the season standings.
func (s *Server) LadderCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		arg := strings.ToLower(strings.TrimSpace(cmd.Text))
		log.Info("Received ladder command", "user", cmd.UserName, "text", arg)

		if arg == "league" {
			teams, err := s.League.Standings(r.Context())
			if err != nil {
				log.Error("Failed to load league standings", "error", err)
				respondWithSlackMsg(w, slacknotifier.FormatError("Could not load the league standings right now."))
				return
			}
			respondWithSlackMsg(w, slacknotifier.FormatStandings(teams))
			return
		}

		if arg == "" {
			arg = string(ladder.DivisionMixed)
		}
		division, err := ladder.ParseDivision(arg)
		if err != nil {
			respondWithSlackMsg(w, slacknotifier.FormatError(
				fmt.Sprintf("Unknown ladder *%s*. Try `men`, `women`, `mixed` or `league`.", arg)))
			return
		}
		rows, err := s.Ladder.Rankings(r.Context(), division, true)
		if err != nil {
			log.Error("Failed to load rankings", "error", err, "division", division)
			respondWithSlackMsg(w, slacknotifier.FormatError("Could not load the rankings right now."))
			return
		}
		respondWithSlackMsg(w, slacknotifier.FormatRankings(division, rows))
	}
}

// pushEnvelope is the body of a Pub/Sub push subscription request.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"` // base64-encoded msgpack payload
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}

// RankChangedPushHandler receives rank change events from Pub/Sub and announces them.
// Malformed messages are acknowledged so Pub/Sub does not redeliver them forever.
func (s *Server) RankChangedPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received rank changed message", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var event ladder.RankChangedEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			log.Error("Dropping undecodable rank change", "error", err, "messageID", envelope.Message.MessageID)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch {
		case isDryRunFromContext(r):
			log.Info("[Dry Run] Would announce rank change", "team", event.TeamName, "old", event.OldRank, "new", event.NewRank)
		case s.Announcer == nil:
			log.Debug("No announcer configured, skipping rank change", "team", event.TeamName)
		default:
			if err := s.Announcer.AnnounceRankChange(r.Context(), event); err != nil {
				log.Error("Failed to announce rank change", "error", err, "team", event.TeamName)
				http.Error(w, "Failed to announce rank change", http.StatusInternalServerError)
				return
			}
		}
		w.Write([]byte("OK"))
	}
}
