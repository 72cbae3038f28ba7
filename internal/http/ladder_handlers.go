package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
)

// RankingsHandler lists a division. The public listing hides teams that have not paid.
func (s *Server) RankingsHandler(publicOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		division, err := ladder.ParseDivision(r.PathValue("division"))
		if err != nil {
			writeError(w, err)
			return
		}
		rows, err := s.Ladder.Rankings(r.Context(), division, publicOnly)
		if err != nil {
			writeError(w, err)
			return
		}
		if rows == nil {
			rows = []ladder.RankingRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (s *Server) RankHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.Ladder.RankHistory(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if events == nil {
			events = []ladder.RankEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// MeHandler returns the calling team and its active challenge.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFromContext(r)
		active, err := s.Ladder.ActiveChallengeFor(r.Context(), team.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teamView{Team: team, ActiveChallenge: active})
	}
}

func (s *Server) CreateChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req challengeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		team := teamFromContext(r)
		c, err := s.Ladder.CreateChallenge(r.Context(), team.ID, req.ChallengedID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// ChallengeActionHandler handles accept, reject and cancel by one of the teams.
func (s *Server) ChallengeActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, team := r.PathValue("id"), teamFromContext(r)
		var (
			c   *ladder.Challenge
			err error
		)
		switch r.PathValue("action") {
		case "accept":
			c, err = s.Ladder.AcceptChallenge(r.Context(), id, team.ID)
		case "reject":
			c, err = s.Ladder.RejectChallenge(r.Context(), id, team.ID)
		case "cancel":
			c, err = s.Ladder.CancelChallenge(r.Context(), id, team.ID)
		default:
			http.NotFound(w, r)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		scores, err := req.parse()
		if err != nil {
			writeError(w, err)
			return
		}
		m, err := s.Ladder.SubmitScore(r.Context(), r.PathValue("id"), teamFromContext(r).ID, scores)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) RejectScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Ladder.RejectScore(r.Context(), r.PathValue("id"), teamFromContext(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) ReportNoShowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noShowRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		m, err := s.Ladder.ReportNoShow(r.Context(), r.PathValue("id"), teamFromContext(r).ID, req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) HolidayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req holidayRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		team, err := s.Ladder.SetHolidayMode(r.Context(), teamFromContext(r).ID, req.Active)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Holiday mode changed", "team", team.Name, "active", team.HolidayActive)
		writeJSON(w, http.StatusOK, team)
	}
}
