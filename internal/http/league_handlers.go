package http

import (
	"net/http"

	"github.com/mauv0809/padel-ladder/internal/league"
)

func matchesOrEmpty(m []*league.Match) []*league.Match {
	if m == nil {
		return []*league.Match{}
	}
	return m
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.League.Standings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if teams == nil {
			teams = []*league.Team{}
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func (s *Server) RoundMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := pathInt(w, r, "round")
		if !ok {
			return
		}
		matches, err := s.League.RoundMatches(r.Context(), round)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesOrEmpty(matches))
	}
}

func (s *Server) PlayoffsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.League.PlayoffMatches(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesOrEmpty(matches))
	}
}

func (s *Server) RegisterLeagueTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in league.TeamInput
		if !decodeJSON(w, r, &in) {
			return
		}
		team, err := s.League.RegisterTeam(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func (s *Server) GenerateDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := pathInt(w, r, "round")
		if !ok {
			return
		}
		matches, err := s.League.GenerateDraft(r.Context(), round)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, matchesOrEmpty(matches))
	}
}

func (s *Server) DraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := pathInt(w, r, "round")
		if !ok {
			return
		}
		matches, err := s.League.Draft(r.Context(), round)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesOrEmpty(matches))
	}
}

func (s *Server) DiscardDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := pathInt(w, r, "round")
		if !ok {
			return
		}
		if err := s.League.DiscardDraft(r.Context(), round); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ConfirmRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := pathInt(w, r, "round")
		if !ok {
			return
		}
		matches, err := s.League.ConfirmRound(r.Context(), round)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesOrEmpty(matches))
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
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
		m, err := s.League.RecordResult(r.Context(), r.PathValue("id"), scores)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) CreatePlayoffHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playoffRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		m, err := s.League.CreatePlayoffMatch(r.Context(), req.Stage, req.TeamAID, req.TeamBID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// CheckDeadlinesHandler awards walkovers for rounds whose week is over. Honours dry_run.
func (s *Server) CheckDeadlinesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.League.CheckDeadlines(r.Context(), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesOrEmpty(matches))
	}
}
