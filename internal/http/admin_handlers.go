package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
)

func (s *Server) VerifyDivisionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		division, err := ladder.ParseDivision(r.PathValue("division"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.Ladder.VerifyDivision(r.Context(), division); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"division": division, "consistent": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"division": division, "consistent": true})
	}
}

// RegisterTeamHandler is the only place the access token is handed out.
func (s *Server) RegisterTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ladder.TeamInput
		if !decodeJSON(w, r, &in) {
			return
		}
		team, err := s.Ladder.RegisterTeam(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, registeredTeam{Team: team, AccessToken: team.AccessToken})
	}
}

func (s *Server) PaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		team, err := s.Ladder.SetPaymentReceived(r.Context(), r.PathValue("id"), req.Paid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func (s *Server) WithdrawHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ladder.WithdrawTeam(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) PenaltyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req penaltyRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		change, err := s.Ladder.AdminApplyPenalty(r.Context(), r.PathValue("id"), req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
	}
}

func (s *Server) MoveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		change, err := s.Ladder.AdminMoveTeam(r.Context(), r.PathValue("id"), req.Rank)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
	}
}

// AdminChallengeActionHandler answers or cancels a challenge on behalf of the teams,
// ignoring the acceptance deadline.
func (s *Server) AdminChallengeActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var (
			c   *ladder.Challenge
			err error
		)
		switch r.PathValue("action") {
		case "accept":
			c, err = s.Ladder.AdminAcceptChallenge(r.Context(), id)
		case "reject":
			c, err = s.Ladder.AdminRejectChallenge(r.Context(), id)
		case "cancel":
			c, err = s.Ladder.AdminCancelChallenge(r.Context(), id)
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

func (s *Server) AdminCreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminMatchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		m, err := s.Ladder.AdminCreateMatch(r.Context(), req.TeamAID, req.TeamBID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) ResolveDisputeHandler() http.HandlerFunc {
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
		m, err := s.Ladder.AdminResolveDispute(r.Context(), r.PathValue("id"), scores)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) NoShowDecisionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var (
			m   *ladder.Match
			err error
		)
		switch r.PathValue("action") {
		case "approve":
			m, err = s.Ladder.AdminApproveNoShow(r.Context(), id)
		case "reject":
			m, err = s.Ladder.AdminRejectNoShow(r.Context(), id)
		default:
			http.NotFound(w, r)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) GetSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Ladder.GetSettings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// UpdateSettingsHandler replaces the ladder policy. Omitted fields keep their current value.
func (s *Server) UpdateSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Ladder.GetSettings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if !decodeJSON(w, r, &st) {
			return
		}
		st, err = s.Ladder.UpdateSettings(r.Context(), st)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Ladder settings updated", "penaltiesActive", st.PenaltiesActive)
		writeJSON(w, http.StatusOK, st)
	}
}

// SweepHandler runs the deadline sweep once. Honours dry_run.
func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Processor.ProcessDeadlines(r.Context(), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
