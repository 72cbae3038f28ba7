package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	db *sql.DB
	q  querier
	tx bool
}

// New creates a sqlite backed ladder Store.
func New(db *sql.DB) Store {
	return &store{db: db, q: db}
}

// WithTx runs fn inside a single transaction. Nested calls reuse the outer one.
func (s *store) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.tx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&store{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func unix(t time.Time) int64 {
	return t.Unix()
}

func nullUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func fromNullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// --- settings ---

func (s *store) GetSettings(ctx context.Context) (Settings, error) {
	var st Settings
	var active sql.NullBool
	err := s.q.QueryRowContext(ctx, `
		SELECT challenge_acceptance_hours, match_completion_days, max_challenge_rank_difference,
			acceptance_penalty_ranks, no_show_penalty_ranks, holiday_mode_grace_weeks,
			holiday_mode_weekly_penalty_ranks, penalties_active
		FROM ladder_settings WHERE id = 1`).Scan(
		&st.ChallengeAcceptanceHours, &st.MatchCompletionDays, &st.MaxChallengeRankDifference,
		&st.AcceptancePenaltyRanks, &st.NoShowPenaltyRanks, &st.HolidayModeGraceWeeks,
		&st.HolidayModeWeeklyPenaltyRanks, &active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("Ladder settings row missing, using defaults")
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load ladder settings: %w", err)
	}
	// An unset kill-switch reads as inactive.
	st.PenaltiesActive = active.Valid && active.Bool
	return st, nil
}

func (s *store) UpdateSettings(ctx context.Context, st Settings) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO ladder_settings (id, challenge_acceptance_hours, match_completion_days, max_challenge_rank_difference,
			acceptance_penalty_ranks, no_show_penalty_ranks, holiday_mode_grace_weeks,
			holiday_mode_weekly_penalty_ranks, penalties_active, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			challenge_acceptance_hours = excluded.challenge_acceptance_hours,
			match_completion_days = excluded.match_completion_days,
			max_challenge_rank_difference = excluded.max_challenge_rank_difference,
			acceptance_penalty_ranks = excluded.acceptance_penalty_ranks,
			no_show_penalty_ranks = excluded.no_show_penalty_ranks,
			holiday_mode_grace_weeks = excluded.holiday_mode_grace_weeks,
			holiday_mode_weekly_penalty_ranks = excluded.holiday_mode_weekly_penalty_ranks,
			penalties_active = excluded.penalties_active,
			updated_at = excluded.updated_at`,
		st.ChallengeAcceptanceHours, st.MatchCompletionDays, st.MaxChallengeRankDifference,
		st.AcceptancePenaltyRanks, st.NoShowPenaltyRanks, st.HolidayModeGraceWeeks,
		st.HolidayModeWeeklyPenaltyRanks, st.PenaltiesActive, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ladder settings: %w", err)
	}
	return nil
}

// --- teams ---

const teamColumns = `id, name, division, player1_name, player1_email, player2_name, player2_email, slack_channel,
	rank, version, active, access_token, wins, losses, draws, sets_won, sets_lost, games_won, games_lost,
	holiday_mode_active, holiday_mode_start, payment_received, created_at`

func scanTeam(scanner interface{ Scan(...any) error }) (*Team, error) {
	var t Team
	var holidayStart sql.NullInt64
	var createdAt int64
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Division, &t.Player1Name, &t.Player1Email, &t.Player2Name, &t.Player2Email, &t.SlackChannel,
		&t.Rank, &t.Version, &t.Active, &t.AccessToken,
		&t.Stats.Wins, &t.Stats.Losses, &t.Stats.Draws, &t.Stats.SetsWon, &t.Stats.SetsLost, &t.Stats.GamesWon, &t.Stats.GamesLost,
		&t.HolidayActive, &holidayStart, &t.PaymentReceived, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	t.HolidayStart = fromNullUnix(holidayStart)
	t.CreatedAt = fromUnix(createdAt)
	return &t, nil
}

func (s *store) InsertTeam(ctx context.Context, t *Team) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO ladder_teams (`+teamColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Division), t.Player1Name, t.Player1Email, t.Player2Name, t.Player2Email, t.SlackChannel,
		t.Rank, t.Version, t.Active, t.AccessToken,
		t.Stats.Wins, t.Stats.Losses, t.Stats.Draws, t.Stats.SetsWon, t.Stats.SetsLost, t.Stats.GamesWon, t.Stats.GamesLost,
		t.HolidayActive, nullUnix(t.HolidayStart), t.PaymentReceived, unix(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert team %s: %w", t.ID, err)
	}
	return nil
}

func (s *store) getTeamWhere(ctx context.Context, where string, arg any) (*Team, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM ladder_teams WHERE `+where, arg)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "team not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return t, nil
}

func (s *store) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.getTeamWhere(ctx, "id = ?", id)
}

func (s *store) GetTeamByToken(ctx context.Context, token string) (*Team, error) {
	if token == "" {
		return nil, newError(ErrUnauthorized, "missing team token")
	}
	t, err := s.getTeamWhere(ctx, "access_token = ?", token)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrUnauthorized, "unknown team token")
	}
	return t, err
}

// ListTeams returns the active teams of a division ordered by rank.
func (s *store) ListTeams(ctx context.Context, division Division) ([]*Team, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+teamColumns+` FROM ladder_teams
		WHERE division = ? AND active = 1 ORDER BY rank ASC`, string(division))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// UpdateTeamRank writes a new rank guarded by the team's version.
func (s *store) UpdateTeamRank(ctx context.Context, t *Team, newRank int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE ladder_teams SET rank = ?, version = version + 1
		WHERE id = ? AND version = ?`, newRank, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("failed to update rank of team %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return newError(ErrConcurrentUpdate, "team %s was modified concurrently, please retry", t.Name)
	}
	t.Rank = newRank
	t.Version++
	return nil
}

func (s *store) UpdateTeamStats(ctx context.Context, teamID string, st TeamStats) error {
	_, err := s.q.ExecContext(ctx, `UPDATE ladder_teams SET wins = ?, losses = ?, draws = ?,
		sets_won = ?, sets_lost = ?, games_won = ?, games_lost = ? WHERE id = ?`,
		st.Wins, st.Losses, st.Draws, st.SetsWon, st.SetsLost, st.GamesWon, st.GamesLost, teamID)
	if err != nil {
		return fmt.Errorf("failed to update stats of team %s: %w", teamID, err)
	}
	return nil
}

func (s *store) UpdateTeamHoliday(ctx context.Context, teamID string, active bool, start *time.Time) error {
	_, err := s.q.ExecContext(ctx, `UPDATE ladder_teams SET holiday_mode_active = ?, holiday_mode_start = ? WHERE id = ?`,
		active, nullUnix(start), teamID)
	if err != nil {
		return fmt.Errorf("failed to update holiday mode of team %s: %w", teamID, err)
	}
	return nil
}

func (s *store) UpdateTeamPayment(ctx context.Context, teamID string, paid bool) error {
	_, err := s.q.ExecContext(ctx, `UPDATE ladder_teams SET payment_received = ? WHERE id = ?`, paid, teamID)
	if err != nil {
		return fmt.Errorf("failed to update payment of team %s: %w", teamID, err)
	}
	return nil
}

func (s *store) DeactivateTeam(ctx context.Context, t *Team) error {
	res, err := s.q.ExecContext(ctx, `UPDATE ladder_teams SET active = 0, rank = 0, version = version + 1
		WHERE id = ? AND version = ?`, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("failed to deactivate team %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(ErrConcurrentUpdate, "team %s was modified concurrently, please retry", t.Name)
	}
	t.Active = false
	t.Rank = 0
	t.Version++
	return nil
}

func (s *store) InsertRankEvent(ctx context.Context, e RankEvent) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO ladder_rank_events (team_id, division, old_rank, new_rank, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, e.TeamID, string(e.Division), e.OldRank, e.NewRank, e.Reason, unix(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record rank event: %w", err)
	}
	return nil
}

func (s *store) ListRankEvents(ctx context.Context, teamID string) ([]RankEvent, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT team_id, division, old_rank, new_rank, reason, created_at
		FROM ladder_rank_events WHERE team_id = ? ORDER BY id ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rank events: %w", err)
	}
	defer rows.Close()

	var events []RankEvent
	for rows.Next() {
		var e RankEvent
		var createdAt int64
		if err := rows.Scan(&e.TeamID, &e.Division, &e.OldRank, &e.NewRank, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan rank event: %w", err)
		}
		e.CreatedAt = fromUnix(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- challenges ---

const challengeColumns = `id, division, challenger_id, challenged_id, status, created_at, acceptance_deadline,
	accepted_at, completion_deadline, resolved_at, cancelled_by`

func scanChallenge(scanner interface{ Scan(...any) error }) (*Challenge, error) {
	var c Challenge
	var createdAt, acceptanceDeadline int64
	var acceptedAt, completionDeadline, resolvedAt sql.NullInt64
	var cancelledBy sql.NullString
	err := scanner.Scan(&c.ID, &c.Division, &c.ChallengerID, &c.ChallengedID, &c.Status, &createdAt, &acceptanceDeadline,
		&acceptedAt, &completionDeadline, &resolvedAt, &cancelledBy)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromUnix(createdAt)
	c.AcceptanceDeadline = fromUnix(acceptanceDeadline)
	c.AcceptedAt = fromNullUnix(acceptedAt)
	c.CompletionDeadline = fromNullUnix(completionDeadline)
	c.ResolvedAt = fromNullUnix(resolvedAt)
	c.CancelledBy = cancelledBy.String
	return &c, nil
}

func (s *store) InsertChallenge(ctx context.Context, c *Challenge) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO ladder_challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.Division), c.ChallengerID, c.ChallengedID, string(c.Status), unix(c.CreatedAt), unix(c.AcceptanceDeadline),
		nullUnix(c.AcceptedAt), nullUnix(c.CompletionDeadline), nullUnix(c.ResolvedAt), nullString(c.CancelledBy))
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (s *store) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM ladder_challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "challenge not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge %s: %w", id, err)
	}
	return c, nil
}

func (s *store) UpdateChallenge(ctx context.Context, c *Challenge) error {
	_, err := s.q.ExecContext(ctx, `UPDATE ladder_challenges SET status = ?, accepted_at = ?, completion_deadline = ?,
		resolved_at = ?, cancelled_by = ? WHERE id = ?`,
		string(c.Status), nullUnix(c.AcceptedAt), nullUnix(c.CompletionDeadline), nullUnix(c.ResolvedAt), nullString(c.CancelledBy), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update challenge %s: %w", c.ID, err)
	}
	return nil
}

// ActiveChallengeForTeam returns the challenge locking teamID, or nil when it is free.
func (s *store) ActiveChallengeForTeam(ctx context.Context, teamID string) (*Challenge, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM ladder_challenges
		WHERE (challenger_id = ? OR challenged_id = ?) AND status IN (?, ?)
		ORDER BY created_at DESC LIMIT 1`,
		teamID, teamID, string(ChallengePendingAcceptance), string(ChallengeAccepted))
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active challenge: %w", err)
	}
	return c, nil
}

func (s *store) ListChallenges(ctx context.Context, statuses ...ChallengeStatus) ([]*Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM ladder_challenges`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var out []*Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- matches ---

const matchColumns = `id, challenge_id, division, team_a_id, team_b_id,
	team_a_set1, team_a_set2, team_a_set3, team_b_set1, team_b_set2, team_b_set3,
	submission_a, submission_b, team_a_submitted, team_b_submitted, rejection_count, rejected_by_a, rejected_by_b,
	status, verified, stats_calculated, winner_id, winner_old_rank, winner_new_rank, loser_old_rank, loser_new_rank,
	deadline, reported_no_show_team_id, reported_by_team_id, no_show_report_date, no_show_notes, created_at, completed_at`

// canonicalColumns spreads a score over the per-set columns.
func canonicalColumns(sc *SetScores) [6]any {
	var cols [6]any
	if sc == nil {
		return cols
	}
	for i, set := range sc.Sets {
		if i > 2 {
			break
		}
		cols[i] = set.A
		cols[3+i] = set.B
	}
	return cols
}

func scoresFromColumns(cols [6]sql.NullInt64) *SetScores {
	var sc SetScores
	for i := 0; i < 3; i++ {
		if !cols[i].Valid || !cols[3+i].Valid {
			break
		}
		sc.Sets = append(sc.Sets, Set{A: int(cols[i].Int64), B: int(cols[3+i].Int64)})
	}
	if len(sc.Sets) == 0 {
		return nil
	}
	return &sc
}

func submissionString(sc *SetScores) any {
	if sc == nil {
		return nil
	}
	return sc.String()
}

func submissionFromString(v sql.NullString) *SetScores {
	if !v.Valid || v.String == "" {
		return nil
	}
	sc, err := parseSets(v.String)
	if err != nil {
		log.Error("Stored score submission is unreadable", "value", v.String, "error", err)
		return nil
	}
	return &sc
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var challengeID, submissionA, submissionB, winnerID, reportedNoShow, reportedBy, notes sql.NullString
	var cols [6]sql.NullInt64
	var winnerOld, winnerNew, loserOld, loserNew sql.NullInt64
	var deadline, reportDate, completedAt sql.NullInt64
	var createdAt int64
	err := scanner.Scan(&m.ID, &challengeID, &m.Division, &m.TeamAID, &m.TeamBID,
		&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5],
		&submissionA, &submissionB, &m.TeamASubmitted, &m.TeamBSubmitted, &m.RejectionCount, &m.RejectedByA, &m.RejectedByB,
		&m.Status, &m.Verified, &m.StatsCalculated, &winnerID, &winnerOld, &winnerNew, &loserOld, &loserNew,
		&deadline, &reportedNoShow, &reportedBy, &reportDate, &notes, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	m.ChallengeID = challengeID.String
	m.Score = scoresFromColumns(cols)
	m.SubmissionA = submissionFromString(submissionA)
	m.SubmissionB = submissionFromString(submissionB)
	m.WinnerID = winnerID.String
	m.WinnerOldRank = int(winnerOld.Int64)
	m.WinnerNewRank = int(winnerNew.Int64)
	m.LoserOldRank = int(loserOld.Int64)
	m.LoserNewRank = int(loserNew.Int64)
	m.Deadline = fromNullUnix(deadline)
	m.ReportedNoShowTeamID = reportedNoShow.String
	m.ReportedByTeamID = reportedBy.String
	m.NoShowReportDate = fromNullUnix(reportDate)
	m.NoShowNotes = notes.String
	m.CreatedAt = fromUnix(createdAt)
	m.CompletedAt = fromNullUnix(completedAt)
	return &m, nil
}

func matchArgs(m *Match) []any {
	cols := canonicalColumns(m.Score)
	return []any{
		nullString(m.ChallengeID), string(m.Division), m.TeamAID, m.TeamBID,
		cols[0], cols[1], cols[2], cols[3], cols[4], cols[5],
		submissionString(m.SubmissionA), submissionString(m.SubmissionB), m.TeamASubmitted, m.TeamBSubmitted,
		m.RejectionCount, m.RejectedByA, m.RejectedByB,
		string(m.Status), m.Verified, m.StatsCalculated, nullString(m.WinnerID),
		nullInt(m.WinnerOldRank), nullInt(m.WinnerNewRank), nullInt(m.LoserOldRank), nullInt(m.LoserNewRank),
		nullUnix(m.Deadline), nullString(m.ReportedNoShowTeamID), nullString(m.ReportedByTeamID),
		nullUnix(m.NoShowReportDate), nullString(m.NoShowNotes), unix(m.CreatedAt), nullUnix(m.CompletedAt),
	}
}

func (s *store) InsertMatch(ctx context.Context, m *Match) error {
	args := append([]any{m.ID}, matchArgs(m)...)
	_, err := s.q.ExecContext(ctx, `INSERT INTO ladder_matches (`+matchColumns+`)
		VALUES (?`+strings.Repeat(", ?", len(args)-1)+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (s *store) UpdateMatch(ctx context.Context, m *Match) error {
	args := append(matchArgs(m), m.ID)
	_, err := s.q.ExecContext(ctx, `UPDATE ladder_matches SET
		challenge_id = ?, division = ?, team_a_id = ?, team_b_id = ?,
		team_a_set1 = ?, team_a_set2 = ?, team_a_set3 = ?, team_b_set1 = ?, team_b_set2 = ?, team_b_set3 = ?,
		submission_a = ?, submission_b = ?, team_a_submitted = ?, team_b_submitted = ?,
		rejection_count = ?, rejected_by_a = ?, rejected_by_b = ?,
		status = ?, verified = ?, stats_calculated = ?, winner_id = ?,
		winner_old_rank = ?, winner_new_rank = ?, loser_old_rank = ?, loser_new_rank = ?,
		deadline = ?, reported_no_show_team_id = ?, reported_by_team_id = ?,
		no_show_report_date = ?, no_show_notes = ?, created_at = ?, completed_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", m.ID, err)
	}
	return nil
}

func (s *store) getMatchWhere(ctx context.Context, where string, arg any) (*Match, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM ladder_matches WHERE `+where, arg)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "match not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

func (s *store) GetMatch(ctx context.Context, id string) (*Match, error) {
	return s.getMatchWhere(ctx, "id = ?", id)
}

func (s *store) GetMatchByChallenge(ctx context.Context, challengeID string) (*Match, error) {
	return s.getMatchWhere(ctx, "challenge_id = ?", challengeID)
}

func (s *store) DeleteMatch(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM ladder_matches WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return nil
}

// OpenMatchForTeam returns an unresolved match of teamID, or nil.
func (s *store) OpenMatchForTeam(ctx context.Context, teamID string) (*Match, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM ladder_matches
		WHERE (team_a_id = ? OR team_b_id = ?) AND status NOT IN (?, ?)
		ORDER BY created_at DESC LIMIT 1`, teamID, teamID, string(MatchCompleted), string(MatchCompletedNoShow))
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load open match: %w", err)
	}
	return m, nil
}

func (s *store) ListOpenMatches(ctx context.Context) ([]*Match, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+matchColumns+` FROM ladder_matches
		WHERE status NOT IN (?, ?) ORDER BY created_at ASC`, string(MatchCompleted), string(MatchCompletedNoShow))
	if err != nil {
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}
	defer rows.Close()

	var out []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
