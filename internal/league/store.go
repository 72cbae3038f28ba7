package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/padel-ladder/internal/ladder"
)

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

// New creates a sqlite backed league Store.
func New(db *sql.DB) Store {
	return &store{db: db, q: db}
}

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

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const teamColumns = `id, name, player1_name, player1_email, player2_name, player2_email,
	wins, losses, draws, points, sets_for, sets_against, games_for, games_against, created_at`

func scanTeam(scanner interface{ Scan(...any) error }) (*Team, error) {
	var t Team
	var createdAt int64
	err := scanner.Scan(&t.ID, &t.Name, &t.Player1Name, &t.Player1Email, &t.Player2Name, &t.Player2Email,
		&t.Wins, &t.Losses, &t.Draws, &t.Points, &t.SetsFor, &t.SetsAgainst, &t.GamesFor, &t.GamesAgainst, &createdAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}

func (s *store) InsertTeam(ctx context.Context, t *Team) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO league_teams (`+teamColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Player1Name, t.Player1Email, t.Player2Name, t.Player2Email,
		t.Wins, t.Losses, t.Draws, t.Points, t.SetsFor, t.SetsAgainst, t.GamesFor, t.GamesAgainst, t.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert league team %s: %w", t.ID, err)
	}
	return nil
}

func (s *store) GetTeam(ctx context.Context, id string) (*Team, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM league_teams WHERE id = ?`, id)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fail(ladder.ErrNotFound, "league team not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load league team: %w", err)
	}
	return t, nil
}

// ListTeams returns all teams in standings order.
func (s *store) ListTeams(ctx context.Context) ([]*Team, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+teamColumns+` FROM league_teams
		ORDER BY wins DESC, (sets_for - sets_against) DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list league teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *store) UpdateTeamStats(ctx context.Context, t *Team) error {
	_, err := s.q.ExecContext(ctx, `UPDATE league_teams SET wins = ?, losses = ?, draws = ?, points = ?,
		sets_for = ?, sets_against = ?, games_for = ?, games_against = ? WHERE id = ?`,
		t.Wins, t.Losses, t.Draws, t.Points, t.SetsFor, t.SetsAgainst, t.GamesFor, t.GamesAgainst, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update stats of league team %s: %w", t.ID, err)
	}
	return nil
}

const matchColumns = `id, round, stage, team_a_id, team_b_id, score, sets_a, sets_b, games_a, games_b,
	winner_id, status, verified, stats_calculated, notes, created_at`

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var teamA, teamB, winner sql.NullString
	var stage, status string
	var createdAt int64
	err := scanner.Scan(&m.ID, &m.Round, &stage, &teamA, &teamB, &m.Score, &m.SetsA, &m.SetsB, &m.GamesA, &m.GamesB,
		&winner, &status, &m.Verified, &m.StatsCalculated, &m.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	m.Stage = Stage(stage)
	m.Status = MatchStatus(status)
	m.TeamAID = teamA.String
	m.TeamBID = teamB.String
	m.WinnerID = winner.String
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &m, nil
}

func (s *store) InsertMatch(ctx context.Context, m *Match) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO league_matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Round, string(m.Stage), nullString(m.TeamAID), nullString(m.TeamBID), m.Score,
		m.SetsA, m.SetsB, m.GamesA, m.GamesB, nullString(m.WinnerID), string(m.Status),
		m.Verified, m.StatsCalculated, m.Notes, m.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert league match: %w", err)
	}
	return nil
}

func (s *store) UpdateMatch(ctx context.Context, m *Match) error {
	_, err := s.q.ExecContext(ctx, `UPDATE league_matches SET round = ?, stage = ?, team_a_id = ?, team_b_id = ?,
		score = ?, sets_a = ?, sets_b = ?, games_a = ?, games_b = ?, winner_id = ?, status = ?,
		verified = ?, stats_calculated = ?, notes = ? WHERE id = ?`,
		m.Round, string(m.Stage), nullString(m.TeamAID), nullString(m.TeamBID), m.Score,
		m.SetsA, m.SetsB, m.GamesA, m.GamesB, nullString(m.WinnerID), string(m.Status),
		m.Verified, m.StatsCalculated, m.Notes, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update league match %s: %w", m.ID, err)
	}
	return nil
}

func (s *store) getMatchWhere(ctx context.Context, where string, arg any) (*Match, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM league_matches WHERE `+where, arg)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fail(ladder.ErrNotFound, "league match not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load league match: %w", err)
	}
	return m, nil
}

func (s *store) GetMatch(ctx context.Context, id string) (*Match, error) {
	return s.getMatchWhere(ctx, "id = ?", id)
}

func (s *store) GetMatchByStage(ctx context.Context, stage Stage) (*Match, error) {
	return s.getMatchWhere(ctx, "stage = ?", string(stage))
}

func (s *store) listMatches(ctx context.Context, query string, args ...any) ([]*Match, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list league matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *store) ListRoundMatches(ctx context.Context, round int, statuses ...MatchStatus) ([]*Match, error) {
	query := `SELECT ` + matchColumns + ` FROM league_matches WHERE stage = '' AND round = ?`
	args := []any{round}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY created_at ASC, rowid ASC`
	return s.listMatches(ctx, query, args...)
}

func (s *store) ListPlayoffMatches(ctx context.Context) ([]*Match, error) {
	return s.listMatches(ctx, `SELECT `+matchColumns+` FROM league_matches WHERE stage != '' ORDER BY stage ASC`)
}

func (s *store) DeleteDrafts(ctx context.Context, round int) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM league_matches WHERE round = ? AND status = ?`, round, string(StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to delete drafts of round %d: %w", round, err)
	}
	return nil
}

func (s *store) PlayedPairs(ctx context.Context, beforeRound int) (PlayedSet, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT team_a_id, team_b_id FROM league_matches
		WHERE stage = '' AND round < ? AND status IN (?, ?) AND team_a_id IS NOT NULL AND team_b_id IS NOT NULL`,
		beforeRound, string(StatusScheduled), string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to load played pairs: %w", err)
	}
	defer rows.Close()

	played := make(PlayedSet)
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("failed to scan played pair: %w", err)
		}
		played.Add(a, b)
	}
	return played, rows.Err()
}
