package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-football-metrics/internal/model"
)

// InsertMatches stores the catalog. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatches(matches []model.MatchDescriptor) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(match_id, home_team, away_team, match_date, stage, home_score, away_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.Exec(m.MatchID, m.HomeTeam, m.AwayTeam, m.MatchDate, m.Stage, m.HomeScore, m.AwayScore); err != nil {
			return fmt.Errorf("insert match %d: %w", m.MatchID, err)
		}
	}
	return tx.Commit()
}

// InsertEvents bulk-inserts normalized events in a transaction. Rows are
// numbered after any events already stored so source order is kept.
func (db *DB) InsertEvents(events []model.NormalizedEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var base int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM events").Scan(&base); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events(
			seq, match_id, player_id, player_name, team, event_type,
			x, y, end_x, end_y, shot_assist, xg, minute
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range events {
		e := &events[i]
		_, err = stmt.Exec(
			base+int64(i)+1, e.MatchID, nullable(e.PlayerID), e.PlayerName, e.Team, e.Type.String(),
			nullable(e.X), nullable(e.Y), nullable(e.EndX), nullable(e.EndY),
			boolInt(e.ShotAssist), nullable(e.XG), nullable(e.Minute),
		)
		if err != nil {
			return fmt.Errorf("insert event %d of match %d: %w", i, e.MatchID, err)
		}
	}
	return tx.Commit()
}

// InsertPer90 replaces the per-90 table with stats.
func (db *DB) InsertPer90(stats []model.PlayerPer90Stat) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM player_per90"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO player_per90(
			player_id, player_name, minutes_played, final_third_passes, shot_assists, xg,
			final_third_passes_per90, xg_per90
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err = stmt.Exec(
			s.PlayerID, s.PlayerName, s.MinutesPlayed, s.FinalThirdPasses, s.ShotAssists, s.XG,
			s.FinalThirdPassesPer90, s.XGPer90,
		)
		if err != nil {
			return fmt.Errorf("insert player_per90 for %d: %w", s.PlayerID, err)
		}
	}
	return tx.Commit()
}

// ListMatches returns the stored catalog in match id order.
func (db *DB) ListMatches() ([]model.MatchDescriptor, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, home_team, away_team, match_date, stage, home_score, away_score
		FROM matches ORDER BY match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchDescriptor
	for rows.Next() {
		var m model.MatchDescriptor
		if err := rows.Scan(&m.MatchID, &m.HomeTeam, &m.AwayTeam, &m.MatchDate, &m.Stage, &m.HomeScore, &m.AwayScore); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PassFilter selects passes for a pass map. A zero PlayerID matches every
// player.
type PassFilter struct {
	MatchID  int64
	PlayerID int64
	MinX     float64
}

// FinalThirdPasses returns open-play passes starting at x >= f.MinX with all
// four coordinates present, in source order.
func (db *DB) FinalThirdPasses(f PassFilter) ([]model.NormalizedEvent, error) {
	query := `
		SELECT match_id, player_id, player_name, team, event_type,
		       x, y, end_x, end_y, shot_assist, xg, minute
		FROM events
		WHERE match_id = ? AND event_type = 'Pass' AND x >= ?
		  AND x IS NOT NULL AND y IS NOT NULL AND end_x IS NOT NULL AND end_y IS NOT NULL`
	args := []any{f.MatchID, f.MinX}
	if f.PlayerID != 0 {
		query += " AND player_id = ?"
		args = append(args, f.PlayerID)
	}
	query += " ORDER BY seq"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.NormalizedEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PlayersInMatch returns every player with at least one event in the match,
// in order of first appearance.
func (db *DB) PlayersInMatch(matchID int64) ([]model.PlayerRef, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, player_name, team, MIN(seq) AS first_seq
		FROM events
		WHERE match_id = ? AND player_id IS NOT NULL
		GROUP BY player_id
		ORDER BY first_seq`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerRef
	for rows.Next() {
		var p model.PlayerRef
		var firstSeq int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &firstSeq); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPer90 returns the stored per-90 rows ordered by player id.
func (db *DB) GetPer90() ([]model.PlayerPer90Stat, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, player_name, minutes_played, final_third_passes, shot_assists, xg,
		       final_third_passes_per90, xg_per90
		FROM player_per90 ORDER BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerPer90Stat
	for rows.Next() {
		var s model.PlayerPer90Stat
		if err := rows.Scan(&s.PlayerID, &s.PlayerName, &s.MinutesPlayed, &s.FinalThirdPasses,
			&s.ShotAssists, &s.XG, &s.FinalThirdPassesPer90, &s.XGPer90); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary read query and returns column names plus rows
// rendered as strings. NULL renders as "NULL". On a frozen store, statements
// that write return an error.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch t := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(t)
			default:
				row[i] = fmt.Sprint(t)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (model.NormalizedEvent, error) {
	var (
		e                    model.NormalizedEvent
		evType               string
		playerID, minute     sql.NullInt64
		x, y, endX, endY, xg sql.NullFloat64
		shotAssist           int
	)
	if err := s.Scan(&e.MatchID, &playerID, &e.PlayerName, &e.Team, &evType,
		&x, &y, &endX, &endY, &shotAssist, &xg, &minute); err != nil {
		return e, err
	}
	e.Type = model.EventType(evType)
	e.ShotAssist = shotAssist != 0
	if playerID.Valid {
		e.PlayerID = &playerID.Int64
	}
	if minute.Valid {
		m := int(minute.Int64)
		e.Minute = &m
	}
	e.X = nullFloat(x)
	e.Y = nullFloat(y)
	e.EndX = nullFloat(endX)
	e.EndY = nullFloat(endY)
	e.XG = nullFloat(xg)
	return e, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// nullable maps a nil pointer to SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
