// Package store handles SQLite persistence of training history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuicards/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			deck_id INTEGER NOT NULL,
			deck_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			cards_total INTEGER NOT NULL,
			cards_studied INTEGER NOT NULL,
			again INTEGER NOT NULL,
			good INTEGER NOT NULL,
			easy INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			aborted INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_answers (
			session_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			card_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			correct INTEGER NOT NULL,
			rating TEXT NOT NULL,
			PRIMARY KEY (session_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_answers_card ON session_answers(card_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished or aborted session and its answers.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, answers []model.AnswerRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, deck_id, deck_name, started_at, ended_at, cards_total, cards_studied, again, good, easy, correct, incorrect, aborted, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID,
		rec.DeckID,
		rec.DeckName,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.CardsTotal,
		rec.CardsStudied,
		rec.Again,
		rec.Good,
		rec.Easy,
		correct,
		len(answers)-correct,
		boolInt(rec.Aborted),
		rec.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(answers) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_answers (session_id, position, card_id, kind, correct, rating)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, a := range answers {
			if _, err = stmt.ExecContext(ctx, id, i, a.CardID, a.Kind.String(), boolInt(a.Correct), string(a.Rating)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakCards aggregates answers per card over the most recent sessions of
// a deck. A zero deckID covers every deck.
func (s *Store) GetWeakCards(ctx context.Context, window int, deckID int64) ([]model.CardAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = 0 OR deck_id = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT a.card_id, SUM(a.correct) AS correct, SUM(1 - a.correct) AS incorrect,
		SUM(CASE WHEN a.rating = 'again' THEN 1 ELSE 0 END) AS again
	FROM session_answers a
	JOIN recent_sessions r ON r.id = a.session_id
	GROUP BY a.card_id
	ORDER BY a.card_id`

	rows, err := s.db.QueryContext(ctx, query, deckID, deckID, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CardAggregate
	for rows.Next() {
		var agg model.CardAggregate
		if err := rows.Scan(&agg.CardID, &agg.Correct, &agg.Incorrect, &agg.Again); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DeckID != 0 {
		clauses = append(clauses, "deck_id = ?")
		args = append(args, cfg.DeckID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, cards_studied, correct, incorrect, aborted, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		var aborted int
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.CardsStudied, &agg.Correct, &agg.Incorrect, &aborted, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Aborted = aborted != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListKindAggregatesForSessions aggregates answers per exercise kind across sessions.
func (s *Store) ListKindAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.KindAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT kind, SUM(correct) AS correct, SUM(1 - correct) AS incorrect
		FROM session_answers
		WHERE session_id IN (%s)
		GROUP BY kind
		ORDER BY kind`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KindAggregate
	for rows.Next() {
		var agg model.KindAggregate
		var kind string
		if err := rows.Scan(&kind, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		k, err := model.ParseExerciseKind(kind)
		if err != nil {
			return nil, err
		}
		agg.Kind = k
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
