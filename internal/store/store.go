// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordcomb/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for run data.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			sources TEXT NOT NULL,
			pw_min INTEGER NOT NULL,
			pw_max INTEGER NOT NULL,
			threads INTEGER NOT NULL,
			words INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			bytes_out INTEGER NOT NULL,
			output TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS run_levels (
			run_id TEXT NOT NULL,
			words INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			PRIMARY KEY (run_id, words)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its per-level counts. An empty ID is
// replaced by a new UUID. It returns the stored ID.
func (s *Store) InsertRun(ctx context.Context, run model.RunStats, levels []model.LevelStats) (id string, err error) {
	id = run.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ended_at, sources, pw_min, pw_max, threads, words, generated, bytes_out, output, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		run.StartedAt.UTC().Format(timeLayout),
		run.EndedAt.UTC().Format(timeLayout),
		strings.Join(run.Sources, "\n"),
		run.PwMin,
		run.PwMax,
		run.Threads,
		run.Words,
		int64(run.Generated),
		run.BytesOut,
		run.Output,
		run.DurationMs,
		run.Error,
	)
	if err != nil {
		return "", err
	}

	if len(levels) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_levels (run_id, words, generated) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, lv := range levels {
			if lv.Generated == 0 {
				continue
			}
			if _, err = stmt.ExecContext(ctx, id, lv.Words, int64(lv.Generated)); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns runs ordered oldest first, limited to the last cfg.Last
// runs when it is positive.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunStats, error) {
	query := `SELECT id, started_at, ended_at, sources, pw_min, pw_max, threads, words, generated, bytes_out, output, duration_ms, error
		FROM runs ORDER BY ended_at DESC`
	args := []any{}
	if cfg.Last > 0 {
		query += ` LIMIT ?`
		args = append(args, cfg.Last)
	}
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

	var runs []model.RunStats
	for rows.Next() {
		var run model.RunStats
		var startedAt, endedAt, sources string
		var generated int64
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &sources, &run.PwMin, &run.PwMax, &run.Threads,
			&run.Words, &generated, &run.BytesOut, &run.Output, &run.DurationMs, &run.Error); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		if sources != "" {
			run.Sources = strings.Split(sources, "\n")
		}
		run.Generated = uint64(generated)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// ListLevels returns per-level counts keyed by run ID.
func (s *Store) ListLevels(ctx context.Context, runIDs []string) (map[string][]model.LevelStats, error) {
	if len(runIDs) == 0 {
		return map[string][]model.LevelStats{}, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT run_id, words, generated
		FROM run_levels
		WHERE run_id IN (%s)
		ORDER BY run_id, words`, strings.Join(placeholders, ","))
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

	result := map[string][]model.LevelStats{}
	for rows.Next() {
		var runID string
		var lv model.LevelStats
		var generated int64
		if err := rows.Scan(&runID, &lv.Words, &generated); err != nil {
			return nil, err
		}
		lv.Generated = uint64(generated)
		result[runID] = append(result[runID], lv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
