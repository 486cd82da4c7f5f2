// Package store provides SQLite-backed persistence for trend histories, so
// rising streaks survive process restarts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// Store wraps a SQLite database holding trend checkpoints.
type Store struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/flood-risk-engine/trend.db.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "flood-risk-engine", "trend.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS trend_points (
		location_id TEXT    NOT NULL,
		position    INTEGER NOT NULL,
		score       INTEGER NOT NULL,
		observed_at INTEGER NOT NULL,
		PRIMARY KEY (location_id, position)
	)`)
	return err
}

// SaveHistories replaces all checkpointed histories in one transaction.
func (s *Store) SaveHistories(histories map[string][]domain.TrendPoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin checkpoint: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM trend_points`); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO trend_points (location_id, position, score, observed_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare checkpoint insert: %w", err)
	}
	defer stmt.Close()

	for id, points := range histories {
		for i, p := range points {
			if _, err := stmt.Exec(id, i, p.Score, p.Time.UTC().Unix()); err != nil {
				return fmt.Errorf("insert trend point: %w", err)
			}
		}
	}
	return tx.Commit()
}

// LoadHistories restores every checkpointed history, oldest point first.
func (s *Store) LoadHistories() (map[string][]domain.TrendPoint, error) {
	rows, err := s.db.Query(`SELECT location_id, score, observed_at FROM trend_points ORDER BY location_id, position`)
	if err != nil {
		return nil, fmt.Errorf("load trend points: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]domain.TrendPoint)
	for rows.Next() {
		var id string
		var score int
		var ts int64
		if err := rows.Scan(&id, &score, &ts); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		histories[id] = append(histories[id], domain.TrendPoint{
			Score: score,
			Time:  time.Unix(ts, 0).UTC(),
		})
	}
	return histories, rows.Err()
}
