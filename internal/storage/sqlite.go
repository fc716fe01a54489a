//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dinoevo/internal/config"
	"dinoevo/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveParams(ctx context.Context, cfg config.Config) error {
	payload, err := EncodeParams(cfg)
	if err != nil {
		return err
	}
	return s.putDocument(ctx, paramsFileName, payload)
}

func (s *SQLiteStore) GetParams(ctx context.Context) (config.Config, bool, error) {
	payload, ok, err := s.getDocument(ctx, paramsFileName)
	if err != nil || !ok {
		return config.Config{}, ok, err
	}
	cfg, err := DecodeParams(payload)
	if err != nil {
		return config.Config{}, false, fmt.Errorf("decode params: %w", err)
	}
	return cfg, true, nil
}

func (s *SQLiteStore) SaveRunInfo(ctx context.Context, info model.RunInfo) error {
	payload, err := EncodeRunInfo(info)
	if err != nil {
		return err
	}
	return s.putDocument(ctx, runInfoFileName, payload)
}

func (s *SQLiteStore) GetRunInfo(ctx context.Context) (model.RunInfo, bool, error) {
	payload, ok, err := s.getDocument(ctx, runInfoFileName)
	if err != nil || !ok {
		return model.RunInfo{}, ok, err
	}
	info, err := DecodeRunInfo(payload)
	if err != nil {
		return model.RunInfo{}, false, fmt.Errorf("decode run info: %w", err)
	}
	return info, true, nil
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, generation int, checkpoint model.Checkpoint) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO checkpoints (generation, score, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(generation) DO UPDATE SET
			score = excluded.score,
			payload = excluded.payload
	`, generation, int64(checkpoint.Score), payload)
	return err
}

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, generation int) (model.Checkpoint, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Checkpoint{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM checkpoints WHERE generation = ?`, generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkpoint{}, false, nil
		}
		return model.Checkpoint{}, false, err
	}

	checkpoint, err := DecodeCheckpoint(payload)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %d: %w", generation, err)
	}
	return checkpoint, true, nil
}

func (s *SQLiteStore) ListCheckpoints(ctx context.Context) ([]int, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT generation FROM checkpoints ORDER BY generation`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var generation int
		if err := rows.Scan(&generation); err != nil {
			return nil, err
		}
		out = append(out, generation)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveGenerationDiagnostics(ctx context.Context, diagnostics []model.GenerationDiagnostics) error {
	payload, err := EncodeGenerationDiagnostics(diagnostics)
	if err != nil {
		return err
	}
	return s.putDocument(ctx, diagnosticsFileName, payload)
}

func (s *SQLiteStore) GetGenerationDiagnostics(ctx context.Context) ([]model.GenerationDiagnostics, bool, error) {
	payload, ok, err := s.getDocument(ctx, diagnosticsFileName)
	if err != nil || !ok {
		return nil, ok, err
	}
	diagnostics, err := DecodeGenerationDiagnostics(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diagnostics, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) putDocument(ctx context.Context, name string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (name, payload)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload
	`, name, payload)
	return err
}

func (s *SQLiteStore) getDocument(ctx context.Context, name string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS checkpoints (
			generation INTEGER PRIMARY KEY,
			score INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
