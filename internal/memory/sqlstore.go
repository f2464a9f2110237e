package memory

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"coscientist/internal/logging"
)

// SQLStore persists session envelopes in SQLite, one row per session.
type SQLStore struct {
	db        *sql.DB
	sessionID string
}

// OpenSQL opens or creates a SQLite DB at path, runs migrations, and binds
// the store to sessionID. Creates the parent directory if it does not exist.
func OpenSQL(path, sessionID string) (*SQLStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLStore{db: db, sessionID: sessionID}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

func (s *SQLStore) SessionID() string { return s.sessionID }

// Load reads the session's envelope row. A missing row or a row whose JSON
// cannot be decoded reinitializes to a fresh default envelope.
func (s *SQLStore) Load() (*Envelope, error) {
	var doc string
	err := s.db.QueryRow(
		"SELECT envelope FROM sessions WHERE session_id = ?", s.sessionID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return s.reinit()
	}
	if err != nil {
		logging.New("memory").Warn("session row unreadable, reinitializing",
			"session", s.sessionID, "error", err)
		return s.reinit()
	}
	var env Envelope
	if err := json.Unmarshal([]byte(doc), &env); err != nil {
		logging.New("memory").Warn("session envelope corrupt, reinitializing",
			"session", s.sessionID, "error", err)
		return s.reinit()
	}
	env.normalize()
	return &env, nil
}

func (s *SQLStore) reinit() (*Envelope, error) {
	env := NewEnvelope(s.sessionID)
	if err := s.Save(env); err != nil {
		return nil, fmt.Errorf("reinitialize session %s: %w", s.sessionID, err)
	}
	return env, nil
}

// Save upserts the session's envelope row.
func (s *SQLStore) Save(env *Envelope) error {
	env.UpdatedAt = nowUTC()
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO sessions(session_id, envelope, created_at, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET envelope = excluded.envelope, updated_at = excluded.updated_at`,
		s.sessionID, string(data), env.CreatedAt, env.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save envelope: %w", err)
	}
	return nil
}

// Sessions lists all session ids present in the DB, newest first.
func (s *SQLStore) Sessions() ([]string, error) {
	rows, err := s.db.Query("SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) Close() error { return s.db.Close() }
