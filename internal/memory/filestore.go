package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coscientist/internal/logging"
)

// FileStore keeps one human-inspectable JSON document per session under a
// directory: <dir>/<session>.json.
type FileStore struct {
	dir       string
	sessionID string
}

// OpenFile creates the session directory if needed and returns a FileStore
// bound to sessionID.
func OpenFile(dir, sessionID string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir, sessionID: sessionID}, nil
}

func (s *FileStore) SessionID() string { return s.sessionID }

func (s *FileStore) path() string {
	return filepath.Join(s.dir, s.sessionID+".json")
}

// Load reads the session document. A missing, unreadable, or corrupt document
// reinitializes to a fresh default envelope rather than returning an error.
func (s *FileStore) Load() (*Envelope, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.New("memory").Warn("session document unreadable, reinitializing",
				"session", s.sessionID, "error", err)
		}
		return s.reinit()
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logging.New("memory").Warn("session document corrupt, reinitializing",
			"session", s.sessionID, "error", err)
		return s.reinit()
	}
	env.normalize()
	return &env, nil
}

func (s *FileStore) reinit() (*Envelope, error) {
	env := NewEnvelope(s.sessionID)
	if err := s.Save(env); err != nil {
		return nil, fmt.Errorf("reinitialize session %s: %w", s.sessionID, err)
	}
	return env, nil
}

// Save writes the envelope atomically (temp file + rename).
func (s *FileStore) Save(env *Envelope) error {
	env.UpdatedAt = nowUTC()
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("rename envelope: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// ListFileSessions returns the session ids with a document under dir.
func ListFileSessions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
