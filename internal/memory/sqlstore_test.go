package memory

import (
	"path/filepath"
	"testing"
)

func TestSQLStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSQL(path, "proj-1")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer s.Close()

	env, err := s.Load()
	if err != nil {
		t.Fatalf("Load fresh: %v", err)
	}
	if env.SessionID != "proj-1" || env.Iterations != 0 {
		t.Fatalf("fresh envelope: %+v", env)
	}

	env.ResearchGoal = "carbon capture catalysts"
	env.Iterations = 2
	if err := s.Save(env); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ResearchGoal != "carbon capture catalysts" || got.Iterations != 2 {
		t.Fatalf("reloaded envelope: %+v", got)
	}
}

func TestSQLStore_ResumeAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSQL(path, "proj-1")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	env, _ := s.Load()
	env.Hypotheses = append(env.Hypotheses, Hypothesis{ID: "h1", Title: "A"})
	if err := s.Save(env); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := OpenSQL(path, "proj-1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Load()
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if len(got.Hypotheses) != 1 || got.Hypotheses[0].ID != "h1" {
		t.Fatalf("resumed envelope: %+v", got)
	}
}

func TestSQLStore_CorruptEnvelopeReinitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSQL(path, "proj-1")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer s.Close()
	env, _ := s.Load()
	env.Iterations = 7
	if err := s.Save(env); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := s.db.Exec("UPDATE sessions SET envelope = '{broken' WHERE session_id = ?", "proj-1"); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load corrupt: %v", err)
	}
	if got.Iterations != 0 {
		t.Fatalf("expected fresh envelope, got iterations=%d", got.Iterations)
	}
}

func TestSQLStore_Sessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	for _, id := range []string{"a", "b"} {
		s, err := OpenSQL(path, id)
		if err != nil {
			t.Fatalf("OpenSQL %s: %v", id, err)
		}
		if _, err := s.Load(); err != nil {
			t.Fatalf("Load %s: %v", id, err)
		}
		s.Close()
	}

	s, err := OpenSQL(path, "a")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer s.Close()
	ids, err := s.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %v", ids)
	}
}
