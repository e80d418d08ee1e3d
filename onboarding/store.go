package onboarding

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// FlagStore persists onboarding completion per subject. A subject is any
// stable identifier, typically a session id joined with a flow id.
type FlagStore interface {
	Completed(ctx context.Context, subject string) (bool, error)
	MarkCompleted(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

// Subject joins a session id and a flow id into a FlagStore subject.
func Subject(sessionID, flowID string) string {
	return sessionID + ":" + flowID
}

// MemoryStore is an in-process FlagStore.
type MemoryStore struct {
	mu   sync.RWMutex
	done map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{done: make(map[string]time.Time)}
}

func (m *MemoryStore) Completed(ctx context.Context, subject string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.done[subject]
	return ok, nil
}

func (m *MemoryStore) MarkCompleted(ctx context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.done[subject]; !ok {
		m.done[subject] = time.Now().UTC()
	}
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.done, subject)
	return nil
}

// SQLiteStore persists completion flags in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) a flag store at dsn.
// Tests may pass ":memory:" to avoid touching disk.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open onboarding db: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps
	// ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS onboarding_flags (
	subject TEXT PRIMARY KEY,
	completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	if err != nil {
		return fmt.Errorf("create onboarding_flags table: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Completed(ctx context.Context, subject string) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrStoreClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM onboarding_flags WHERE subject = ?`, subject).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query onboarding flag: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) MarkCompleted(ctx context.Context, subject string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO onboarding_flags (subject) VALUES (?) ON CONFLICT(subject) DO NOTHING`, subject)
	if err != nil {
		return fmt.Errorf("persist onboarding flag: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, subject string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM onboarding_flags WHERE subject = ?`, subject); err != nil {
		return fmt.Errorf("reset onboarding flag: %w", err)
	}
	return nil
}
