// Package testutil provides test utilities for volumetric
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/youssefsiam38/volumetric"
)

// TestDB wraps a PostgreSQL connection pool for testing
type TestDB struct {
	Pool *pgxpool.Pool
	URL  string
}

// NewTestDB creates a test database connection from DATABASE_URL env var.
// Skips the test if DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ping database: %v", err)
	}

	db := &TestDB{Pool: pool, URL: dbURL}
	t.Cleanup(db.Close)
	return db
}

// Close closes the database connection
func (db *TestDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// NewTestRedis connects to REDIS_ADDR. Skips the test if it is not set.
func NewTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("Failed to ping redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// RecordingBridge is a volumetric.Bridge that records phrases.
type RecordingBridge struct {
	mu      sync.Mutex
	phrases []volumetric.ActionPhrase
	Err     error
	notify  chan struct{}
}

// NewRecordingBridge creates an empty RecordingBridge.
func NewRecordingBridge() *RecordingBridge {
	return &RecordingBridge{notify: make(chan struct{}, 1024)}
}

// Notify implements volumetric.Bridge.
func (b *RecordingBridge) Notify(ctx context.Context, phrase volumetric.ActionPhrase) error {
	b.mu.Lock()
	b.phrases = append(b.phrases, phrase)
	err := b.Err
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
	return err
}

// Texts returns the text of every recorded phrase, in order.
func (b *RecordingBridge) Texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.phrases))
	for i, p := range b.phrases {
		out[i] = p.Text
	}
	return out
}

// Phrases returns the recorded phrases.
func (b *RecordingBridge) Phrases() []volumetric.ActionPhrase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]volumetric.ActionPhrase(nil), b.phrases...)
}

// WaitFor blocks until n phrases were recorded or the timeout passes.
func (b *RecordingBridge) WaitFor(t *testing.T, n int, timeout time.Duration) []string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if texts := b.Texts(); len(texts) >= n {
			return texts
		}
		select {
		case <-b.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d phrases, got %v", n, b.Texts())
			return nil
		}
	}
}

// RecordingNavigator is a volumetric.Navigator that records requests.
type RecordingNavigator struct {
	mu       sync.Mutex
	requests []*volumetric.NavigationRequest
	Err      error
	notify   chan struct{}
}

// NewRecordingNavigator creates an empty RecordingNavigator.
func NewRecordingNavigator() *RecordingNavigator {
	return &RecordingNavigator{notify: make(chan struct{}, 1024)}
}

// Navigate implements volumetric.Navigator.
func (n *RecordingNavigator) Navigate(ctx context.Context, req *volumetric.NavigationRequest) error {
	n.mu.Lock()
	n.requests = append(n.requests, req)
	err := n.Err
	n.mu.Unlock()
	select {
	case n.notify <- struct{}{}:
	default:
	}
	return err
}

// Requests returns the recorded requests.
func (n *RecordingNavigator) Requests() []*volumetric.NavigationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*volumetric.NavigationRequest(nil), n.requests...)
}

// WaitFor blocks until count requests were recorded or the timeout passes.
func (n *RecordingNavigator) WaitFor(t *testing.T, count int, timeout time.Duration) []*volumetric.NavigationRequest {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if reqs := n.Requests(); len(reqs) >= count {
			return reqs
		}
		select {
		case <-n.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d requests, got %d", count, len(n.Requests()))
			return nil
		}
	}
}
