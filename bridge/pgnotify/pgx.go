package pgnotify

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxNotifier sends notifications through a pgx pool.
type PgxNotifier struct {
	pool *pgxpool.Pool
}

// NewPgxNotifier creates a notifier on pool.
func NewPgxNotifier(pool *pgxpool.Pool) *PgxNotifier {
	return &PgxNotifier{pool: pool}
}

// Notify implements Notifier.
func (n *PgxNotifier) Notify(ctx context.Context, channel, payload string) error {
	_, err := n.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload)
	return err
}

// PgxListener listens on a connection acquired from a pgx pool.
type PgxListener struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	conn   *pgxpool.Conn
	closed bool
}

// NewPgxListener creates a listener. The connection is acquired by the
// first Listen call and held until Close.
func NewPgxListener(pool *pgxpool.Pool) *PgxListener {
	return &PgxListener{pool: pool}
}

// Listen implements Listener.
func (l *PgxListener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errListenerClosed
	}
	if l.conn == nil {
		conn, err := l.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		l.conn = conn
	}
	_, err := l.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	return err
}

// WaitForNotification implements Listener.
func (l *PgxListener) WaitForNotification(ctx context.Context) (*Notification, error) {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return nil, errListenerClosed
	}

	n, err := conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}
	return &Notification{Channel: n.Channel, Payload: n.Payload}, nil
}

// Close implements Listener. The connection is closed rather than returned
// to the pool so it does not stay subscribed.
func (l *PgxListener) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.conn == nil {
		return nil
	}
	err := l.conn.Conn().Close(ctx)
	l.conn.Release()
	l.conn = nil
	return err
}

var errListenerClosed = errors.New("pgnotify: listener closed")

var (
	_ Notifier = (*PgxNotifier)(nil)
	_ Listener = (*PgxListener)(nil)
)
