package pgnotify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQLNotifier sends notifications through database/sql.
type SQLNotifier struct {
	db *sql.DB
}

// NewSQLNotifier creates a notifier on db. Any PostgreSQL database/sql
// driver works; lib/pq is the one linked in.
func NewSQLNotifier(db *sql.DB) *SQLNotifier {
	return &SQLNotifier{db: db}
}

// Notify implements Notifier.
func (n *SQLNotifier) Notify(ctx context.Context, channel, payload string) error {
	_, err := n.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", channel, payload)
	return err
}

// PQListener receives notifications through lib/pq's dedicated listener
// connection.
type PQListener struct {
	listener *pq.Listener
}

// pingInterval is how often an idle PQListener checks its connection.
const pingInterval = 90 * time.Second

// NewPQListener opens a listener connection to dsn. lib/pq reconnects on
// its own between minReconnect and maxReconnect.
func NewPQListener(dsn string, minReconnect, maxReconnect time.Duration, onEvent func(ev pq.ListenerEventType, err error)) *PQListener {
	return &PQListener{listener: pq.NewListener(dsn, minReconnect, maxReconnect, onEvent)}
}

// Listen implements Listener.
func (l *PQListener) Listen(ctx context.Context, channel string) error {
	if err := l.listener.Listen(channel); err != nil && err != pq.ErrChannelAlreadyOpen {
		return err
	}
	return nil
}

// WaitForNotification implements Listener. A nil notification from lib/pq
// means the connection was re-established and notifications may have been
// lost; it is reported as an error so the receiver logs it and listens
// again.
func (l *PQListener) WaitForNotification(ctx context.Context) (*Notification, error) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n, ok := <-l.listener.Notify:
			if !ok {
				return nil, errListenerClosed
			}
			if n == nil {
				return nil, fmt.Errorf("pgnotify: listener reconnected, notifications may have been lost")
			}
			return &Notification{Channel: n.Channel, Payload: n.Extra}, nil
		case <-ticker.C:
			if err := l.listener.Ping(); err != nil {
				return nil, fmt.Errorf("pgnotify: ping listener: %w", err)
			}
		}
	}
}

// Close implements Listener.
func (l *PQListener) Close(ctx context.Context) error {
	return l.listener.Close()
}

var (
	_ Notifier = (*SQLNotifier)(nil)
	_ Listener = (*PQListener)(nil)
)
