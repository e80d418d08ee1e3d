// Package pgnotify connects the host to an agent through PostgreSQL
// LISTEN/NOTIFY.
//
// Outbound, Bridge implements volumetric.Bridge by sending each action
// phrase as a JSON payload on the volumetric_action_phrase channel.
// Inbound, Receiver listens on volumetric_navigation and hands decoded
// navigation requests to a volumetric.Navigator, reconnecting after
// connection loss.
//
// Two drivers are provided for each direction: pgx/v5 (PgxNotifier,
// PgxListener) and database/sql with lib/pq (SQLNotifier, PQListener).
package pgnotify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/youssefsiam38/volumetric"
)

// Bridge publishes action phrases with NOTIFY.
type Bridge struct {
	notifier Notifier
	channel  string
}

// NewBridge creates a bridge sending on ChannelActionPhrase. An empty
// channel selects the default.
func NewBridge(n Notifier, channel string) *Bridge {
	if channel == "" {
		channel = ChannelActionPhrase
	}
	return &Bridge{notifier: n, channel: channel}
}

// Notify implements volumetric.Bridge.
func (b *Bridge) Notify(ctx context.Context, phrase volumetric.ActionPhrase) error {
	payload, err := json.Marshal(phrase)
	if err != nil {
		return fmt.Errorf("pgnotify: encode phrase: %w", err)
	}
	if len(payload) > maxPayloadBytes {
		return fmt.Errorf("pgnotify: phrase payload is %d bytes, limit %d", len(payload), maxPayloadBytes)
	}
	if err := b.notifier.Notify(ctx, b.channel, string(payload)); err != nil {
		return fmt.Errorf("%w: %w", volumetric.ErrBridgeUnavailable, err)
	}
	return nil
}

var _ volumetric.Bridge = (*Bridge)(nil)
