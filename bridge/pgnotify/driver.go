package pgnotify

import "context"

// Notification channel names.
const (
	// ChannelActionPhrase carries outbound action phrases.
	// Payload is the JSON-encoded volumetric.ActionPhrase.
	ChannelActionPhrase = "volumetric_action_phrase"

	// ChannelNavigation carries inbound navigation requests.
	// Payload is the JSON-encoded volumetric.NavigationRequest.
	ChannelNavigation = "volumetric_navigation"
)

// maxPayloadBytes is PostgreSQL's NOTIFY payload limit (8000 bytes) minus
// headroom.
const maxPayloadBytes = 7900

// Notification is a received NOTIFY.
type Notification struct {
	Channel string
	Payload string
}

// Notifier sends NOTIFY notifications. NOTIFY is a regular SQL command, so
// any connection can send.
type Notifier interface {
	Notify(ctx context.Context, channel, payload string) error
}

// Listener receives notifications over a dedicated connection.
type Listener interface {
	// Listen starts listening on channel.
	Listen(ctx context.Context, channel string) error

	// WaitForNotification blocks until a notification arrives, the
	// connection is lost or ctx is done.
	WaitForNotification(ctx context.Context) (*Notification, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}
