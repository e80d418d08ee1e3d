package pgnotify

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/youssefsiam38/volumetric"
)

// Errors returned by the receiver.
var (
	// ErrAlreadyStarted is returned when Start() is called on a running receiver.
	ErrAlreadyStarted = errors.New("receiver already started")

	// ErrNotStarted is returned when Stop() is called on a receiver that hasn't started.
	ErrNotStarted = errors.New("receiver not started")
)

// ReceiverConfig holds configuration for the receiver.
type ReceiverConfig struct {
	// Channel to listen on. Default: ChannelNavigation
	Channel string

	// ReconnectDelay is how long to wait before reconnecting after a disconnect.
	// Default: 5 seconds
	ReconnectDelay time.Duration

	// Logger for structured logging. If nil, logging is disabled.
	Logger volumetric.Logger

	// OnReconnect is called when the listener reconnects.
	OnReconnect func()
}

func (c *ReceiverConfig) applyDefaults() {
	if c.Channel == "" {
		c.Channel = ChannelNavigation
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// Receiver turns notifications into navigation requests.
type Receiver struct {
	getListener func(ctx context.Context) (Listener, error)
	navigator   volumetric.Navigator
	config      ReceiverConfig

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc

	received atomic.Uint64
	rejected atomic.Uint64
}

// NewReceiver creates a receiver. getListener opens a fresh listener for
// each (re)connection.
func NewReceiver(getListener func(ctx context.Context) (Listener, error), nav volumetric.Navigator, cfg *ReceiverConfig) *Receiver {
	c := ReceiverConfig{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()
	return &Receiver{
		getListener: getListener,
		navigator:   nav,
		config:      c,
	}
}

// Start begins listening in the background.
func (r *Receiver) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.run(ctx)
	return nil
}

// Stop stops listening and waits for the loop to exit.
func (r *Receiver) Stop(ctx context.Context) error {
	if !r.started.Load() {
		return ErrNotStarted
	}
	r.cancel()
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.started.Store(false)
	return nil
}

// IsRunning returns true if the receiver is running.
func (r *Receiver) IsRunning() bool {
	return r.started.Load()
}

// Counts returns how many requests were received and how many of those
// were rejected.
func (r *Receiver) Counts() (received, rejected uint64) {
	return r.received.Load(), r.rejected.Load()
}

// run is the main loop: listen until an error, wait, reconnect.
func (r *Receiver) run(ctx context.Context) {
	defer close(r.done)

	for {
		err := r.listenLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		r.config.Logger.Warn("navigation listener disconnected", "channel", r.config.Channel, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.config.ReconnectDelay):
			if r.config.OnReconnect != nil {
				r.config.OnReconnect()
			}
		}
	}
}

// listenLoop opens a listener and processes notifications until an error
// occurs.
func (r *Receiver) listenLoop(ctx context.Context) error {
	listener, err := r.getListener(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = listener.Close(closeCtx)
	}()

	if err := listener.Listen(ctx, r.config.Channel); err != nil {
		return err
	}
	r.config.Logger.Info("listening for navigation requests", "channel", r.config.Channel)

	for {
		n, err := listener.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n.Channel != r.config.Channel {
			continue
		}
		r.handle(ctx, n.Payload)
	}
}

// handle decodes and forwards one request. Bad payloads are logged and
// skipped; they never stop the loop.
func (r *Receiver) handle(ctx context.Context, payload string) {
	r.received.Add(1)

	req, err := volumetric.DecodeNavigationRequest(strings.NewReader(payload))
	if err != nil {
		r.rejected.Add(1)
		r.config.Logger.Warn("discarding malformed navigation request", "error", err)
		return
	}
	if err := r.navigator.Navigate(ctx, req); err != nil {
		r.rejected.Add(1)
		r.config.Logger.Warn("navigation failed",
			"session_id", req.SessionID,
			"template", req.TemplateKey,
			"error", err,
		)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
