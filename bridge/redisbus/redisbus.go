// Package redisbus connects the host to an agent over Redis pub/sub.
//
// Bridge publishes each action phrase as JSON on volumetric:actions.
// Subscriber listens on volumetric:navigation and hands decoded navigation
// requests to a volumetric.Navigator. go-redis re-subscribes on its own
// after a dropped connection; messages published while disconnected are
// lost, as with any pub/sub delivery.
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/youssefsiam38/volumetric"
)

// Channel names.
const (
	ChannelActions    = "volumetric:actions"
	ChannelNavigation = "volumetric:navigation"
)

// Errors returned by the subscriber.
var (
	ErrAlreadyStarted = errors.New("subscriber already started")
	ErrNotStarted     = errors.New("subscriber not started")
)

// Publisher is the part of a go-redis client the bridge needs.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Bridge publishes action phrases.
type Bridge struct {
	client  Publisher
	channel string
}

// NewBridge creates a bridge publishing on ChannelActions. An empty channel
// selects the default.
func NewBridge(client Publisher, channel string) *Bridge {
	if channel == "" {
		channel = ChannelActions
	}
	return &Bridge{client: client, channel: channel}
}

// Notify implements volumetric.Bridge. A phrase nobody is subscribed to is
// still a successful publish.
func (b *Bridge) Notify(ctx context.Context, phrase volumetric.ActionPhrase) error {
	payload, err := json.Marshal(phrase)
	if err != nil {
		return fmt.Errorf("redisbus: encode phrase: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %w", volumetric.ErrBridgeUnavailable, err)
	}
	return nil
}

// SubscriberConfig holds configuration for the subscriber.
type SubscriberConfig struct {
	// Channel to subscribe to. Default: ChannelNavigation
	Channel string

	// Logger for structured logging. If nil, logging is disabled.
	Logger volumetric.Logger
}

// Subscriber turns pub/sub messages into navigation requests.
type Subscriber struct {
	client    redis.UniversalClient
	navigator volumetric.Navigator
	config    SubscriberConfig

	started atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	received atomic.Uint64
	rejected atomic.Uint64
}

// NewSubscriber creates a subscriber.
func NewSubscriber(client redis.UniversalClient, nav volumetric.Navigator, cfg *SubscriberConfig) *Subscriber {
	c := SubscriberConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.Channel == "" {
		c.Channel = ChannelNavigation
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	return &Subscriber{client: client, navigator: nav, config: c}
}

// Start subscribes and waits for Redis to confirm the subscription before
// consuming in the background.
func (s *Subscriber) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ps := s.client.Subscribe(ctx, s.config.Channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		s.started.Store(false)
		return fmt.Errorf("redisbus: subscribe %s: %w", s.config.Channel, err)
	}
	s.config.Logger.Info("listening for navigation requests", "channel", s.config.Channel)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		defer ps.Close()
		s.consume(runCtx, ps.Channel())
	}()
	return nil
}

// Stop unsubscribes and waits for the consumer to exit.
func (s *Subscriber) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.started.Store(false)
	return nil
}

// IsRunning returns true if the subscriber is consuming.
func (s *Subscriber) IsRunning() bool {
	return s.started.Load()
}

// Counts returns how many requests were received and how many of those
// were rejected.
func (s *Subscriber) Counts() (received, rejected uint64) {
	return s.received.Load(), s.rejected.Load()
}

// consume handles messages until ctx ends or msgs is closed.
func (s *Subscriber) consume(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

// handle decodes and forwards one request; bad payloads are logged and
// skipped.
func (s *Subscriber) handle(ctx context.Context, payload string) {
	s.received.Add(1)

	req, err := volumetric.DecodeNavigationRequest(strings.NewReader(payload))
	if err != nil {
		s.rejected.Add(1)
		s.config.Logger.Warn("discarding malformed navigation request", "error", err)
		return
	}
	if err := s.navigator.Navigate(ctx, req); err != nil {
		s.rejected.Add(1)
		s.config.Logger.Warn("navigation failed",
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

var _ volumetric.Bridge = (*Bridge)(nil)
