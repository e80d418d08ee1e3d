package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/bridge/claude"
	"github.com/youssefsiam38/volumetric/bridge/pgnotify"
	"github.com/youssefsiam38/volumetric/bridge/redisbus"
)

// inbound is a listener feeding navigation requests to the sessions.
type inbound interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// agentLink is the selected bridge with the resources it owns.
type agentLink struct {
	// Bridge receives action phrases; nil for bridge.kind=none
	Bridge volumetric.Bridge

	// Inbound delivers navigation requests from an external agent
	Inbound inbound

	// Forget drops per-session agent state on eviction
	Forget func(sessionID string)

	closers []func()
}

// Close releases connections in reverse order of opening.
func (l *agentLink) Close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		l.closers[i]()
	}
}

// openAgentLink connects the configured bridge. Inbound requests and the
// claude agent's tool calls are handed to nav.
func openAgentLink(ctx context.Context, s *settings, reg *volumetric.Registry, nav volumetric.Navigator, logger volumetric.Logger) (*agentLink, error) {
	link := &agentLink{Forget: func(string) {}}
	b := s.Bridge

	switch b.Kind {
	case bridgeNone:
		logger.Warn("no agent bridge configured; action phrases will be dropped")

	case bridgePostgres:
		pool, err := pgxpool.New(ctx, b.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		link.closers = append(link.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			link.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		link.Bridge = pgnotify.NewBridge(pgnotify.NewPgxNotifier(pool), b.ActionsChannel)
		link.Inbound = pgnotify.NewReceiver(func(ctx context.Context) (pgnotify.Listener, error) {
			return pgnotify.NewPgxListener(pool), nil
		}, nav, &pgnotify.ReceiverConfig{
			Channel:        b.NavigationChannel,
			ReconnectDelay: b.ReconnectDelay,
			Logger:         logger,
			OnReconnect:    func() { logger.Info("navigation listener reconnected") },
		})

	case bridgePostgresSQL:
		db, err := sql.Open("postgres", b.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		link.closers = append(link.closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			link.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		link.Bridge = pgnotify.NewBridge(pgnotify.NewSQLNotifier(db), b.ActionsChannel)
		link.Inbound = pgnotify.NewReceiver(func(ctx context.Context) (pgnotify.Listener, error) {
			return pgnotify.NewPQListener(b.DatabaseURL, time.Second, b.ReconnectDelay*6, func(ev pq.ListenerEventType, err error) {
				if err != nil {
					logger.Warn("pq listener event", "event", int(ev), "error", err)
				}
			}), nil
		}, nav, &pgnotify.ReceiverConfig{
			Channel:        b.NavigationChannel,
			ReconnectDelay: b.ReconnectDelay,
			Logger:         logger,
		})

	case bridgeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     b.RedisAddr,
			Password: b.RedisPassword,
			DB:       b.RedisDB,
		})
		link.closers = append(link.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			link.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		link.Bridge = redisbus.NewBridge(client, b.ActionsChannel)
		link.Inbound = redisbus.NewSubscriber(client, nav, &redisbus.SubscriberConfig{
			Channel: b.NavigationChannel,
			Logger:  logger,
		})

	case bridgeClaude:
		client := anthropic.NewClient(option.WithAPIKey(s.Claude.APIKey))
		agent := claude.NewAgent(&client.Messages, reg, nav, &claude.Config{
			Model:        s.Claude.Model,
			MaxTokens:    s.Claude.MaxTokens,
			MaxTurns:     s.Claude.MaxTurns,
			SystemPrompt: s.Claude.SystemPrompt,
			Logger:       logger,
		})
		link.Bridge = agent
		link.Forget = agent.Forget

	default:
		return nil, fmt.Errorf("unknown bridge kind %q", b.Kind)
	}

	return link, nil
}
