package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/ui"
)

// Bridge kinds accepted by bridge.kind.
const (
	bridgeNone        = "none"
	bridgePostgres    = "postgres"
	bridgePostgresSQL = "postgres-sql"
	bridgeRedis       = "redis"
	bridgeClaude      = "claude"
)

var bridgeKinds = []string{bridgeNone, bridgePostgres, bridgePostgresSQL, bridgeRedis, bridgeClaude}

// settings is the decoded configuration. Keys are snake_case in YAML and
// VOLUMETRIC_SECTION_KEY in the environment.
type settings struct {
	Addr            string        `mapstructure:"addr"`
	BasePath        string        `mapstructure:"base_path"`
	Title           string        `mapstructure:"title"`
	ReadOnly        bool          `mapstructure:"read_only"`
	StrictProps     bool          `mapstructure:"strict_props"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Dispatch   dispatchSettings   `mapstructure:"dispatch"`
	Session    sessionSettings    `mapstructure:"session"`
	UI         uiSettings         `mapstructure:"ui"`
	Assets     assetSettings      `mapstructure:"assets"`
	Onboarding onboardingSettings `mapstructure:"onboarding"`
	Bridge     bridgeSettings     `mapstructure:"bridge"`
	Claude     claudeSettings     `mapstructure:"claude"`
	Otel       otelSettings       `mapstructure:"otel"`
}

type dispatchSettings struct {
	QueueSize       int           `mapstructure:"queue_size"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	MaxPhraseLength int           `mapstructure:"max_phrase_length"`
}

type sessionSettings struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	HistorySize   int           `mapstructure:"history_size"`
}

type uiSettings struct {
	KeepAlive   time.Duration `mapstructure:"keepalive"`
	ActionRate  float64       `mapstructure:"action_rate"`
	ActionBurst int           `mapstructure:"action_burst"`
}

type assetSettings struct {
	Manifest string `mapstructure:"manifest"`
	Watch    bool   `mapstructure:"watch"`
}

type onboardingSettings struct {
	// Database is a SQLite DSN; empty keeps flags in memory
	Database string `mapstructure:"database"`
}

type bridgeSettings struct {
	Kind              string        `mapstructure:"kind"`
	DatabaseURL       string        `mapstructure:"database_url"`
	RedisAddr         string        `mapstructure:"redis_addr"`
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`
	ActionsChannel    string        `mapstructure:"actions_channel"`
	NavigationChannel string        `mapstructure:"navigation_channel"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
}

type claudeSettings struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	MaxTokens    int64  `mapstructure:"max_tokens"`
	MaxTurns     int    `mapstructure:"max_turns"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

type otelSettings struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Insecure       bool          `mapstructure:"insecure"`
	ServiceName    string        `mapstructure:"service_name"`
	SampleRate     float64       `mapstructure:"sample_rate"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("base_path", "")
	v.SetDefault("title", ui.DefaultTitle)
	v.SetDefault("read_only", false)
	v.SetDefault("strict_props", false)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("dispatch.queue_size", volumetric.DefaultQueueSize)
	v.SetDefault("dispatch.delivery_timeout", volumetric.DefaultDeliveryTimeout)
	v.SetDefault("dispatch.max_phrase_length", volumetric.DefaultMaxPhraseLength)

	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("session.history_size", 20)

	v.SetDefault("ui.keepalive", ui.DefaultKeepAlive)
	v.SetDefault("ui.action_rate", ui.DefaultActionRate)
	v.SetDefault("ui.action_burst", ui.DefaultActionBurst)

	v.SetDefault("assets.manifest", "")
	v.SetDefault("assets.watch", true)

	v.SetDefault("onboarding.database", "")

	v.SetDefault("bridge.kind", bridgeNone)
	v.SetDefault("bridge.database_url", "")
	v.SetDefault("bridge.redis_addr", "localhost:6379")
	v.SetDefault("bridge.redis_password", "")
	v.SetDefault("bridge.redis_db", 0)
	v.SetDefault("bridge.actions_channel", "")
	v.SetDefault("bridge.navigation_channel", "")
	v.SetDefault("bridge.reconnect_delay", 5*time.Second)

	v.SetDefault("claude.api_key", "")
	v.SetDefault("claude.model", "")
	v.SetDefault("claude.max_tokens", 0)
	v.SetDefault("claude.max_turns", 0)
	v.SetDefault("claude.system_prompt", "")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", false)
	v.SetDefault("otel.service_name", "volumetric")
	v.SetDefault("otel.sample_rate", 1.0)
	v.SetDefault("otel.batch_timeout", 5*time.Second)
	v.SetDefault("otel.metric_interval", 15*time.Second)
}

func loadSettings(v *viper.Viper) (*settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *settings) validate() error {
	if !slices.Contains(bridgeKinds, s.Bridge.Kind) {
		return fmt.Errorf("bridge.kind must be one of %v, got %q", bridgeKinds, s.Bridge.Kind)
	}
	switch s.Bridge.Kind {
	case bridgePostgres, bridgePostgresSQL:
		if s.Bridge.DatabaseURL == "" {
			return fmt.Errorf("bridge.database_url is required for the %s bridge", s.Bridge.Kind)
		}
	case bridgeRedis:
		if s.Bridge.RedisAddr == "" {
			return fmt.Errorf("bridge.redis_addr is required for the redis bridge")
		}
	case bridgeClaude:
		if s.Claude.APIKey == "" {
			return fmt.Errorf("claude.api_key (or ANTHROPIC_API_KEY) is required for the claude bridge")
		}
	}
	if s.Session.IdleTimeout <= 0 || s.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.idle_timeout and session.sweep_interval must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if s.Otel.Endpoint != "" && s.Otel.MetricInterval <= 0 {
		return fmt.Errorf("otel.metric_interval must be positive")
	}
	return nil
}

// coreConfig maps the settings onto the Host and Dispatcher configuration.
func (s *settings) coreConfig(logger volumetric.Logger) *volumetric.Config {
	return &volumetric.Config{
		Logger:          logger,
		StrictProps:     s.StrictProps,
		QueueSize:       s.Dispatch.QueueSize,
		DeliveryTimeout: s.Dispatch.DeliveryTimeout,
		MaxPhraseLength: s.Dispatch.MaxPhraseLength,
	}
}
