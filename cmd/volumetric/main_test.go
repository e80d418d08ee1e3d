package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/bridge/claude"
	"github.com/youssefsiam38/volumetric/catalog"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newLogger(zap.New(core))

	logger.Debug("resolving", "template", "Timeline")
	logger.Info("panel shown", "session", "s1", "bytes", 42)
	logger.Warn("dropped")
	logger.Error("delivery failed", "error", "boom")

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
	}
	fields := entries[1].ContextMap()
	if fields["session"] != "s1" || fields["bytes"] != int64(42) {
		t.Errorf("fields = %v", fields)
	}
}

func TestTemplatesCmd_List(t *testing.T) {
	out, err := run(t, "", "templates")
	if err != nil {
		t.Fatalf("templates error = %v", err)
	}
	for _, key := range []string{catalog.KeyPricingCards, catalog.KeyTimeline, catalog.KeyOnboardingFlow} {
		if !strings.Contains(out, key) {
			t.Errorf("listing missing %s:\n%s", key, out)
		}
	}
}

func TestTemplatesCmd_JSON(t *testing.T) {
	out, err := run(t, "", "templates", "--json")
	if err != nil {
		t.Fatalf("templates --json error = %v", err)
	}
	var infos []volumetric.TemplateInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(infos) != len(catalog.Descriptors()) {
		t.Errorf("got %d templates, want %d", len(infos), len(catalog.Descriptors()))
	}
}

func TestTemplatesCmd_Key(t *testing.T) {
	out, err := run(t, "", "templates", catalog.KeyPricingCards)
	if err != nil {
		t.Fatalf("templates KEY error = %v", err)
	}
	var info volumetric.TemplateInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info.Key != catalog.KeyPricingCards || info.Schema["type"] != "object" {
		t.Errorf("info = %+v", info)
	}

	if _, err := run(t, "", "templates", "NoSuchTemplate"); !volumetric.IsNotFound(err) {
		t.Errorf("unknown key error = %v, want not found", err)
	}
}

func TestRenderCmd(t *testing.T) {
	props := writeFile(t, "props.json", `{"title":"Plans for teams"}`)

	out, err := run(t, "", "render", catalog.KeyPricingCards, "--props", props)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, `data-template="PricingCards"`) || !strings.Contains(out, "Plans for teams") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderCmd_Stdin(t *testing.T) {
	out, err := run(t, `{"headline":"From stdin"}`, "render", catalog.KeyHeroSection, "-p", "-")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "From stdin") {
		t.Errorf("props from stdin not rendered:\n%s", out)
	}
}

func TestRenderCmd_Fallback(t *testing.T) {
	out, err := run(t, "", "render", "NoSuchTemplate")
	if err == nil {
		t.Fatal("rendering an unknown key should fail")
	}
	if !strings.Contains(out, `data-fallback-kind="unknown_template"`) {
		t.Errorf("fallback panel not printed:\n%s", out)
	}

	if _, err := run(t, "", "render", catalog.KeyTimeline, "--props", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing props file should fail")
	}
}

func TestSettings_FileAndEnv(t *testing.T) {
	path := writeFile(t, "volumetric.yaml", `
addr: ":9090"
base_path: /ui
session:
  idle_timeout: 5m
bridge:
  kind: redis
  redis_addr: redis:6379
`)
	t.Setenv("VOLUMETRIC_BRIDGE_KIND", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("VOLUMETRIC_DISPATCH_QUEUE_SIZE", "128")

	a := &app{v: viper.New(), cfgFile: path}
	if err := a.initConfig(); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	s, err := loadSettings(a.v)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	type view struct {
		Addr, BasePath, Kind, RedisAddr, APIKey string
		Idle, Sweep                             time.Duration
		QueueSize                               int
	}
	got := view{s.Addr, s.BasePath, s.Bridge.Kind, s.Bridge.RedisAddr, s.Claude.APIKey, s.Session.IdleTimeout, s.Session.SweepInterval, s.Dispatch.QueueSize}
	want := view{":9090", "/ui", bridgeClaude, "redis:6379", "sk-test", 5 * time.Minute, time.Minute, 128}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_MissingExplicitFile(t *testing.T) {
	a := &app{v: viper.New(), cfgFile: filepath.Join(t.TempDir(), "nope.yaml")}
	if err := a.initConfig(); err == nil {
		t.Error("an explicit config file that does not exist should fail")
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name string
		edit func(s *settings)
	}{
		{"unknown bridge", func(s *settings) { s.Bridge.Kind = "kafka" }},
		{"zero metric interval", func(s *settings) { s.Otel.Endpoint = "collector:4317"; s.Otel.MetricInterval = 0 }},
		{"postgres without url", func(s *settings) { s.Bridge.Kind = bridgePostgres }},
		{"postgres-sql without url", func(s *settings) { s.Bridge.Kind = bridgePostgresSQL }},
		{"redis without addr", func(s *settings) { s.Bridge.Kind = bridgeRedis; s.Bridge.RedisAddr = "" }},
		{"claude without key", func(s *settings) { s.Bridge.Kind = bridgeClaude }},
		{"zero idle timeout", func(s *settings) { s.Session.IdleTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			s, err := loadSettings(v)
			if err != nil {
				t.Fatalf("defaults should be valid: %v", err)
			}
			tt.edit(s)
			if err := s.validate(); err == nil {
				t.Error("validate() = nil, want error")
			}
		})
	}
}

func TestOpenAgentLink(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	s, err := loadSettings(v)
	if err != nil {
		t.Fatal(err)
	}
	reg := volumetric.NewRegistry()
	nav := volumetric.NavigatorFunc(func(context.Context, *volumetric.NavigationRequest) error { return nil })

	link, err := openAgentLink(context.Background(), s, reg, nav, nopLogger{})
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if link.Bridge != nil || link.Inbound != nil {
		t.Error("bridge kind none should not connect anything")
	}
	link.Forget("s1")
	link.Close()

	s.Bridge.Kind = bridgeClaude
	s.Claude.APIKey = "sk-test"
	link, err = openAgentLink(context.Background(), s, reg, nav, nopLogger{})
	if err != nil {
		t.Fatalf("claude: %v", err)
	}
	if _, ok := link.Bridge.(*claude.Agent); !ok {
		t.Errorf("claude bridge = %T", link.Bridge)
	}
	if link.Inbound != nil {
		t.Error("the claude agent navigates in-process and needs no listener")
	}
}

func TestOpenTracker(t *testing.T) {
	ctx := context.Background()

	tr, closeFn, err := openTracker(ctx, onboardingSettings{})
	if err != nil {
		t.Fatal(err)
	}
	closeFn()
	if tr == nil {
		t.Fatal("memory tracker is nil")
	}

	tr, closeFn, err = openTracker(ctx, onboardingSettings{Database: filepath.Join(t.TempDir(), "flags.db")})
	if err != nil {
		t.Fatalf("sqlite tracker: %v", err)
	}
	defer closeFn()
	if _, err := tr.Apply(ctx, "s1:welcome", 1, 0, "next"); err != nil {
		t.Fatal(err)
	}
	if done, err := tr.Completed(ctx, "s1:welcome"); err != nil || !done {
		t.Errorf("Completed() = %v, %v", done, err)
	}
}

func TestSetupTelemetry_Disabled(t *testing.T) {
	shutdown, err := setupTelemetry(context.Background(), otelSettings{}, nopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() = %v", err)
	}
}
