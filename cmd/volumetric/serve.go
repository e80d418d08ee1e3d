package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/asset"
	"github.com/youssefsiam38/volumetric/catalog"
	"github.com/youssefsiam38/volumetric/onboarding"
	"github.com/youssefsiam38/volumetric/session"
	"github.com/youssefsiam38/volumetric/ui"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the UI and connect the agent bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(a.v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s, a.logger)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("base-path", "", "URL prefix the UI is mounted under, e.g. /ui")
	flags.String("bridge", bridgeNone, "agent bridge: none|postgres|postgres-sql|redis|claude")
	flags.Bool("read-only", false, "disable actions, navigation and session creation")
	_ = a.v.BindPFlag("addr", flags.Lookup("addr"))
	_ = a.v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = a.v.BindPFlag("bridge.kind", flags.Lookup("bridge"))
	_ = a.v.BindPFlag("read_only", flags.Lookup("read-only"))
	return cmd
}

// serve runs the server until ctx is done, then shuts down in order:
// sessions (ending SSE streams), the HTTP server, the inbound listener and
// finally the dispatcher, which drains queued phrases.
func serve(ctx context.Context, s *settings, logger volumetric.Logger) error {
	basePath := strings.TrimSuffix(s.BasePath, "/")

	shutdownTelemetry, err := setupTelemetry(ctx, s.Otel, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	reg := volumetric.NewRegistry()
	if err := catalog.Register(reg); err != nil {
		return fmt.Errorf("register catalog: %w", err)
	}
	host, err := volumetric.NewHost(reg, s.coreConfig(logger))
	if err != nil {
		return err
	}

	assets, err := asset.NewRegistry(&asset.Config{
		Manifest: s.Assets.Manifest,
		BaseURL:  basePath + asset.DefaultBaseURL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	host.SetAssets(assets)

	tracker, closeTracker, err := openTracker(ctx, s.Onboarding)
	if err != nil {
		return err
	}
	defer closeTracker()

	// link is assigned before the sweeper starts, so OnEvict never sees it nil
	var link *agentLink
	sessions := session.NewManager(host, &session.Config{
		BasePath:    basePath,
		HistorySize: s.Session.HistorySize,
		Assets:      assets,
		Logger:      logger,
		OnEvict: func(id string) {
			tracker.ForgetSession(id)
			link.Forget(id)
		},
	})

	link, err = openAgentLink(ctx, s, reg, sessions, logger)
	if err != nil {
		return err
	}
	defer link.Close()

	dispatcher, err := volumetric.NewDispatcher(s.coreConfig(logger))
	if err != nil {
		return err
	}
	if err := dispatcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		if err := dispatcher.Stop(sctx); err != nil {
			logger.Warn("dispatcher did not drain", "error", err)
		}
	}()
	if link.Bridge != nil {
		dispatcher.Attach(link.Bridge)
	}

	meter := otel.Meter(meterName)
	for _, register := range []func(metric.Meter) (metric.Registration, error){
		dispatcher.RegisterMetrics,
		sessions.RegisterMetrics,
	} {
		mreg, err := register(meter)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		defer func() { _ = mreg.Unregister() }()
	}

	if link.Inbound != nil {
		if err := link.Inbound.Start(ctx); err != nil {
			return fmt.Errorf("start %s listener: %w", s.Bridge.Kind, err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
			defer cancel()
			_ = link.Inbound.Stop(sctx)
		}()
	}

	handler := ui.Handler(ui.Deps{
		Host:       host,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Assets:     assets.Handler(),
	}, &ui.Config{
		BasePath:    basePath,
		Title:       s.Title,
		ReadOnly:    s.ReadOnly,
		Logger:      logger,
		KeepAlive:   s.UI.KeepAlive,
		ActionRate:  s.UI.ActionRate,
		ActionBurst: s.UI.ActionBurst,
	})
	mux := http.NewServeMux()
	if basePath == "" {
		mux.Handle("/", handler)
	} else {
		mux.Handle(basePath+"/", http.StripPrefix(basePath, handler))
	}
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.RunSweeper(gctx, s.Session.SweepInterval, s.Session.IdleTimeout)
		return nil
	})
	if s.Assets.Manifest != "" && s.Assets.Watch {
		g.Go(func() error {
			if err := assets.Watch(gctx, asset.DefaultDebounce); err != nil {
				logger.Warn("asset manifest watcher stopped", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("volumetric listening", "addr", s.Addr, "base_path", basePath, "bridge", s.Bridge.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sessions.Close()
		sctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// openTracker returns an onboarding tracker backed by SQLite when a
// database is configured, and by memory otherwise.
func openTracker(ctx context.Context, s onboardingSettings) (*onboarding.Tracker, func(), error) {
	if s.Database == "" {
		return onboarding.NewTracker(nil), func() {}, nil
	}
	store, err := onboarding.OpenSQLiteStore(ctx, s.Database)
	if err != nil {
		return nil, nil, err
	}
	return onboarding.NewTracker(store), func() { _ = store.Close() }, nil
}
