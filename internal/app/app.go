package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"mech-arena/server/internal/config"
	servernet "mech-arena/server/internal/net"
	"mech-arena/server/internal/net/ws"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/telemetry"
	"mech-arena/server/internal/world"
	"mech-arena/server/logging"
)

// Options carries process-level inputs to Run.
type Options struct {
	// ConfigPath overrides CONFIG_PATH.
	ConfigPath string
	Logger     *logrus.Logger
	// Stdout receives console and json sink output. Defaults to os.Stdout.
	Stdout io.Writer
	// Lookup replaces os.LookupEnv.
	Lookup func(string) (string, bool)
	// Ready is called with the bound listener address once serving.
	Ready func(addr string)
}

// Run loads configuration, generates the arena and serves the debug feed
// until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	base := opts.Logger
	if base == nil {
		base = telemetry.NewLogrus(telemetry.SettingsFromEnv())
	}
	logger := telemetry.Component(base, "app")

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	path := opts.ConfigPath
	if path == "" {
		path, _ = lookup("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = applyEnv(cfg, lookup, logger)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	metrics := &logging.Metrics{}
	routerCfg := cfg.LoggingRouterConfig()
	namedSinks, closeSinks, err := buildSinks(routerCfg, stdout)
	if err != nil {
		return fmt.Errorf("failed to construct logging sinks: %w", err)
	}
	defer func() {
		if cerr := closeSinks(); cerr != nil {
			logger.Printf("failed to close sink output: %v", cerr)
		}
	}()

	router, err := logging.NewRouter(routerCfg, namedSinks,
		logging.WithMetrics(metrics),
		logging.WithFallback(telemetry.Component(base, "logging")),
	)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	layout := world.Generate(cfg.World)
	logger.Printf("arena generated: seed=%q structures=%d terrain=%d", cfg.World.Seed, layout.Structures().Len(), len(layout.Tiles()))

	driver := sim.NewDriver(layout, sim.Config{Spatial: cfg.Spatial, Visibility: cfg.Visibility}, sim.Deps{
		Logger:    telemetry.Component(base, "sim"),
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: logging.WithFields(router, map[string]any{"source": "sim"}),
	})
	buffer := sim.NewSnapshotBuffer()
	demo := NewDemo(cfg.Seed, cfg.Walkers)
	loop := sim.NewLoop(driver, demo, buffer, sim.LoopConfig{TickRate: cfg.TickRate, CatchupMaxTicks: 3}, sim.LoopHooks{})

	feed := ws.NewHandler(buffer, ws.HandlerConfig{
		Logger:          telemetry.Component(base, "feed"),
		Publisher:       logging.WithFields(router, map[string]any{"source": "feed"}),
		DefaultInterval: cfg.FeedIntervalTicks,
	})
	handler := servernet.NewHTTPHandler(buffer, servernet.HTTPHandlerConfig{
		Logger:        telemetry.Component(base, "http"),
		Metrics:       metrics,
		TickRate:      cfg.TickRate,
		Feed:          http.HandlerFunc(feed.Handle),
		Observability: cfg.Observability,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(runCtx)
	}()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		cancel()
		<-loopDone
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Printf("server listening on %s (tick rate %d, walkers %d)", listener.Addr(), cfg.TickRate, cfg.Walkers)
	if opts.Ready != nil {
		opts.Ready(listener.Addr().String())
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	select {
	case <-runCtx.Done():
	case err = <-serveErr:
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Printf("server shutdown: %v", serr)
	}
	<-loopDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
