package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kabile/matchnight/internal/adapters/http/api"
	"github.com/kabile/matchnight/internal/adapters/http/ws"
	"github.com/kabile/matchnight/internal/adapters/matchapi"
	"github.com/kabile/matchnight/internal/adapters/statfeed"
	"github.com/kabile/matchnight/internal/adapters/store"
	"github.com/kabile/matchnight/internal/app"
	"github.com/kabile/matchnight/internal/config"
	"github.com/kabile/matchnight/pkg/logger"
	"github.com/kabile/matchnight/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the system metrics updater covers what the dashboards need.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	feed := statfeed.New(
		statfeed.WithTableURL(statfeed.Season, cfg.SeasonStatsURL),
		statfeed.WithTableURL(statfeed.Last10, cfg.Last10StatsURL),
		statfeed.WithTableURL(statfeed.Night, cfg.NightStatsURL),
	)
	static := statfeed.NewStatic(feed, cfg.KabileURL, cfg.MapPoolURL)
	st := store.NewMemoryStore(store.WithSubscriberBuffer(cfg.StoreBufferSize))
	defer func() { _ = st.Close() }()

	opts := []app.Option{
		app.WithLogger(log),
		app.WithStore(st),
		app.WithFeed(feed),
		app.WithStaticFeeds(static),
		app.WithQuietPeriod(time.Duration(cfg.CompareQuietMS) * time.Millisecond),
		app.WithMaxPlayersPerTeam(cfg.MaxPlayersPerTeam),
	}
	if cfg.MatchAPIURL != "" {
		opts = append(opts, app.WithMatchClient(matchapi.New(cfg.MatchAPIURL)))
	}

	var hub *ws.Hub
	var svc *app.Service
	if cfg.EnableWS {
		hub = ws.NewHub()
		defer hub.Close()
		opts = append(opts, app.WithChangeListener(func() {
			hub.Broadcast(map[string]any{
				"comparison": svc.Comparison(),
				"stats":      svc.GetStats(),
			})
		}))
	}
	svc = app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)
	mux.Handle("/metrics", metrics.Handler())
	if hub != nil {
		mux.HandleFunc("/ws", hub.HandleWS)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
