package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/artmap/internal/adapters/http/api"
	"github.com/okian/artmap/internal/adapters/http/site"
	"github.com/okian/artmap/internal/adapters/http/swagger"
	"github.com/okian/artmap/internal/adapters/sparql"
	"github.com/okian/artmap/internal/adapters/wikipedia"
	app "github.com/okian/artmap/internal/app"
	"github.com/okian/artmap/internal/config"
	"github.com/okian/artmap/internal/domain/catalog"
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/internal/domain/query"
	"github.com/okian/artmap/internal/domain/types"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(ctx, "failed to load config", logger.Error(err))
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal(ctx, "failed to load movement catalog", logger.Error(err))
	}

	svc := app.New(buildOptions(cfg, cat, log)...)
	if err := svc.Start(ctx); err != nil {
		log.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, mapConfig(cfg)).Register(ctx, mux)
	site.Register(ctx, mux)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// loadCatalog reads catalog_file when set, else the embedded catalog, and
// applies the default_movement override.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFile(cfg.CatalogFile)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if cfg.DefaultMovement != "" {
		id := model.NormalizeMovementID(cfg.DefaultMovement)
		if !cat.Has(id) {
			return nil, fmt.Errorf("%w: default_movement %s is not in the catalog", catalog.ErrInvalidCatalog, id)
		}
		cat.Default = id
	}
	return cat, nil
}

// buildOptions wires the outbound clients from cfg.
func buildOptions(cfg *config.Config, cat *catalog.Catalog, log logger.Logger) []app.Option {
	hc := &http.Client{Timeout: cfg.HTTPTimeout()}

	builder := query.NewBuilder(
		query.WithLimit(cfg.ResultLimit),
		query.WithLanguage(cfg.Language),
		query.WithLogger(log.Named("query")),
	)
	client := sparql.NewClient(builder,
		sparql.WithEndpoint(cfg.SPARQLEndpoint),
		sparql.WithHTTPClient(hc),
		sparql.WithUserAgent(cfg.UserAgent),
		sparql.WithLogger(log.Named("sparql")),
	)
	summaries := wikipedia.NewFetcher(
		wikipedia.WithAPI(cfg.WikipediaAPI),
		wikipedia.WithHTTPClient(hc),
		wikipedia.WithUserAgent(cfg.UserAgent),
		wikipedia.WithLogger(log.Named("wikipedia")),
	)
	resolver := imageurl.NewResolver(
		imageurl.WithCommonsPrefix(cfg.CommonsPrefix),
		imageurl.WithPlaceholder(cfg.PlaceholderImageURL),
	)

	return []app.Option{
		app.WithLogger(log),
		app.WithCatalog(cat),
		app.WithFetcher(client),
		app.WithSummaryFetcher(summaries),
		app.WithSummaryErrorText(wikipedia.UserMessage),
		app.WithResolver(resolver),
		app.WithWorkerCount(cfg.PrefetchWorkers),
		app.WithQueueSize(cfg.PrefetchQueueSize),
		app.WithSessionIdle(cfg.SessionIdle()),
	}
}

func mapConfig(cfg *config.Config) types.MapConfig {
	return types.MapConfig{
		CenterLat:       cfg.MapCenterLat,
		CenterLon:       cfg.MapCenterLon,
		Zoom:            cfg.MapZoom,
		MinZoom:         cfg.MapMinZoom,
		TileURL:         cfg.TileURL,
		TileAttribution: cfg.TileAttribution,
		IconURL:         cfg.IconURL,
		IconRetinaURL:   cfg.IconRetinaURL,
		ShadowURL:       cfg.ShadowURL,
		Prompt:          locale.PanelPrompt,
		SelectMovement:  locale.SelectMovement,
	}
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if cached, ok := stats["cachedMovements"].(int); ok {
		metrics.UpdateCacheEntries(cached)
	}
	if sessions, ok := stats["sessions"].(int); ok {
		metrics.UpdateActiveSessions(sessions)
	}
}
