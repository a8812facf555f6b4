package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/pkg/logger"
)

// Defaults applied to zero Config fields.
const (
	defaultWorkers      = 4
	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 20 * time.Second

	directoryPermission = 0o750
	reportPermission    = 0o600
)

// Run probes the server and returns the per-movement results. A failed
// movement is recorded in its Result; only an unreachable server or an
// empty catalog fail the run.
func Run(ctx context.Context, config *Config) ([]Result, *Stats, error) {
	applyDefaults(config)
	log := logger.Current().Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting artmap probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("movements", config.Movements),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := NewClient(config.BaseURL, config.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, nil, fmt.Errorf("service health check failed: %w", err)
	}

	catalog, err := client.Movements(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("movement listing failed: %w", err)
	}
	movements := catalog.Movements
	if config.Movements > 0 && config.Movements < len(movements) {
		movements = movements[:config.Movements]
	}
	if len(movements) == 0 {
		return nil, nil, errors.New("catalog is empty")
	}

	results := make([]Result, len(movements))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i, m := range movements {
		g.Go(func() error {
			r := probeMovement(gctx, client, config, string(m.ID))
			r.Label = m.Label
			results[i] = r
			if config.Verbose {
				log.Info(gctx, "movement probed",
					logger.String("movement", r.Label),
					logger.Int("markers", r.Markers),
					logger.Bool("cached", r.Cached),
					logger.String("panel", r.PanelState),
					logger.String("error", r.Error))
			}
			mu.Lock()
			stats.Add(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if config.OutputFile != "" {
		if err := saveReport(config.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	displayFinalStats(ctx, log, stats)
	return results, stats, nil
}

func applyDefaults(c *Config) {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = defaultPollTimeout
	}
}

// probeMovement walks one page through refresh, click and summary wait.
func probeMovement(ctx context.Context, client *Client, config *Config, movement string) Result {
	r := Result{Movement: movement}
	id, err := client.CreateSession(ctx)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	defer func() { _ = client.CloseSession(context.WithoutCancel(ctx), id) }()

	start := time.Now()
	refreshed, err := client.Refresh(ctx, id, movement)
	r.RefreshTime = time.Since(start)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Markers = refreshed.Markers
	r.Cached = refreshed.Cached

	layer, err := client.Markers(ctx, id)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if len(layer.Features) == 0 {
		return r
	}
	marker, _ := layer.Features[0].ID.(string)
	if marker == "" {
		marker = layer.Features[0].PropertyMustString("marker", "")
	}
	r.Clicked = marker

	view, err := client.Click(ctx, id, marker)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	view, err = waitSummary(ctx, client, config, id, view)
	if err != nil {
		r.Error = err.Error()
	}
	r.PanelState = view.State.String()
	if view.Summary != nil {
		r.Summary = view.Summary.Text
	}
	return r
}

func waitSummary(ctx context.Context, client *Client, config *Config, id string, view panel.View) (panel.View, error) {
	deadline := time.NewTimer(config.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for view.Loading() {
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-deadline.C:
			return view, fmt.Errorf("summary still loading after %s", config.PollTimeout)
		case <-ticker.C:
		}
		next, err := client.Panel(ctx, id)
		if err != nil {
			return view, err
		}
		view = next
	}
	return view, nil
}

// saveReport writes the results as indented JSON.
func saveReport(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(b, '\n'), reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("movementsProbed", stats.MovementsProbed),
		logger.Int("refreshesOK", stats.RefreshesOK),
		logger.Int("refreshesFailed", stats.RefreshesFailed),
		logger.Int("cachedRefreshes", stats.CachedRefreshes),
		logger.Int("markersDrawn", stats.MarkersDrawn),
		logger.Int("summariesReady", stats.SummariesReady),
		logger.Int("summariesFailed", stats.SummariesFailed),
		logger.Duration("duration", stats.Duration))
}
