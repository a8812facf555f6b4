package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/artmap/internal/probe"
	"github.com/okian/artmap/pkg/logger"
)

const (
	defaultWorkers = 4
	defaultTimeout = 60 * time.Second
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		movements = flag.Int("movements", 0, "Movements to probe (0 = whole catalog)")
		workers   = flag.Int("workers", defaultWorkers, "Concurrent sessions")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll      = flag.Duration("poll", 500*time.Millisecond, "Panel poll interval")
		wait      = flag.Duration("wait", 20*time.Second, "Give up on a summary after this")
		output    = flag.String("output", "", "Write a JSON report to this file")
		verbose   = flag.Bool("verbose", false, "Log every movement")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, stats, err := probe.Run(ctx, &probe.Config{
		BaseURL:      *baseURL,
		Movements:    *movements,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *poll,
		PollTimeout:  *wait,
		OutputFile:   *output,
		Verbose:      *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		os.Exit(1)
	}
	if stats.RefreshesFailed > 0 {
		os.Exit(2)
	}
}
