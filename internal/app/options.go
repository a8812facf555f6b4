package service

import (
	"time"

	"github.com/okian/artmap/internal/adapters/repository"
	"github.com/okian/artmap/internal/domain/catalog"
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of prefetch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the prefetch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCatalog sets the movements offered and prefetched.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithFetcher sets the painters source.
func WithFetcher(f repository.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSummaryFetcher sets the article summary source of the detail panels.
func WithSummaryFetcher(f panel.SummaryFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.summaries = f
		}
	}
}

// WithSummaryErrorText sets how failed summary lookups are worded.
func WithSummaryErrorText(fn func(error) string) Option {
	return func(s *Service) {
		if fn != nil {
			s.summaryErrorText = fn
		}
	}
}

// WithResolver sets the image resolver shared by markers and panels.
func WithResolver(r *imageurl.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSessionIdle sets how long an untouched session is kept. Zero keeps
// sessions until they are closed.
func WithSessionIdle(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sessionIdle = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
