package repository

import "github.com/okian/artmap/pkg/logger"

// Option applies a configuration option to the MemoryCache.
type Option func(*MemoryCache)

// WithQueue sets the queue prefetch jobs are dispatched to.
func WithQueue(q Enqueuer) Option {
	return func(c *MemoryCache) {
		if q != nil {
			c.queue = q
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(c *MemoryCache) {
		if l != nil {
			c.logger = l
		}
	}
}
