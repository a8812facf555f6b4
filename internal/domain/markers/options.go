package markers

import (
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/pkg/logger"
)

// Option applies a configuration option to the Synchronizer.
type Option func(*Synchronizer)

// WithResolver sets the image resolver used for marker-context images.
func WithResolver(r *imageurl.Resolver) Option {
	return func(s *Synchronizer) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithPreloader sets where non-placeholder marker images are warmed.
func WithPreloader(p imageurl.Preloader) Option {
	return func(s *Synchronizer) {
		if p != nil {
			s.preloader = p
		}
	}
}

// WithLogger sets a custom logger for the synchronizer.
func WithLogger(l logger.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}
