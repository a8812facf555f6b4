package panel

import (
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithResolver sets the image resolver used for the panel image.
func WithResolver(r *imageurl.Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithErrorText sets how a failed enrichment is worded for the user.
func WithErrorText(fn func(error) string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.errorText = fn
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
