package query

import "github.com/okian/artmap/pkg/logger"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLimit caps the number of painters returned per movement.
func WithLimit(limit int) Option {
	return func(b *Builder) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// WithLanguage sets the Wikipedia edition of the sampled article and the
// preferred label language.
func WithLanguage(lang string) Option {
	return func(b *Builder) {
		if lang != "" {
			b.language = lang
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}
