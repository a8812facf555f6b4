// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/artmap/internal/adapters/sparql"
	"github.com/okian/artmap/internal/adapters/wikipedia"
	"github.com/okian/artmap/internal/domain/imageurl"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SPARQLEndpoint is the knowledge-graph query endpoint.
	SPARQLEndpoint string `koanf:"sparql_endpoint"`

	// WikipediaAPI is the encyclopedia API used for summaries.
	WikipediaAPI string `koanf:"wikipedia_api"`

	// Language selects the article edition and label languages.
	Language string `koanf:"language"`

	// ResultLimit caps the painters returned per movement.
	ResultLimit int `koanf:"result_limit"`

	// HTTPTimeoutMS bounds each upstream request; 0 relies on the transport.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// UserAgent identifies the service to upstream endpoints.
	UserAgent string `koanf:"user_agent"`

	// PrefetchWorkers and PrefetchQueueSize size the startup prefetch.
	PrefetchWorkers   int `koanf:"prefetch_workers"`
	PrefetchQueueSize int `koanf:"prefetch_queue_size"`

	// SessionIdleMinutes closes pages not seen for this long; 0 keeps them.
	SessionIdleMinutes int `koanf:"session_idle_minutes"`

	// PlaceholderImageURL and CommonsPrefix drive image resolution.
	PlaceholderImageURL string `koanf:"placeholder_image_url"`
	CommonsPrefix       string `koanf:"commons_prefix"`

	// Base map settings handed to the front end.
	MapCenterLat    float64 `koanf:"map_center_lat"`
	MapCenterLon    float64 `koanf:"map_center_lon"`
	MapZoom         int     `koanf:"map_zoom"`
	MapMinZoom      int     `koanf:"map_min_zoom"`
	TileURL         string  `koanf:"tile_url"`
	TileAttribution string  `koanf:"tile_attribution"`
	IconURL         string  `koanf:"icon_url"`
	IconRetinaURL   string  `koanf:"icon_retina_url"`
	ShadowURL       string  `koanf:"shadow_url"`

	// DefaultMovement overrides the catalog's pre-selected movement.
	DefaultMovement string `koanf:"default_movement"`

	// CatalogFile replaces the embedded movement catalog when set.
	CatalogFile string `koanf:"catalog_file"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		SPARQLEndpoint:      sparql.DefaultEndpoint,
		WikipediaAPI:        wikipedia.DefaultAPI,
		Language:            "es",
		ResultLimit:         100,
		HTTPTimeoutMS:       30_000,
		UserAgent:           sparql.DefaultUserAgent,
		PrefetchWorkers:     runtime.NumCPU(),
		PrefetchQueueSize:   64,
		SessionIdleMinutes:  60,
		PlaceholderImageURL: imageurl.DefaultPlaceholderURL,
		CommonsPrefix:       imageurl.DefaultCommonsPrefix,
		MapCenterLat:        45,
		MapCenterLon:        10,
		MapZoom:             4,
		MapMinZoom:          2,
		TileURL:             "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileAttribution:     `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		IconURL:             "https://unpkg.com/leaflet@1.9.4/dist/images/marker-icon.png",
		IconRetinaURL:       "https://unpkg.com/leaflet@1.9.4/dist/images/marker-icon-2x.png",
		ShadowURL:           "https://unpkg.com/leaflet@1.9.4/dist/images/marker-shadow.png",
	}
}

// HTTPTimeout returns the upstream request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// SessionIdle returns the idle limit of a session.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}
