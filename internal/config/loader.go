package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names.
const (
	EnvPrefix     = "ARTMAP_"
	EnvConfigFile = "ARTMAP_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ARTMAP_CONFIG is set
//  3. env (prefix ARTMAP_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// ARTMAP_RESULT_LIMIT -> result_limit; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SPARQLEndpoint) == "":
		return fmt.Errorf("%w: sparql_endpoint must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.WikipediaAPI) == "":
		return fmt.Errorf("%w: wikipedia_api must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Language) == "":
		return fmt.Errorf("%w: language must not be empty", ErrInvalidConfig)
	case c.ResultLimit <= 0:
		return fmt.Errorf("%w: result_limit must be positive", ErrInvalidConfig)
	case c.HTTPTimeoutMS < 0:
		return fmt.Errorf("%w: http_timeout_ms must not be negative", ErrInvalidConfig)
	case c.PrefetchWorkers < 0:
		return fmt.Errorf("%w: prefetch_workers must not be negative", ErrInvalidConfig)
	case c.PrefetchQueueSize <= 0:
		return fmt.Errorf("%w: prefetch_queue_size must be positive", ErrInvalidConfig)
	case c.SessionIdleMinutes < 0:
		return fmt.Errorf("%w: session_idle_minutes must not be negative", ErrInvalidConfig)
	case c.MapCenterLat < -90 || c.MapCenterLat > 90:
		return fmt.Errorf("%w: map_center_lat out of range", ErrInvalidConfig)
	case c.MapCenterLon < -180 || c.MapCenterLon > 180:
		return fmt.Errorf("%w: map_center_lon out of range", ErrInvalidConfig)
	case c.MapMinZoom < 0 || c.MapZoom < c.MapMinZoom:
		return fmt.Errorf("%w: map_zoom must be at least map_min_zoom", ErrInvalidConfig)
	}
	return nil
}
