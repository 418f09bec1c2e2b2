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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if OLYBARS_CONFIG is set
//  3. env (prefix OLYBARS_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	base := New()

	k := koanf.New(".")

	if path := os.Getenv("OLYBARS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: OLYBARS_ADDR, OLYBARS_GEOFENCE_RADIUS_M, ...
	// Map env keys like OLYBARS_COMPLIANCE_CAP -> compliance_cap (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("OLYBARS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "olybars_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.GeofenceRadiusM <= 0:
		return nil, fmt.Errorf("%w: geofence_radius_m must be positive", ErrInvalidConfig)
	case cfg.ComplianceCap < 1:
		return nil, fmt.Errorf("%w: compliance_cap must be at least 1", ErrInvalidConfig)
	case cfg.HalfLifeMin <= 0:
		return nil, fmt.Errorf("%w: half_life_min must be positive", ErrInvalidConfig)
	case cfg.BuzzingThreshold <= cfg.LivelyThreshold:
		return nil, fmt.Errorf("%w: buzzing_threshold must exceed lively_threshold", ErrInvalidConfig)
	case cfg.RotationBucketMS <= 0:
		return nil, fmt.Errorf("%w: rotation_bucket_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
