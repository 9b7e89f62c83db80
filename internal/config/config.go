package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/quizflow/quizflow/internal/domain"
	"github.com/quizflow/quizflow/internal/review"
)

// envPrefix namespaces environment overrides. Nesting uses a double
// underscore so key names keep their single underscores: QUIZFLOW_DB,
// QUIZFLOW_ADDR, QUIZFLOW_REVIEW__TRACK_STREAK.
const envPrefix = "QUIZFLOW_"

// Config is the resolved application configuration. Precedence, lowest to
// highest: built-in defaults, YAML file, environment, command-line flags.
type Config struct {
	DB   string `koanf:"db"`
	Addr string `koanf:"addr"`

	// ColorMode is the settings default used until the user saves their own.
	ColorMode string `koanf:"color_mode"`

	CSV struct {
		// DoubleQuote enables "" as an escaped literal quote inside quoted
		// CSV fields. Off by default to match the historical parser.
		DoubleQuote bool `koanf:"double_quote"`
	} `koanf:"csv"`

	Review struct {
		Intervals   []int `koanf:"intervals"`
		TrackStreak bool  `koanf:"track_streak"`

		LowMin    float64 `koanf:"low_min"`
		LowMax    float64 `koanf:"low_max"`
		MediumMin float64 `koanf:"medium_min"`
		MediumMax float64 `koanf:"medium_max"`
	} `koanf:"review"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{
		DB:        "quizflow.db",
		Addr:      ":8080",
		ColorMode: domain.ColorModeBW,
	}
	cfg.Review.Intervals = review.DefaultIntervals
	policy := review.DefaultPolicy()
	cfg.Review.LowMin = policy.Low.Min
	cfg.Review.LowMax = policy.Low.Max
	cfg.Review.MediumMin = policy.Medium.Min
	cfg.Review.MediumMax = policy.Medium.Max
	return cfg
}

// Load resolves the configuration. path may be empty or point at a YAML
// file; a missing default file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// DefaultSettings converts the config into the settings defaults applied
// until the user saves their own. An unrecognized color mode falls back to
// black-and-white.
func (c Config) DefaultSettings() domain.Settings {
	if c.ColorMode == domain.ColorModeColor {
		return domain.Settings{ColorMode: domain.ColorModeColor}
	}
	return domain.DefaultSettings()
}

// ReviewPolicy converts the config into a scheduler policy.
func (c Config) ReviewPolicy() review.Policy {
	return review.Policy{
		Intervals:   c.Review.Intervals,
		Low:         review.AccuracyBand{Min: c.Review.LowMin, Max: c.Review.LowMax},
		Medium:      review.AccuracyBand{Min: c.Review.MediumMin, Max: c.Review.MediumMax},
		TrackStreak: c.Review.TrackStreak,
	}
}
