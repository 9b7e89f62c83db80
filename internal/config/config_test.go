package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/quizflow/quizflow/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB != "quizflow.db" || cfg.Addr != ":8080" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.CSV.DoubleQuote || cfg.Review.TrackStreak {
		t.Errorf("Expected historical quirks preserved by default: %+v", cfg)
	}
	if got := cfg.DefaultSettings(); got.ColorMode != domain.ColorModeBW {
		t.Errorf("Expected default color mode %q, but got %q", domain.ColorModeBW, got.ColorMode)
	}

	policy := cfg.ReviewPolicy()
	if got := policy.IntervalDays(0); got != 1 {
		t.Errorf("Expected default first interval 1 day, but got %d", got)
	}
	if policy.Low.Max != 0.5 || policy.Medium.Min != 0.5 {
		t.Errorf("Expected overlapping accuracy bands at 0.5: %+v", policy)
	}
}

func TestFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizflow.yaml")
	contents := "db: /tmp/other.db\nreview:\n  track_streak: true\n  intervals: [2, 5]\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB != "/tmp/other.db" {
		t.Errorf("Expected db override, but got %q", cfg.DB)
	}
	if !cfg.Review.TrackStreak {
		t.Errorf("Expected track_streak override")
	}
	policy := cfg.ReviewPolicy()
	if policy.IntervalDays(1) != 5 || policy.IntervalDays(9) != 5 {
		t.Errorf("Expected custom intervals to apply and cap, got %d", policy.IntervalDays(1))
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err != nil {
		t.Errorf("Load() with a missing file returned an unexpected error: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUIZFLOW_ADDR", ":9090")
	t.Setenv("QUIZFLOW_REVIEW__TRACK_STREAK", "true")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Expected env addr override, but got %q", cfg.Addr)
	}
	if !cfg.Review.TrackStreak {
		t.Errorf("Expected env track_streak override")
	}
}

func TestColorModeDefault(t *testing.T) {
	t.Setenv("QUIZFLOW_COLOR_MODE", "color")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if got := cfg.DefaultSettings(); got.ColorMode != domain.ColorModeColor {
		t.Errorf("Expected configured color mode default, but got %q", got.ColorMode)
	}

	// An unrecognized value falls back to black-and-white.
	bogus := Config{ColorMode: "sepia"}
	if got := bogus.DefaultSettings(); got.ColorMode != domain.ColorModeBW {
		t.Errorf("Expected fallback to %q for an unknown mode, but got %q", domain.ColorModeBW, got.ColorMode)
	}
}

func TestFlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "quizflow.db", "")
	flags.String("addr", ":8080", "")
	if err := flags.Parse([]string{"--db", "/tmp/flag.db"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB != "/tmp/flag.db" {
		t.Errorf("Expected flag db override, but got %q", cfg.DB)
	}
}
