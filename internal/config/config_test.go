package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("api key not bound from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Pipeline.QualityThreshold != 6.0 || cfg.Pipeline.InterestThreshold != 5.0 {
		t.Errorf("default thresholds wrong: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.MaxSourcesPerArticle != 5 || cfg.Pipeline.MaxConcurrent != 4 {
		t.Errorf("default limits wrong: %+v", cfg.Pipeline)
	}
	if cfg.Cache.TTL.Quality != "24h" || cfg.Cache.TTL.Interest != "12h" {
		t.Errorf("default cache TTLs wrong: %+v", cfg.Cache.TTL)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")

	if _, err := Load(""); err == nil {
		t.Error("expected error without an API key")
	} else if !strings.Contains(err.Error(), "API key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAlternateKeyEnvVars(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "fallback-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Gemini.APIKey != "fallback-key" {
		t.Errorf("alternate env var not bound, got %q", cfg.Gemini.APIKey)
	}
}

func TestTTLOrDefault(t *testing.T) {
	if got := TTLOrDefault("36h", time.Hour); got != 36*time.Hour {
		t.Errorf("valid duration ignored: %v", got)
	}
	if got := TTLOrDefault("", time.Hour); got != time.Hour {
		t.Errorf("empty value should fall back: %v", got)
	}
	if got := TTLOrDefault("soon", time.Hour); got != time.Hour {
		t.Errorf("invalid value should fall back: %v", got)
	}
}
