package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "codstats.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.API != def.API || cfg.Analysis != def.Analysis || cfg.Cache.Key != DefaultCacheKey {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	p := writeFile(t, `
api:
  base_url: http://stats.local:9000
  limit: 50
analysis:
  session_gap: 90m
log:
  format: json
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://stats.local:9000" || cfg.API.Limit != 50 {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Analysis.SessionGap != 90*time.Minute {
		t.Errorf("session gap = %v", cfg.Analysis.SessionGap)
	}
	if cfg.Analysis.MinSessionSize != 3 {
		t.Errorf("min session size = %d, want default", cfg.Analysis.MinSessionSize)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, "api:\n  limit: 50\n")
	t.Setenv("CODSTATS_API_LIMIT", "75")
	t.Setenv("CODSTATS_CACHE_KEY", "other")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Limit != 75 {
		t.Errorf("limit = %d, want 75", cfg.API.Limit)
	}
	if cfg.Cache.Key != "other" {
		t.Errorf("cache key = %q", cfg.Cache.Key)
	}
}

func TestLoad_Invalid(t *testing.T) {
	p := writeFile(t, "log:\n  level: loud\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"CODSTATS_API_BASE_URL":              "api.base_url",
		"CODSTATS_ANALYSIS_MIN_SESSION_SIZE": "analysis.min_session_size",
		"CODSTATS_LOG":                       "",
		PathEnvVar:                           "",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
