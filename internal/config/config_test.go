package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	for _, e := range []string{
		"LOANLENS_ENGINE_MARKET_RATES_FILE", "LOANLENS_API_PORT", "LOANLENS_API_CORS_ORIGINS",
	} {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Engine defaults
	if cfg.Engine.MarketRatesFile != "" {
		t.Errorf("Engine.MarketRatesFile: got %q, want empty", cfg.Engine.MarketRatesFile)
	}
	if cfg.Engine.DefaultCurrency != "USD" {
		t.Errorf("Engine.DefaultCurrency: got %q, want %q", cfg.Engine.DefaultCurrency, "USD")
	}

	// Analysis defaults
	if cfg.Analysis.CacheTTL != 300 {
		t.Errorf("Analysis.CacheTTL: got %d, want 300", cfg.Analysis.CacheTTL)
	}
	if cfg.Analysis.Concurrency != 4 {
		t.Errorf("Analysis.Concurrency: got %d, want 4", cfg.Analysis.Concurrency)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "loanlens.yaml")
	content := []byte(`
engine:
  market_rates_file: "/data/market_rates.yaml"
  start_date: "2026-01-15"
  default_currency: "MXN"
analysis:
  cache_ttl: 60
  concurrency: 8
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	os.Unsetenv("LOANLENS_API_PORT")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Engine.MarketRatesFile != "/data/market_rates.yaml" {
		t.Errorf("Engine.MarketRatesFile: got %q", cfg.Engine.MarketRatesFile)
	}
	if cfg.Engine.DefaultCurrency != "MXN" {
		t.Errorf("Engine.DefaultCurrency: got %q, want %q", cfg.Engine.DefaultCurrency, "MXN")
	}
	if cfg.Analysis.CacheTTL != 60 {
		t.Errorf("Analysis.CacheTTL: got %d, want 60", cfg.Analysis.CacheTTL)
	}
	if cfg.Analysis.Concurrency != 8 {
		t.Errorf("Analysis.Concurrency: got %d, want 8", cfg.Analysis.Concurrency)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host should keep its default, got %q", cfg.API.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}

	start, err := cfg.Engine.Start()
	if err != nil {
		t.Fatalf("Engine.Start() error: %v", err)
	}
	if want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Engine.Start(): got %v, want %v", start, want)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/loanlens.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "loanlens.yaml")
	if err := os.WriteFile(cfgPath, []byte("api:\n  port: 9090\n"), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("LOANLENS_API_PORT", "7070")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnvCORSOrigins(t *testing.T) {
	t.Setenv("LOANLENS_API_CORS_ORIGINS", "http://a.example, http://b.example,")

	cfg := &Config{}
	overrideFromEnv(cfg)

	if len(cfg.API.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins: got %v, want 2 entries", cfg.API.CORSOrigins)
	}
	if cfg.API.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins[1]: got %q", cfg.API.CORSOrigins[1])
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("LOANLENS_API_CORS_ORIGINS")

	cfg := &Config{API: APIConfig{CORSOrigins: []string{"from-config"}}}
	overrideFromEnv(cfg)

	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "from-config" {
		t.Errorf("CORSOrigins should stay as configured when env is unset, got %v", cfg.API.CORSOrigins)
	}
}

// ── Helpers ──

func TestEngineStart(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		zero    bool
	}{
		{"", false, true},
		{"2025-06-30", false, false},
		{"30/06/2025", true, true},
	}
	for _, tc := range tests {
		got, err := EngineConfig{StartDate: tc.input}.Start()
		if (err != nil) != tc.wantErr {
			t.Errorf("Start(%q) error: got %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got.IsZero() != tc.zero {
			t.Errorf("Start(%q): got %v, zero want %v", tc.input, got, tc.zero)
		}
	}
}

func TestAnalysisHelpers(t *testing.T) {
	a := AnalysisConfig{CacheTTL: 90, Concurrency: 0}
	if a.CacheDuration() != 90*time.Second {
		t.Errorf("CacheDuration: got %v, want 90s", a.CacheDuration())
	}
	if a.Workers() != 1 {
		t.Errorf("Workers: got %d, want 1", a.Workers())
	}
	a.Concurrency = 6
	if a.Workers() != 6 {
		t.Errorf("Workers: got %d, want 6", a.Workers())
	}
}

func TestAPIAddr(t *testing.T) {
	got := APIConfig{Host: "127.0.0.1", Port: 8081}.Addr()
	if got != "127.0.0.1:8081" {
		t.Errorf("Addr: got %q, want %q", got, "127.0.0.1:8081")
	}
}

// ── CheckReferenceFiles ──

func TestCheckReferenceFiles(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(existing, []byte("{}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	os.Unsetenv("LOANLENS_ENGINE_MARKET_RATES_FILE")
	t.Setenv("LOANLENS_ENGINE_RISK_FACTORS_FILE", "/nonexistent/risk.yaml")

	cfg := &Config{Engine: EngineConfig{
		MarketRatesFile: existing,
		RiskFactorsFile: "/nonexistent/risk.yaml",
	}}
	statuses := CheckReferenceFiles(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	if statuses[0].Source != SourceConfig || !statuses[0].Exists {
		t.Errorf("market rates: got %+v", statuses[0])
	}
	if statuses[1].Source != SourceEnv || statuses[1].Exists {
		t.Errorf("risk factors: got %+v", statuses[1])
	}
}

func TestCheckReferenceFilesBuiltin(t *testing.T) {
	statuses := CheckReferenceFiles(&Config{})
	for _, s := range statuses {
		if s.Source != SourceBuiltin {
			t.Errorf("%s: got source %q, want %q", s.Name, s.Source, SourceBuiltin)
		}
		if s.Exists {
			t.Errorf("%s: builtin data should not report a file", s.Name)
		}
	}
}
