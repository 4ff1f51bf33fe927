package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.Collector.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "missing page placeholder",
			mutate: func(cfg *Config) {
				cfg.Collector.BaseURL = "https://www.libraff.az/kitab/"
			},
			wantErr: "placeholder",
		},
		{
			name: "no host",
			mutate: func(cfg *Config) {
				cfg.Collector.BaseURL = "/kitab/page-%d/"
			},
			wantErr: "host",
		},
		{
			name: "zero timeout",
			mutate: func(cfg *Config) {
				cfg.Collector.Timeout = 0
			},
			wantErr: "timeout",
		},
		{
			name: "negative page delay",
			mutate: func(cfg *Config) {
				cfg.Collector.PageDelay = -1 * time.Second
			},
			wantErr: "page delay",
		},
		{
			name: "zero empty page threshold",
			mutate: func(cfg *Config) {
				cfg.Collector.MaxEmptyPages = 0
			},
			wantErr: "max empty pages",
		},
		{
			name: "unknown main category field",
			mutate: func(cfg *Config) {
				cfg.Report.MainCategoryField = "item_category9"
			},
			wantErr: "main category field",
		},
		{
			name: "bad log level",
			mutate: func(cfg *Config) {
				cfg.LogLevel = "loud"
			},
			wantErr: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Collector.MaxEmptyPages != 3 {
		t.Fatalf("max empty pages = %d, want 3", cfg.Collector.MaxEmptyPages)
	}
	if cfg.Collector.Params["items_per_page"] != "128" {
		t.Fatalf("items_per_page = %q, want 128", cfg.Collector.Params["items_per_page"])
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate, got %v", err)
	}
	if cfg.Collector.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", cfg.Collector.Timeout)
	}
	if cfg.Report.OutputDir != "charts" {
		t.Fatalf("output dir = %q, want charts", cfg.Report.OutputDir)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libraff.yaml")
	body := "collector:\n  page_delay: 250ms\n  output_file: out/books.csv\nreport:\n  currency: EUR\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LIBRAFF_REPORT_TOP_CATEGORIES", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Collector.PageDelay != 250*time.Millisecond {
		t.Fatalf("page delay = %v, want 250ms", cfg.Collector.PageDelay)
	}
	if cfg.Collector.OutputFile != "out/books.csv" {
		t.Fatalf("output file = %q", cfg.Collector.OutputFile)
	}
	if cfg.Report.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", cfg.Report.Currency)
	}
	if cfg.Report.TopCategories != 5 {
		t.Fatalf("top categories = %d, want 5", cfg.Report.TopCategories)
	}
	if cfg.Collector.MaxEmptyPages != 3 {
		t.Fatalf("max empty pages = %d, want default 3", cfg.Collector.MaxEmptyPages)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
