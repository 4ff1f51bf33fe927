package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds settings for both the collector and the reporter.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Collector CollectorConfig `mapstructure:"collector"`
	Report    ReportConfig    `mapstructure:"report"`
}

// CollectorConfig controls the catalog page loop.
type CollectorConfig struct {
	// BaseURL is a page template; %d is replaced by the page number.
	BaseURL       string            `mapstructure:"base_url"`
	Params        map[string]string `mapstructure:"params"`
	Headers       map[string]string `mapstructure:"headers"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	PageDelay     time.Duration     `mapstructure:"page_delay"`
	MaxEmptyPages int               `mapstructure:"max_empty_pages"`
	OutputFile    string            `mapstructure:"output_file"`
	MetricsAddr   string            `mapstructure:"metrics_addr"`
}

// ReportConfig controls chart and insight generation.
type ReportConfig struct {
	InputFile         string `mapstructure:"input_file"`
	OutputDir         string `mapstructure:"output_dir"`
	Currency          string `mapstructure:"currency"`
	MainCategoryField string `mapstructure:"main_category_field"`
	TopCategories     int    `mapstructure:"top_categories"`
	TopPriced         int    `mapstructure:"top_priced"`
	TopValue          int    `mapstructure:"top_value"`
}

// DefaultCatalogFile is where the collector writes and the reporter reads.
const DefaultCatalogFile = "libraff_books.csv"

// DefaultParams are the query parameters of the paginated catalog endpoint.
func DefaultParams() map[string]string {
	return map[string]string{
		"items_per_page": "128",
		"result_ids":     "pagination_contents",
		"is_ajax":        "1",
	}
}

// DefaultHeaders mimic the storefront's own XHR pagination request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":             "application/json, text/javascript, */*; q=0.01",
		"Accept-Encoding":    "gzip, deflate, br, zstd",
		"Accept-Language":    "en-GB,en-US;q=0.9,en;q=0.8,ru;q=0.7,az;q=0.6",
		"DNT":                "1",
		"Referer":            "https://www.libraff.az/kitab/",
		"Sec-Ch-Ua":          `"Chromium";v="142", "Google Chrome";v="142", "Not_A Brand";v="99"`,
		"Sec-Ch-Ua-Mobile":   "?0",
		"Sec-Ch-Ua-Platform": `"macOS"`,
		"Sec-Fetch-Dest":     "empty",
		"Sec-Fetch-Mode":     "cors",
		"Sec-Fetch-Site":     "same-origin",
		"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
		"X-Requested-With":   "XMLHttpRequest",
	}
}

// DefaultConfig returns the settings used against libraff.az.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Collector: CollectorConfig{
			BaseURL:       "https://www.libraff.az/kitab/page-%d/",
			Params:        DefaultParams(),
			Headers:       DefaultHeaders(),
			Timeout:       30 * time.Second,
			PageDelay:     time.Second,
			MaxEmptyPages: 3,
			OutputFile:    DefaultCatalogFile,
		},
		Report: ReportConfig{
			InputFile:         DefaultCatalogFile,
			OutputDir:         "charts",
			Currency:          "AZN",
			MainCategoryField: "item_category0",
			TopCategories:     15,
			TopPriced:         10,
			TopValue:          10,
		},
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := c.Collector.Validate(); err != nil {
		return fmt.Errorf("collector: %w", err)
	}
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error")
	}
	return nil
}

// Validate checks the collector section on its own.
func (c *CollectorConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if !strings.Contains(c.BaseURL, "%d") {
		return fmt.Errorf("base URL must contain a %%d page placeholder")
	}

	parsedURL, err := url.Parse(fmt.Sprintf(c.BaseURL, 1))
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay cannot be negative")
	}
	if c.MaxEmptyPages <= 0 {
		return fmt.Errorf("max empty pages must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return nil
}

// Validate checks the report section on its own.
func (r *ReportConfig) Validate() error {
	if r.InputFile == "" {
		return fmt.Errorf("input file cannot be empty")
	}
	if r.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	switch r.MainCategoryField {
	case "item_category0", "item_category1", "item_category2":
	default:
		return fmt.Errorf("main category field must be one of item_category0..2, got %q", r.MainCategoryField)
	}
	if r.TopCategories <= 0 || r.TopPriced <= 0 || r.TopValue <= 0 {
		return fmt.Errorf("top-N limits must be positive")
	}
	return nil
}
