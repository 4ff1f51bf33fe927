package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load overlays an optional config file and LIBRAFF_* environment variables
// onto DefaultConfig. An empty path searches for libraff.yaml in . and ./config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("LIBRAFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("libraff")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// Decode into a zero value: viper lowercases map keys, and merging them
	// into the default header map would duplicate every entry.
	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &out, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetDefault("collector.base_url", cfg.Collector.BaseURL)
	v.SetDefault("collector.params", cfg.Collector.Params)
	v.SetDefault("collector.headers", cfg.Collector.Headers)
	v.SetDefault("collector.timeout", cfg.Collector.Timeout)
	v.SetDefault("collector.page_delay", cfg.Collector.PageDelay)
	v.SetDefault("collector.max_empty_pages", cfg.Collector.MaxEmptyPages)
	v.SetDefault("collector.output_file", cfg.Collector.OutputFile)
	v.SetDefault("collector.metrics_addr", cfg.Collector.MetricsAddr)

	v.SetDefault("report.input_file", cfg.Report.InputFile)
	v.SetDefault("report.output_dir", cfg.Report.OutputDir)
	v.SetDefault("report.currency", cfg.Report.Currency)
	v.SetDefault("report.main_category_field", cfg.Report.MainCategoryField)
	v.SetDefault("report.top_categories", cfg.Report.TopCategories)
	v.SetDefault("report.top_priced", cfg.Report.TopPriced)
	v.SetDefault("report.top_value", cfg.Report.TopValue)
}
