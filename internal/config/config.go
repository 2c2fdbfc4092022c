// Package config loads engine configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"commodity-index-lab/internal/domain"
)

// Config holds all engine configuration.
type Config struct {
	Storage struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`
	Cache struct {
		ObservationTTL    time.Duration `yaml:"observation_ttl"`
		ClassificationTTL time.Duration `yaml:"classification_ttl"`
		MappingTTL        time.Duration `yaml:"mapping_ttl"`
	} `yaml:"cache"`
	Index struct {
		BaseValue           float64  `yaml:"base_value"`
		AbsoluteLevelGroups []string `yaml:"absolute_level_groups"`
		ExcludedGroups      []string `yaml:"excluded_groups"`
	} `yaml:"index"`
	Classification struct {
		MatchPolicy string `yaml:"match_policy"` // warn, drop, or fail
	} `yaml:"classification"`
	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("MATCH_POLICY"); v != "" {
		cfg.Classification.MatchPolicy = v
	}

	// Defaults
	if cfg.Cache.ObservationTTL == 0 {
		cfg.Cache.ObservationTTL = 6 * time.Hour
	}
	if cfg.Cache.ClassificationTTL == 0 {
		cfg.Cache.ClassificationTTL = 60 * time.Second
	}
	if cfg.Cache.MappingTTL == 0 {
		cfg.Cache.MappingTTL = 5 * time.Minute
	}
	if cfg.Index.BaseValue == 0 {
		cfg.Index.BaseValue = domain.DefaultBaseValue
	}
	if cfg.Index.AbsoluteLevelGroups == nil {
		cfg.Index.AbsoluteLevelGroups = []string{"Crack Spread"}
	}
	if cfg.Classification.MatchPolicy == "" {
		cfg.Classification.MatchPolicy = string(domain.MatchWarn)
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "reports"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch domain.MatchPolicy(c.Classification.MatchPolicy) {
	case domain.MatchWarn, domain.MatchDrop, domain.MatchFail:
	default:
		return fmt.Errorf("invalid match_policy %q: want warn, drop, or fail", c.Classification.MatchPolicy)
	}
	return nil
}

// MatchPolicy returns the validated classification match policy.
func (c *Config) MatchPolicy() domain.MatchPolicy {
	return domain.MatchPolicy(c.Classification.MatchPolicy)
}
