package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone     = "Asia/Tokyo"
	configPathEnv       = "NEWS_NOTIFY_CONFIG"
	databasePathEnv     = "DATABASE_PATH"
	apiAddrEnv          = "API_ADDR"
	translationEmailEnv = "TRANSLATION_EMAIL"
	cronExpressionEnv   = "SCHEDULER_CRON"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	API         APIConfig         `yaml:"api"`
	Translation TranslationConfig `yaml:"translation"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when collection runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// APIConfig describes the management HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// TranslationConfig defines how to contact the translation service.
type TranslationConfig struct {
	Endpoint string `yaml:"endpoint"`
	Email    string `yaml:"email"`
}

// PipelineConfig carries collection-run tunables.
type PipelineConfig struct {
	MaxArticlesPerSource int `yaml:"maxArticlesPerSource"`
	Concurrency          int `yaml:"concurrency"`
	RetentionDays        int `yaml:"retentionDays"`
	CleanupThreshold     int `yaml:"cleanupThreshold"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(apiAddrEnv); v != "" {
		c.API.Addr = v
	}

	if v := os.Getenv(translationEmailEnv); v != "" {
		c.Translation.Email = v
	}

	if v := os.Getenv(cronExpressionEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.API.Addr != "" {
		base.API = override.API
	}

	if override.Translation.Endpoint != "" {
		base.Translation.Endpoint = override.Translation.Endpoint
	}
	if override.Translation.Email != "" {
		base.Translation.Email = override.Translation.Email
	}

	if override.Pipeline.MaxArticlesPerSource > 0 {
		base.Pipeline.MaxArticlesPerSource = override.Pipeline.MaxArticlesPerSource
	}
	if override.Pipeline.Concurrency > 0 {
		base.Pipeline.Concurrency = override.Pipeline.Concurrency
	}
	if override.Pipeline.RetentionDays > 0 {
		base.Pipeline.RetentionDays = override.Pipeline.RetentionDays
	}
	if override.Pipeline.CleanupThreshold > 0 {
		base.Pipeline.CleanupThreshold = override.Pipeline.CleanupThreshold
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{Path: "news_notify.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 9 * * *", Timezone: defaultTimezone, location: tz},
		API:       APIConfig{Addr: ":8000"},
		Translation: TranslationConfig{
			Endpoint: "https://api.mymemory.translated.net/get",
			Email:    "",
		},
		Pipeline: PipelineConfig{
			MaxArticlesPerSource: 10,
			Concurrency:          4,
			RetentionDays:        30,
			CleanupThreshold:     1000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
