// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"lolanalysis/internal/store"
)

// Config holds the application configuration.
type Config struct {
	Riot    RiotConfig    `yaml:"riot"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// RiotConfig holds credentials and routing for the Riot API.
type RiotConfig struct {
	APIKey          string `yaml:"api_key"`
	Region          string `yaml:"region"`
	DdragonVersion  string `yaml:"ddragon_version"`
	DefaultSummoner string `yaml:"default_summoner"`
}

// StoreConfig selects and parameterises the document store backend.
type StoreConfig struct {
	Type          string `yaml:"type"`
	PathPrefix    string `yaml:"path_prefix"`
	PostgresURL   string `yaml:"postgres_url"`
	MongoURL      string `yaml:"mongodb_url"`
	MongoDatabase string `yaml:"mongodb_database"`
}

// LoggingConfig controls log output format and verbosity.
type LoggingConfig struct {
	Format string `yaml:"format"` // "text" or "json"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
}

// configFile is the optional YAML file read from the working directory.
// LOL_CONFIG_FILE overrides the location.
const configFile = "lolanalysis.yaml"

// Load reads configuration from file and environment. Precedence, lowest to
// highest: built-in defaults, the YAML file, environment variables. A .env
// file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	// Optional, won't fail if not found.
	_ = godotenv.Load()

	cfg := &Config{
		Riot: RiotConfig{
			Region:         "euw",
			DdragonVersion: "9.3.1",
		},
		Store: StoreConfig{
			Type:          store.TypeSQLite,
			PathPrefix:    "data/loldb",
			MongoDatabase: "lolanalysis",
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}

	path := configFile
	if p := os.Getenv("LOL_CONFIG_FILE"); p != "" {
		path = p
	}
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Riot.APIKey, "RIOT_API_KEY")
	setFromEnv(&cfg.Riot.Region, "RIOT_REGION")
	setFromEnv(&cfg.Riot.DdragonVersion, "DDRAGON_VERSION")
	setFromEnv(&cfg.Riot.DefaultSummoner, "LOL_SUMMONER")
	setFromEnv(&cfg.Store.Type, "LOL_STORE_TYPE")
	setFromEnv(&cfg.Store.PathPrefix, "LOL_STORE_PATH")
	setFromEnv(&cfg.Store.PostgresURL, "POSTGRES_URL")
	setFromEnv(&cfg.Store.MongoURL, "MONGODB_URL")
	setFromEnv(&cfg.Store.MongoDatabase, "MONGODB_DATABASE")
	setFromEnv(&cfg.Logging.Format, "LOG_FORMAT")
	setFromEnv(&cfg.Logging.Level, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// StoreSettings converts the store section into the store package's config.
func (c *Config) StoreSettings() store.Config {
	cfg := store.DefaultConfig()
	cfg.Type = c.Store.Type
	if c.Store.PathPrefix != "" {
		cfg.SQLite.PathPrefix = c.Store.PathPrefix
	}
	cfg.PostgreSQL.URL = c.Store.PostgresURL
	cfg.MongoDB.URL = c.Store.MongoURL
	if c.Store.MongoDatabase != "" {
		cfg.MongoDB.Database = c.Store.MongoDatabase
	}
	return cfg
}
