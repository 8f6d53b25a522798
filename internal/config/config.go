// Package config loads immutable application configuration from file and
// environment and owns global logger setup.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and passed down; nothing mutates it afterwards.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres sink.
type StoreConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	User         string `yaml:"user" mapstructure:"user"`
	Password     string `yaml:"password" mapstructure:"password"`
	Database     string `yaml:"database" mapstructure:"database"`
	RetrySeconds int    `yaml:"retry_seconds" mapstructure:"retry_seconds"`
}

// DSN builds a pgx connection string from the individual parameters.
// Credentials are URL-escaped; passwords with characters like '@' or '/'
// must not change how the rest of the URL parses.
func (s StoreConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   "/" + s.Database,
	}
	return u.String()
}

// SourceConfig configures the two external data sources.
type SourceConfig struct {
	// ArchiveBaseURL is the root of the season-partitioned historical file
	// repository; resources live at {base}/{season}/teams.csv etc.
	ArchiveBaseURL string `yaml:"archive_base_url" mapstructure:"archive_base_url"`
	// LiveBaseURL is the root of the live snapshot API.
	LiveBaseURL string `yaml:"live_base_url" mapstructure:"live_base_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// IngestConfig configures what gets ingested.
type IngestConfig struct {
	// Seasons is the ordered list of historical seasons to load.
	Seasons []string `yaml:"seasons" mapstructure:"seasons"`
	// CurrentSeason overrides the inferred label for live ingestion.
	CurrentSeason string `yaml:"current_season" mapstructure:"current_season"`
	// BatchSize bounds rows per upsert statement.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Local .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.user", "postgres")
	v.SetDefault("store.password", "postgres")
	v.SetDefault("store.database", "premier_league")
	v.SetDefault("store.retry_seconds", 3)
	v.SetDefault("source.archive_base_url", "https://raw.githubusercontent.com/vaastav/Fantasy-Premier-League/master/data")
	v.SetDefault("source.live_base_url", "https://fantasy.premierleague.com/api")
	v.SetDefault("source.user_agent", "fpl-ingest/1.0")
	v.SetDefault("ingest.seasons", []string{"2020-21", "2021-22", "2022-23", "2023-24"})
	v.SetDefault("ingest.batch_size", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
