package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	Logging   LoggingConfig   `yaml:"logging"`
	Providers ProvidersConfig `yaml:"providers"`
	Sync      SyncConfig      `yaml:"sync"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	JSONFile string `yaml:"json_file"` // optional JSON log sink, empty disables it
}

type ProvidersConfig struct {
	Enabled   []string        `yaml:"enabled"`
	UserAgent string          `yaml:"user_agent"`
	Timeout   time.Duration   `yaml:"timeout"`
	SportsIO  SportsIOConfig  `yaml:"sportsio"`
	SportsDB  SportsDBConfig  `yaml:"sportsdb"`
}

type SportsIOConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	DailyLimit        int    `yaml:"daily_limit"`
}

type SportsDBConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	DailyLimit        int    `yaml:"daily_limit"`
}

type SyncConfig struct {
	Enabled            bool          `yaml:"enabled"`
	Sports             []string      `yaml:"sports"`
	InterSourceDelay   time.Duration `yaml:"inter_source_delay"`
	LiveInterval       time.Duration `yaml:"live_interval"`
	EventsInterval     time.Duration `yaml:"events_interval"`
	LeaguesInterval    time.Duration `yaml:"leagues_interval"`
	OddsInterval       time.Duration `yaml:"odds_interval"`
	MultiSportInterval time.Duration `yaml:"multi_sport_interval"`
	UpcomingDays       int           `yaml:"upcoming_days"`
}

// Load reads and parses a YAML config file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

// LoadWithEnv loads an optional .env file first, then the YAML config.
// Missing .env is not an error.
func LoadWithEnv(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return Load(configPath)
}

func (c *Config) applyDefaults() {
	if c.Providers.Timeout <= 0 {
		c.Providers.Timeout = 30 * time.Second
	}
	if c.Providers.UserAgent == "" {
		c.Providers.UserAgent = "dejavu-sync/1.0"
	}
	if c.Sync.InterSourceDelay <= 0 {
		c.Sync.InterSourceDelay = 2 * time.Second
	}
	if c.Sync.LiveInterval <= 0 {
		c.Sync.LiveInterval = 5 * time.Minute
	}
	if c.Sync.EventsInterval <= 0 {
		c.Sync.EventsInterval = time.Hour
	}
	if c.Sync.LeaguesInterval <= 0 {
		c.Sync.LeaguesInterval = 24 * time.Hour
	}
	if c.Sync.OddsInterval <= 0 {
		c.Sync.OddsInterval = 2 * time.Hour
	}
	if c.Sync.MultiSportInterval <= 0 {
		c.Sync.MultiSportInterval = 6 * time.Hour
	}
	if c.Sync.UpcomingDays <= 0 {
		c.Sync.UpcomingDays = 7
	}
	if len(c.Sync.Sports) == 0 {
		c.Sync.Sports = []string{"football"}
	}
}

// applyEnvOverrides lets secrets come from the environment instead of YAML.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("SPORTSIO_API_KEY"); v != "" {
		c.Providers.SportsIO.APIKey = v
	}
	if v := os.Getenv("SPORTSDB_API_KEY"); v != "" {
		c.Providers.SportsDB.APIKey = v
	}
}
