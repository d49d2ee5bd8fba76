package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"strings"
	"time"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"prod"`

	BaseAddress       string `split_words:"true" required:"true"`
	Username          string
	Password          string
	Group             string
	Role              string
	Locale            string `default:"en_US"`
	SessionCookie     string `split_words:"true" default:"JSESSIONID"`
	LoginMarker       string `split_words:"true" default:"LoginResponse"`
	ReusePriorSession bool   `split_words:"true" default:"true"`

	FanOutParallelism int           `envconfig:"FANOUT_PARALLELISM" default:"4"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LogBodies         bool          `split_words:"true" default:"false"`

	ListenAddress string   `split_words:"true" default:":8080"`
	AllowedOrigin []string `split_words:"true" default:"*"`

	PostgresDSN          string        `envconfig:"POSTGRES_DSN"`
	JournalRetention     time.Duration `split_words:"true" default:"168h"`
	JournalPruneInterval time.Duration `split_words:"true" default:"1h"`
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.ToLower(config.Environment) == "prod"
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("sb", config); err != nil {
		return nil, err
	}
	return config, nil
}
