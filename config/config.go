package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Every value has a default so the client starts against a local backend with
// no environment at all. Values from a .env file never override the real
// environment.
// -----------------------------------------------------------------------------

type Config struct {
	API APIConfig
	Log LogConfig
}

type APIConfig struct {
	BaseURL   string        `envconfig:"CINEMA_API_URL" default:"http://localhost:8000/api"`
	Timeout   time.Duration `envconfig:"CINEMA_HTTP_TIMEOUT" default:"0s"`
	UserAgent string        `envconfig:"CINEMA_USER_AGENT" default:"cinema-tui"`
}

type LogConfig struct {
	File  string `envconfig:"CINEMA_LOG_FILE"`
	Level string `envconfig:"CINEMA_LOG_LEVEL" default:"info"`
}

// Load reads the optional dotenv files and then the process environment.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "load %s", file)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to process env config")
	}
	if cfg.API.Timeout < 0 {
		return Config{}, errors.Newf("CINEMA_HTTP_TIMEOUT must not be negative, got %s", cfg.API.Timeout)
	}
	return cfg, nil
}
