package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Atacadão"`
		Port int    `envconfig:"PORT" default:"8080"`
		// Timezone is used to bucket orders into calendar months.
		Timezone string `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"atacadao"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Secret      string        `envconfig:"AUTH_SECRET" required:"true"`
		SessionTTL  time.Duration `envconfig:"AUTH_SESSION_TTL" default:"12h"`
		ActionTTL   time.Duration `envconfig:"AUTH_ACTION_TTL" default:"30m"`
		FreshWindow time.Duration `envconfig:"AUTH_FRESH_WINDOW" default:"5m"`
		BcryptCost  int           `envconfig:"AUTH_BCRYPT_COST" default:"10"`
	}

	Batch struct {
		MaxSize int `envconfig:"BATCH_MAX_SIZE" default:"500"`
	}

	Advisor struct {
		APIKey  string        `envconfig:"GEMINI_API_KEY"`
		Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
		BaseURL string        `envconfig:"GEMINI_BASE_URL"`
		Timeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"20s"`
	}

	Log struct {
		Format string `envconfig:"LOG_FORMAT" default:"text"`
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location loads App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Batch.MaxSize <= 0 {
		return nil, fmt.Errorf("BATCH_MAX_SIZE must be positive, got %d", cfg.Batch.MaxSize)
	}

	return &cfg, nil
}
