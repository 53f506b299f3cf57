package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv            string        `env:"APP_ENV" envDefault:"dev"`
	ProdOrigins       string        `env:"PROD_ORIGINS"`
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBDSN             string        `env:"DB_DSN,required,notEmpty"`
	DBMaxConns        int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMaxConnIdle     time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"5m"`
	JWTSecret         string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`

	// Empty means preferences are kept in process memory only.
	RedisURL string `env:"REDIS_URL"`

	SearchDebounce        time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	RosterDefaultPageSize int           `env:"ROSTER_DEFAULT_PAGE_SIZE" envDefault:"25"`
	RosterStrictRows      bool          `env:"ROSTER_STRICT_ROWS" envDefault:"false"`
	SessionIdleTTL        time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	TaxRateRaw            string        `env:"LEAGUE_TAX_RATE" envDefault:"0.13"`
	FeedMaxEntries        int           `env:"FEED_MAX_ENTRIES" envDefault:"50"`

	PublicURL        string        `env:"PUBLIC_URL" envDefault:"http://localhost:5173"`
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"no-reply@league.local"`

	IsProduction bool            `env:"-"`
	TaxRate      decimal.Decimal `env:"-"`
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// finalize derives computed fields and rejects values env tags cannot express.
func (c *Config) finalize() error {
	c.IsProduction = c.AppEnv == PROD_STRING

	rate, err := decimal.NewFromString(c.TaxRateRaw)
	if err != nil {
		return fmt.Errorf("invalid LEAGUE_TAX_RATE: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("LEAGUE_TAX_RATE must not be negative")
	}
	c.TaxRate = rate

	if c.RosterDefaultPageSize < 1 {
		return fmt.Errorf("ROSTER_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.FeedMaxEntries < 1 {
		return fmt.Errorf("FEED_MAX_ENTRIES must be positive")
	}

	return nil
}

// SMTPEnabled reports whether outbound mail should go through SMTP.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
