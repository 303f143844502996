package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or postgres
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	DBSSLMode              string `env:"DB_SSLMODE" envDefault:"disable"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	// Unlock pricing is server-side only; clients never send an amount.
	UnlockPrice    int64         `env:"UNLOCK_PRICE" envDefault:"9900"`
	Currency       string        `env:"UNLOCK_CURRENCY" envDefault:"INR"`
	UnlockValidity time.Duration `env:"UNLOCK_VALIDITY" envDefault:"720h"`
	PreviewContact bool          `env:"ALLOW_UNPAID_CONTACT_PREVIEW" envDefault:"false"`

	RazorpayKeyID     string        `env:"RAZORPAY_KEY_ID,required,notEmpty"`
	RazorpayKeySecret string        `env:"RAZORPAY_KEY_SECRET,required,notEmpty"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`

	JWTSecret             string `env:"JWT_SECRET"`
	FirebaseProjectID     string `env:"FIREBASE_PROJECT_ID"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	StorageBucket         string `env:"STORAGE_BUCKET"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      int      `env:"RATE_LIMIT" envDefault:"100"` // requests per IP per 15 minutes; 0 disables
	GitSHA         string   `env:"GIT_SHA"`
	BuildTime      string   `env:"BUILD_TIME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.UnlockPrice <= 0 {
		return errors.New("UNLOCK_PRICE must be positive")
	}
	if c.UnlockValidity <= 0 {
		return errors.New("UNLOCK_VALIDITY must be positive")
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return errors.New("DB_DRIVER must be mysql or postgres")
	}
	if c.JWTSecret == "" && c.FirebaseProjectID == "" {
		return errors.New("one of JWT_SECRET or FIREBASE_PROJECT_ID is required")
	}
	return nil
}
