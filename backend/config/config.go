package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	// Tokens are issued by the identity provider and verified with this secret.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	JWTIssuer string `mapstructure:"JWT_ISSUER"`

	IdentityAPIURL        string `mapstructure:"IDENTITY_API_URL"`
	IdentitySecretKey     string `mapstructure:"IDENTITY_SECRET_KEY"`
	IdentityWebhookSecret string `mapstructure:"IDENTITY_WEBHOOK_SECRET"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"` // gcs | local
	GCSBucket     string `mapstructure:"GCS_BUCKET"`
	CDNDomain     string `mapstructure:"CDN_DOMAIN"`
	MediaDir      string `mapstructure:"MEDIA_DIR"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `mapstructure:"CURRENCY"`
	FrontendURL         string `mapstructure:"FRONTEND_URL"`

	CORSOrigins        string        `mapstructure:"CORS_ORIGINS"`
	HideForeignCourses bool          `mapstructure:"HIDE_FOREIGN_COURSES"`
	SeedDemo           bool          `mapstructure:"SEED_DEMO"`
	PurchaseRateLimit  int           `mapstructure:"PURCHASE_RATE_LIMIT"`
	PurchaseRateWindow time.Duration `mapstructure:"PURCHASE_RATE_WINDOW"`
	OutboundTimeout    time.Duration `mapstructure:"OUTBOUND_TIMEOUT"`
	MaxUploadBytes     int           `mapstructure:"MAX_UPLOAD_BYTES"`
}

var defaults = map[string]any{
	"SERVER_PORT": "8080",
	"LOG_FORMAT":  "console",
	"LOG_LEVEL":   "info",

	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "lms",
	"DB_SSLMODE":  "disable",

	"JWT_SECRET": "secret",
	"JWT_ISSUER": "",

	"IDENTITY_API_URL":        "https://api.clerk.com/v1",
	"IDENTITY_SECRET_KEY":     "",
	"IDENTITY_WEBHOOK_SECRET": "",

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"CACHE_TTL":      "5m",

	"STORAGE_DRIVER":  "local",
	"GCS_BUCKET":      "",
	"CDN_DOMAIN":      "",
	"MEDIA_DIR":       "./media",
	"PUBLIC_BASE_URL": "http://localhost:8080",

	"STRIPE_SECRET_KEY":     "",
	"STRIPE_WEBHOOK_SECRET": "",
	"CURRENCY":              "usd",
	"FRONTEND_URL":          "http://localhost:5173",

	"CORS_ORIGINS":         "*",
	"HIDE_FOREIGN_COURSES": false,
	"SEED_DEMO":            false,
	"PURCHASE_RATE_LIMIT":  10,
	"PURCHASE_RATE_WINDOW": "1m",
	"OUTBOUND_TIMEOUT":     "10s",
	"MAX_UPLOAD_BYTES":     10 << 20,
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.PurchaseRateLimit < 0 {
		return fmt.Errorf("PURCHASE_RATE_LIMIT must not be negative")
	}
	return nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
