package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Catalog sources
const (
	CatalogSourceDatabase = "database"
	CatalogSourceStatic   = "static"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Admin     AdminConfig
	Catalog   CatalogConfig
	AMQP      AMQPConfig
	RateLimit RateLimitConfig
	Payment   PaymentConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// AdminConfig holds the credentials of the account seeded on first start
type AdminConfig struct {
	Username string
	Password string
}

type CatalogConfig struct {
	Source string // database or static
	File   string // YAML catalog for the static source
	Seed   bool   // seed the demo catalog when the database is empty
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// PaymentConfig holds the bank coordinates customers pay to
type PaymentConfig struct {
	IBAN        string
	BIC         string
	Bank        string
	Beneficiary string
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func Load() *Config {
	// Values already present in the environment win over .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_SECRET", "ebike_secret")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("CATALOG_SOURCE", CatalogSourceDatabase)
	viper.SetDefault("SEED_PRODUCTS", true)
	viper.SetDefault("ORDER_QUEUE", "orders.placed")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("PAYMENT_IBAN", "IT52 PO35 7601 6010 1000 8072 943")
	viper.SetDefault("PAYMENT_BIC", "BBVAITM2XXX")
	viper.SetDefault("PAYMENT_BANK", "BBVA")
	viper.SetDefault("PAYMENT_BENEFICIARY", "Cicli Volante")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	env := viper.GetString("SERVER_ENV")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            env,
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret: viper.GetString("SESSION_SECRET"),
			TTL:    time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
			Secure: env == "production",
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Catalog: CatalogConfig{
			Source: viper.GetString("CATALOG_SOURCE"),
			File:   viper.GetString("CATALOG_FILE"),
			Seed:   viper.GetBool("SEED_PRODUCTS"),
		},
		AMQP: AMQPConfig{
			URL:   viper.GetString("AMQP_URL"),
			Queue: viper.GetString("ORDER_QUEUE"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Payment: PaymentConfig{
			IBAN:        viper.GetString("PAYMENT_IBAN"),
			BIC:         viper.GetString("PAYMENT_BIC"),
			Bank:        viper.GetString("PAYMENT_BANK"),
			Beneficiary: viper.GetString("PAYMENT_BENEFICIARY"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
