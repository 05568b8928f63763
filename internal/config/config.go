package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Env  string
	Port string

	DBDriver      string
	MongoURI      string
	MongoDatabase string

	MySQLUser     string
	MySQLPassword string
	MySQLHost     string
	MySQLPort     string
	MySQLDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	RabbitMQExchange string

	JWTSecret        string
	JWTRefreshSecret string
	JWTExpire        time.Duration
	JWTRefreshExpire time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	ClientURL string

	// AdminEmail and AdminPassword bootstrap the first admin at startup.
	AdminEmail    string
	AdminPassword string
}

func (c *Config) Production() bool { return c.Env == "production" }

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtExpire, err := ParseDuration(env("JWT_EXPIRE", "15m"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	refreshExpire, err := ParseDuration(env("JWT_REFRESH_EXPIRE", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_REFRESH_EXPIRE: %w", err)
	}

	cfg := &Config{
		Env:  env("NODE_ENV", env("APP_ENV", "development")),
		Port: env("PORT", "5000"),

		DBDriver:      strings.ToLower(env("DB_DRIVER", "mongo")),
		MongoURI:      env("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: env("MONGODB_DATABASE", "greenmart"),

		MySQLUser:     env("MYSQL_USER", "root"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLHost:     env("MYSQL_HOST", "localhost"),
		MySQLPort:     env("MYSQL_PORT", "3306"),
		MySQLDatabase: env("MYSQL_DATABASE", "greenmart"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       cast.ToInt(env("REDIS_DB", "0")),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: env("RABBITMQ_EXCHANGE", "greenmart.events"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		JWTExpire:        jwtExpire,
		JWTRefreshExpire: refreshExpire,

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(env("CURRENCY", "lkr")),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    env("CLOUDINARY_FOLDER", "greenmart"),

		ClientURL: env("CLIENT_URL", "http://localhost:3000"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.DBDriver != "mongo" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

// ParseDuration accepts Go durations plus a whole-day suffix ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := cast.ToIntE(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := cast.ToDurationE(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
