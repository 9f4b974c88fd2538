package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Stripe   StripeConfig
	Site     SiteConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	User            string
	Password        string
	Host            string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the MySQL connection string for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", d.User, d.Password, d.Host, d.Name)
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string // empty disables POST /webhooks/stripe
	Currency      string
	Timeout       time.Duration
}

// SiteConfig is the frontend origin used to build checkout redirect targets.
type SiteConfig struct {
	Domain string
}

// SuccessURL is where the provider sends the customer after paying. The
// {CHECKOUT_SESSION_ID} placeholder is filled in by the provider.
func (s SiteConfig) SuccessURL() string {
	return strings.TrimRight(s.Domain, "/") + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func (s SiteConfig) CancelURL() string {
	return strings.TrimRight(s.Domain, "/") + "/dashboard/payment-cancelled"
}

// Load reads .env when present, then builds the config from defaults and
// environment overrides.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "5000"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASS"),
			Host:            env("DB_HOST", "localhost:3306"),
			Name:            env("DB_NAME", "zap_shift_DB"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Stripe: StripeConfig{
			// SPRITE_SECRET is the name the deployed environments already use.
			SecretKey:     env("SPRITE_SECRET", os.Getenv("STRIPE_SECRET_KEY")),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      "usd",
			Timeout:       10 * time.Second,
		},
		Site: SiteConfig{
			Domain: os.Getenv("SITE_DOMAIN"),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	// Outside production an empty key selects the in-memory checkout provider.
	if c.Stripe.SecretKey == "" && c.IsProduction() {
		errs = append(errs, errors.New("SPRITE_SECRET is required"))
	}
	if c.Site.Domain == "" {
		errs = append(errs, errors.New("SITE_DOMAIN is required"))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
