package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	Env    string
	BodyMB int

	Database   DatabaseConfig
	JWTSecret  string
	Cloudinary CloudinaryConfig
	Email      EmailConfig
	Payment    PaymentConfig

	MaxListingImages int
	ListingRateLimit ListingRateConfig
}

// ListingRateConfig caps how many listings one user can submit per window.
type ListingRateConfig struct {
	Limit  int
	Window time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	LogLevel string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
}

type PaymentConfig struct {
	UPIID         string
	UPIPIN        string
	MaxAttempts   int
	AttemptWindow time.Duration
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	attemptWindow, err := getEnvDuration("PAYMENT_ATTEMPT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("PAYMENT_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	maxImages, err := getEnvInt("MAX_LISTING_IMAGES", 5)
	if err != nil {
		return nil, err
	}
	bodyMB, err := getEnvInt("BODY_LIMIT_MB", 30)
	if err != nil {
		return nil, err
	}
	listingLimit, err := getEnvInt("LISTING_RATE_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	listingWindow, err := getEnvDuration("LISTING_RATE_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:   getEnvString("PORT", "8080"),
		Env:    getEnvString("APP_ENV", "development"),
		BodyMB: bodyMB,
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     os.Getenv("DB_PORT"),
			LogLevel: getEnvString("DB_LOG_LEVEL", "warn"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnvString("CLOUDINARY_FOLDER", "bazaarly/listings"),
		},
		Email: EmailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			From:         getEnvString("FROM_EMAIL", "onboarding@resend.dev"),
		},
		Payment: PaymentConfig{
			UPIID:         getEnvString("PAYMENT_UPI_ID", "pay@paytm"),
			UPIPIN:        getEnvString("PAYMENT_UPI_PIN", "1234"),
			MaxAttempts:   maxAttempts,
			AttemptWindow: attemptWindow,
		},
		MaxListingImages: maxImages,
		ListingRateLimit: ListingRateConfig{
			Limit:  listingLimit,
			Window: listingWindow,
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.MaxListingImages <= 0 {
		return nil, fmt.Errorf("MAX_LISTING_IMAGES must be positive, got %d", cfg.MaxListingImages)
	}
	if cfg.ListingRateLimit.Limit <= 0 {
		return nil, fmt.Errorf("LISTING_RATE_LIMIT must be positive, got %d", cfg.ListingRateLimit.Limit)
	}
	if cfg.Payment.MaxAttempts <= 0 {
		return nil, fmt.Errorf("PAYMENT_MAX_ATTEMPTS must be positive, got %d", cfg.Payment.MaxAttempts)
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, value)
	}
	return d, nil
}
