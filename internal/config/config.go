// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage providers understood by STORAGE_PROVIDER.
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// ErrInvalidConfig is returned by Validate when the process cannot serve requests.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	StorageProvider string

	// Cloudinary account credentials
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/media"

	UploadFolder    string
	UploadField     string
	UploadMaxMemory int64

	RateLimitPerMinute int

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:   getEnv("PORT", "8000"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageProvider: strings.ToLower(getEnv("STORAGE_PROVIDER", ProviderCloudinary)),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		StorageUseSSL:     getEnvBool("STORAGE_USE_SSL", false),
		StoragePublicBase: os.Getenv("STORAGE_PUBLIC_BASE"),

		UploadFolder:    getEnv("UPLOAD_FOLDER", "project3-example"),
		UploadField:     getEnv("UPLOAD_FIELD", "media_file"),
		UploadMaxMemory: int64(getEnvInt("UPLOAD_MAX_MEMORY", 32<<20)),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       os.Getenv("LOG_PATH"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),

		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 60*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Minute),
		IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}

	if cfg.StoragePublicBase == "" && cfg.StorageEndpoint != "" && cfg.StorageBucket != "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		cfg.StoragePublicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.StorageEndpoint, cfg.StorageBucket)
	}

	return cfg
}

// Validate reports every setting that prevents the service from starting.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	switch c.StorageProvider {
	case ProviderCloudinary:
		require("CLOUDINARY_CLOUD_NAME", c.CloudinaryCloudName)
		require("CLOUDINARY_API_KEY", c.CloudinaryAPIKey)
		require("CLOUDINARY_API_SECRET", c.CloudinaryAPISecret)
	case ProviderS3:
		require("STORAGE_ENDPOINT", c.StorageEndpoint)
		require("STORAGE_ACCESS_KEY", c.StorageAccessKey)
		require("STORAGE_SECRET_KEY", c.StorageSecretKey)
		require("STORAGE_BUCKET", c.StorageBucket)
	default:
		return fmt.Errorf("%w: unknown STORAGE_PROVIDER %q", ErrInvalidConfig, c.StorageProvider)
	}
	require("UPLOAD_FIELD", c.UploadField)

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if c.UploadMaxMemory <= 0 {
		return fmt.Errorf("%w: UPLOAD_MAX_MEMORY must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
