// Package config centralizes how PhotoDrop reads environment variables and
// exposes them as strongly typed Go values. The struct is built once at startup
// and handed to every component; nothing else in the module reads the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the service.
type Config struct {
	Address     string
	StorageDir  string
	UploadToken string
	MaxFileSize int64
	MaxFiles    int

	SeedEnabled bool
	SeedToken   string

	ThumbWidth      int
	ThumbQuality    int
	DateConcurrency int

	RateLimit  int
	RateWindow time.Duration
	PublicDir  string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ProcessingPool int

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	LogLevel  string
	LogPretty bool
}

const (
	defaultAddress         = ":8080"
	defaultStorageDir      = "./photos"
	defaultMaxFileSize     = 20 << 20 // 20 MiB
	defaultMaxFiles        = 20
	defaultThumbWidth      = 400
	defaultThumbQuality    = 80
	defaultDateConcurrency = 10
	defaultRateLimit       = 120
	defaultRateWindow      = time.Minute
	defaultRedisAddr       = "127.0.0.1:6379"
	defaultWorkerCount     = 2
	defaultBucket          = "photodrop"
	defaultLogLevel        = "info"
)

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is applied first when one exists;
// variables already present in the process environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(), nil
}

// LoadFile behaves like Load but reads the given dotenv files instead of ./.env.
func LoadFile(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		return nil, err
	}
	return fromEnv(), nil
}

func fromEnv() *Config {
	cfg := &Config{
		Address:         readAddress(),
		StorageDir:      readEnv("PHOTODROP_STORAGE_DIR", defaultStorageDir),
		UploadToken:     strings.TrimSpace(os.Getenv("PHOTODROP_UPLOAD_TOKEN")),
		MaxFileSize:     parseInt64("PHOTODROP_MAX_FILE_BYTES", defaultMaxFileSize),
		MaxFiles:        parseInt("PHOTODROP_MAX_FILES", defaultMaxFiles),
		SeedEnabled:     parseBool("PHOTODROP_SEED_ENABLED", false),
		ThumbWidth:      parseInt("PHOTODROP_THUMB_WIDTH", defaultThumbWidth),
		ThumbQuality:    parseInt("PHOTODROP_THUMB_QUALITY", defaultThumbQuality),
		DateConcurrency: parseInt("PHOTODROP_DATE_CONCURRENCY", defaultDateConcurrency),
		RateLimit:       parseInt("PHOTODROP_RATE_LIMIT", defaultRateLimit),
		RateWindow:      parseDuration("PHOTODROP_RATE_WINDOW", defaultRateWindow),
		PublicDir:       os.Getenv("PHOTODROP_PUBLIC_DIR"),
		RedisAddr:       readEnv("PHOTODROP_REDIS_ADDR", defaultRedisAddr),
		RedisPassword:   os.Getenv("PHOTODROP_REDIS_PASSWORD"),
		RedisDB:         parseInt("PHOTODROP_REDIS_DB", 0),
		ProcessingPool:  parseInt("PHOTODROP_WORKERS", defaultWorkerCount),
		S3Endpoint:      os.Getenv("PHOTODROP_S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("PHOTODROP_S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("PHOTODROP_S3_SECRET_KEY"),
		S3Bucket:        readEnv("PHOTODROP_S3_BUCKET", defaultBucket),
		S3Region:        os.Getenv("PHOTODROP_S3_REGION"),
		S3UseSSL:        parseBool("PHOTODROP_S3_USE_SSL", true),
		LogLevel:        readEnv("PHOTODROP_LOG_LEVEL", defaultLogLevel),
		LogPretty:       parseBool("PHOTODROP_LOG_PRETTY", false),
	}
	// The seed endpoint shares the upload secret unless it has its own.
	cfg.SeedToken = readEnv("PHOTODROP_SEED_TOKEN", cfg.UploadToken)
	cfg.clamp()
	return cfg
}

func (c *Config) clamp() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = defaultMaxFiles
	}
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = defaultThumbWidth
	}
	if c.ThumbQuality <= 0 || c.ThumbQuality > 100 {
		c.ThumbQuality = defaultThumbQuality
	}
	if c.DateConcurrency <= 0 {
		c.DateConcurrency = defaultDateConcurrency
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = defaultRateWindow
	}
	if c.ProcessingPool <= 0 {
		c.ProcessingPool = defaultWorkerCount
	}
}

// ThumbDir is the sibling location that holds generated thumbnails.
func (c *Config) ThumbDir() string {
	return filepath.Join(c.StorageDir, "thumbs")
}

// MaxRequestBytes bounds a whole multipart upload request.
func (c *Config) MaxRequestBytes() int64 {
	return int64(c.MaxFiles)*c.MaxFileSize + 1<<20
}

// BackupConfigured reports whether an S3 endpoint and credentials are set.
func (c *Config) BackupConfigured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func readAddress() string {
	if v, ok := os.LookupEnv("PHOTODROP_ADDRESS"); ok && v != "" {
		return v
	}
	// PORT is what most hosting platforms inject.
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			return ":" + port
		}
	}
	return defaultAddress
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	// time.ParseDuration understands inputs like "5m" or "30s".
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
