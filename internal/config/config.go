package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Record store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Record store
	DBDriver    string
	DatabaseURL string
	TablePrefix string
	// Pipeline
	ScratchDir        string
	MaxUploadBytes    int64
	MaxExtractedBytes int64
	MaxArchiveEntries int
	MaxArchiveDepth   int
	EntryConcurrency  int
	// External converter for formats without a built-in converter (docx, xlsx, images, audio...)
	MarkitdownBin string
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	driver := getEnv("DB_DRIVER", DriverSQLite)

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		DBDriver:          driver,
		DatabaseURL:       getEnv("DATABASE_URL", defaultDatabaseURL(driver)),
		TablePrefix:       getTablePrefix(env),
		ScratchDir:        getEnv("SCRATCH_DIR", filepath.Join(os.TempDir(), "mdconv")),
		MaxUploadBytes:    getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		MaxExtractedBytes: getEnvInt64("ARCHIVE_MAX_EXTRACTED_BYTES", DefaultMaxExtractedBytes),
		MaxArchiveEntries: getEnvInt("ARCHIVE_MAX_ENTRIES", DefaultMaxArchiveEntries),
		MaxArchiveDepth:   getEnvInt("ARCHIVE_MAX_DEPTH", DefaultMaxArchiveDepth),
		EntryConcurrency:  getEnvInt("ENTRY_CONCURRENCY", 1),
		MarkitdownBin:     getEnv("MARKITDOWN_BIN", ""),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getEnvInt("LOG_MAX_FILES", 10),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Environment, validation.In("dev", "test", "prod")),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverPostgres, DriverSQLite, DriverMySQL)),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.ScratchDir, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxExtractedBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxArchiveEntries, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxArchiveDepth, validation.Min(0)),
		validation.Field(&c.EntryConcurrency, validation.Required, validation.Min(1), validation.Max(MaxEntryConcurrency)),
	)
}

// CORSOriginList splits the comma separated CORS_ORIGINS value.
func (c *Config) CORSOriginList() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// defaultDatabaseURL returns the DSN used when DATABASE_URL is unset
func defaultDatabaseURL(driver string) string {
	switch driver {
	case DriverSQLite:
		return "file:conversions.db"
	case DriverMySQL:
		return "root:password@tcp(127.0.0.1:3306)/mdconv?parseTime=true"
	default:
		return ""
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
