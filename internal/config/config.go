package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cloud providers understood by CloudProvider.
const (
	CloudProviderDrive  = "drive"
	CloudProviderMemory = "memory"
	CloudProviderNone   = "none"
)

// Config holds application configuration
type Config struct {
	// Server
	Env              string
	LogLevel         string
	Port             string
	CORSAllowOrigins []string
	EnablePprof      bool

	// Rate limiting for auth and sync routes
	RateLimitPerMinute int
	RateLimitBurst     int

	// Database
	DBDriver      string
	DBPath        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Cloud storage
	CloudProvider         string
	CloudFolderName       string
	CloudFileName         string
	CloudBackupFolderName string
	GoogleCredentialsFile string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRefreshToken    string

	// Sync
	SyncDebounce    time.Duration
	BackupKeepCount int
	BackupOnSync    bool
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		Port:             getEnv("PORT", "8080"),
		CORSAllowOrigins: strings.Fields(getEnv("CORS_ALLOW_ORIGINS", "")),
		EnablePprof:      getBool("ENABLE_PPROF", false),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 10),

		// Database
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:        getEnv("DB_PATH", "data/budget.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "budget"),
		DBPassword:    getEnv("DB_PASSWORD", "budget"),
		DBName:        getEnv("DB_NAME", "budget"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Cloud storage
		CloudProvider:         strings.ToLower(getEnv("CLOUD_PROVIDER", CloudProviderNone)),
		CloudFolderName:       getEnv("CLOUD_FOLDER_NAME", "Budget Tracker"),
		CloudFileName:         getEnv("CLOUD_FILE_NAME", "budget-data.json"),
		CloudBackupFolderName: getEnv("CLOUD_BACKUP_FOLDER_NAME", "backups"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken:    getEnv("GOOGLE_REFRESH_TOKEN", ""),

		// Sync
		SyncDebounce:    getDuration("SYNC_DEBOUNCE", time.Second),
		BackupKeepCount: getInt("BACKUP_KEEP_COUNT", 7),
		BackupOnSync:    getBool("BACKUP_ON_SYNC", true),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)

	if config.BackupKeepCount < 1 {
		log.Printf("Warning: BACKUP_KEEP_COUNT must be at least 1, falling back to 7\n")
		config.BackupKeepCount = 7
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to pin values
// such as the JWT secret without touching the environment.
func Set(cfg *Config) {
	appConfig = cfg
}

// CloudEnabled reports whether a cloud provider is configured.
func (c *Config) CloudEnabled() bool {
	return c.CloudProvider != "" && c.CloudProvider != CloudProviderNone
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
