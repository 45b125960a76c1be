package database

import (
	"fmt"
	"net/url"

	"budgettracker/internal/config"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Driver        string
	Path          string
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

// NewConfig creates a database configuration from the application config
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:        cfg.DBDriver,
		Path:          cfg.DBPath,
		Host:          cfg.DBHost,
		Port:          cfg.DBPort,
		User:          cfg.DBUser,
		Password:      cfg.DBPassword,
		DBName:        cfg.DBName,
		SSLMode:       cfg.DBSSLMode,
		MigrationsDir: cfg.MigrationsDir,
	}
}

// DSN returns the connection string understood by the GORM driver
func (c *Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path + "?_foreign_keys=on&_busy_timeout=5000"
}

// MigrateURL returns the database URL understood by golang-migrate
func (c *Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
		}
		return u.String()
	}
	return "sqlite3://" + c.Path
}

// MigrationsSource returns the golang-migrate source URL for the driver's
// migration directory
func (c *Config) MigrationsSource() string {
	dir := c.MigrationsDir
	if dir == "" {
		dir = "migrations"
	}
	driver := c.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	return "file://" + dir + "/" + driver
}
