package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RBAC      RBACConfig      `mapstructure:"rbac"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Export    ExportConfig    `mapstructure:"export"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// RBACConfig holds permission enforcement configuration
type RBACConfig struct {
	// Enabled turns permission checks on. When off every check passes,
	// which is only meant for local development.
	Enabled        bool   `mapstructure:"enabled"`
	SuperAdminRole string `mapstructure:"super_admin_role"`
}

// DirectoryConfig holds directory snapshot configuration
type DirectoryConfig struct {
	// RefreshInterval bounds how stale a cached directory snapshot may be
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// CrossFunctionalDepartments lists department names whose managers
	// operate across every business unit.
	CrossFunctionalDepartments []string `mapstructure:"cross_functional_departments"`
}

// RoutingConfig holds case routing configuration
type RoutingConfig struct {
	// CancelPendingOnDecline cancels remaining pending steps when a decline
	// halts a case, instead of leaving them visible for audit.
	CancelPendingOnDecline bool `mapstructure:"cancel_pending_on_decline"`
}

// ExportConfig holds case register export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/hris.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("rbac.enabled", true)
	viper.SetDefault("rbac.super_admin_role", "Admin")

	viper.SetDefault("directory.refresh_interval", 5*time.Minute)
	viper.SetDefault("directory.cross_functional_departments", []string{})

	viper.SetDefault("routing.cancel_pending_on_decline", false)

	viper.SetDefault("export.output_dir", "exports")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars() {
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("rbac.enabled", "RBAC_ENABLED")
	viper.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.RBAC.Enabled && c.RBAC.SuperAdminRole == "" {
		return fmt.Errorf("rbac.super_admin_role is required when rbac is enabled")
	}
	if c.Directory.RefreshInterval <= 0 {
		return fmt.Errorf("directory.refresh_interval must be positive")
	}
	return nil
}
