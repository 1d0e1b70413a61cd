package config

import (
	"fmt"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `mapstructure:"PORT" validate:"required|numeric"`

	// Local (on-device) store
	LocalDBPath string `mapstructure:"LOCAL_DB_PATH" validate:"required"`
	ImagesDir   string `mapstructure:"IMAGES_DIR" validate:"required"`
	PageSize    int    `mapstructure:"PAGE_SIZE" validate:"required|int|min:1|max:500"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"in:trace,debug,info,warn,error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"in:json,console"`

	// Remote store database configuration; an empty DBType disables the remote store
	DBType            string `mapstructure:"DB_TYPE" validate:"in:mysql,mariadb,postgres,postgresql,sqlite,sqlserver,mssql"`
	DBHost            string `mapstructure:"DB_HOST"`
	DBPort            string `mapstructure:"DB_PORT"`
	DBDatabase        string `mapstructure:"DB_DATABASE"`
	DBUser            string `mapstructure:"DB_USER"`
	DBPassword        string `mapstructure:"DB_PASSWORD"`
	DBConnectionLimit int    `mapstructure:"DB_CONNECTION_LIMIT" validate:"int|min:1"`

	// Authorizer configuration; an empty AuthzURL means every request uses the local store
	AuthzURL      string `mapstructure:"AUTHZ_URL" validate:"fullUrl"`
	AuthzClientID string `mapstructure:"AUTHZ_CLIENT_ID"`
}

var defaults = map[string]interface{}{
	"PORT":                "3000",
	"LOCAL_DB_PATH":       "carscanner.db",
	"IMAGES_DIR":          "images",
	"PAGE_SIZE":           20,
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"DB_TYPE":             "",
	"DB_HOST":             "localhost",
	"DB_PORT":             "3306",
	"DB_DATABASE":         "",
	"DB_USER":             "",
	"DB_PASSWORD":         "",
	"DB_CONNECTION_LIMIT": 5,
	"AUTHZ_URL":           "",
	"AUTHZ_CLIENT_ID":     "",
}

// Load loads configuration from environment variables, optionally seeded from .env files
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field rules and the cross-field requirements of the remote store
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %w", v.Errors)
	}

	if c.RemoteEnabled() {
		if c.DBDatabase == "" {
			return fmt.Errorf("DB_DATABASE is required when DB_TYPE is set")
		}
		if c.DBType != "sqlite" && c.DBUser == "" {
			return fmt.Errorf("DB_USER is required when DB_TYPE is %s", c.DBType)
		}
	}
	if c.AuthzURL != "" && c.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required when AUTHZ_URL is set")
	}

	return nil
}

// RemoteEnabled reports whether a remote store database is configured
func (c *Config) RemoteEnabled() bool {
	return c.DBType != ""
}

// AuthEnabled reports whether sessions are validated against an Authorizer service
func (c *Config) AuthEnabled() bool {
	return c.AuthzURL != ""
}
