package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "carscanner.db", cfg.LocalDBPath)
	assert.Equal(t, 20, cfg.PageSize)
	assert.False(t, cfg.RemoteEnabled())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PAGE_SIZE=7\nLOCAL_DB_PATH=/tmp/cars.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PAGE_SIZE")
		os.Unsetenv("LOCAL_DB_PATH")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.PageSize)
	assert.Equal(t, "/tmp/cars.db", cfg.LocalDBPath)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:              "3000",
			LocalDBPath:       "carscanner.db",
			ImagesDir:         "images",
			PageSize:          20,
			LogLevel:          "info",
			LogFormat:         "json",
			DBConnectionLimit: 5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown db type", func(c *Config) { c.DBType = "oracle" }, true},
		{"remote without database", func(c *Config) { c.DBType = "postgres"; c.DBUser = "cars" }, true},
		{"remote without user", func(c *Config) { c.DBType = "mysql"; c.DBDatabase = "cars" }, true},
		{"sqlite remote needs no user", func(c *Config) { c.DBType = "sqlite"; c.DBDatabase = "remote.db" }, false},
		{"auth without client id", func(c *Config) { c.AuthzURL = "https://auth.example.com" }, true},
		{"auth configured", func(c *Config) {
			c.AuthzURL = "https://auth.example.com"
			c.AuthzClientID = "client"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
