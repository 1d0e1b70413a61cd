package services

import (
	"context"
	"testing"

	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheckLocalOnly(t *testing.T) {
	cfg := &config.Config{LocalDBPath: "carscan.db"}
	local := testutil.OpenSQLite(t)

	result := HealthCheck(context.Background(), cfg, local, nil, zerolog.Nop())

	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Local)
	assert.Equal(t, "disabled", result.Remote)
	assert.Equal(t, "disabled", result.Authorizer)
	assert.Empty(t, result.ErrorMessage)
}

func TestHealthCheckReportsFailures(t *testing.T) {
	cfg := &config.Config{DBType: "sqlite", AuthzURL: "http://127.0.0.1:1"}
	local := testutil.OpenSQLite(t)
	remote := testutil.OpenSQLite(t)

	sqlDB, err := remote.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Close())

	result := HealthCheck(context.Background(), cfg, local, remote, zerolog.Nop())

	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "ok", result.Local)
	assert.Equal(t, "unreachable", result.Remote)
	assert.Equal(t, "unreachable", result.Authorizer)
	assert.Contains(t, result.ErrorMessage, "Remote database ping failed")
	assert.Contains(t, result.ErrorMessage, "Authorizer ping failed")
}
