package services

import (
	"context"
	"fmt"

	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Local        string            `json:"local"`
	Remote       string            `json:"remote"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	if r.ErrorMessage == "" {
		r.ErrorMessage = fmt.Sprintf("%s: %v", message, err)
	} else {
		r.ErrorMessage += fmt.Sprintf("; %s: %v", message, err)
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// HealthCheck pings the local database, the remote database and the authorizer.
// Components that are not configured report "disabled"; remote may be nil.
func HealthCheck(ctx context.Context, cfg *config.Config, local, remote *gorm.DB, log zerolog.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Remote:     "disabled",
		Authorizer: "disabled",
		Details:    make(map[string]string),
	}

	if err := ping(ctx, local); err != nil {
		result.Local = "unreachable"
		result.fail("local", "Local database ping failed", err)
		log.Warn().Err(err).Msg("health check failed - local database")
	} else {
		result.Local = "ok"
		result.Details["local_path"] = cfg.LocalDBPath
	}

	if remote != nil {
		if err := ping(ctx, remote); err != nil {
			result.Remote = "unreachable"
			result.fail("remote", "Remote database ping failed", err)
			log.Warn().Err(err).Msg("health check failed - remote database")
		} else {
			result.Remote = "ok"
			result.Details["remote_type"] = cfg.DBType
			result.Details["remote_name"] = cfg.DBDatabase
		}
	}

	if cfg.AuthEnabled() {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.fail("authorizer", "Authorizer ping failed", err)
			log.Warn().Err(err).Msg("health check failed - authorizer")
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if result.Status == "healthy" {
		log.Debug().Msg("health check passed")
	}

	return result
}
