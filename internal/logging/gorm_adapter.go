package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// GormLogger adapts a zerolog.Logger to GORM's logger.Interface.
// SQL statements are logged at trace level; slow statements and
// statement errors are logged at warn level.
type GormLogger struct {
	logger        zerolog.Logger
	slowThreshold time.Duration
	silent        bool
}

// NewGormLogger creates a new GORM logger adapter. A zero slowThreshold disables slow query warnings.
func NewGormLogger(logger zerolog.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{logger: logger, slowThreshold: slowThreshold}
}

// LogMode honours gorm's Silent level so that sessions opened with
// logger.Silent stay quiet; other levels defer to the zerolog level.
func (a *GormLogger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	clone := *a
	clone.silent = level == gorm_logger.Silent
	return &clone
}

// Info logs informational messages at debug level.
func (a *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if a.silent {
		return
	}
	a.logger.Debug().Msg(fmt.Sprintf(msg, data...))
}

// Warn logs warning messages at warn level.
func (a *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if a.silent {
		return
	}
	a.logger.Warn().Msg(fmt.Sprintf(msg, data...))
}

// Error logs error messages at error level.
func (a *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if a.silent {
		return
	}
	a.logger.Error().Msg(fmt.Sprintf(msg, data...))
}

// Trace logs SQL statements and their execution details.
func (a *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if a.silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.logger.Warn().
			Err(err).
			Str("sql", sql).
			Int64("rows_affected", rows).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("query error")

	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.logger.Warn().
			Str("sql", sql).
			Int64("rows_affected", rows).
			Int64("duration_ms", elapsed.Milliseconds()).
			Dur("threshold", a.slowThreshold).
			Msg("slow query")

	default:
		a.logger.Trace().
			Str("sql", sql).
			Int64("rows_affected", rows).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("sql query")
	}
}
