// Package store holds the scan and collection repositories: the on-device
// SQLite store, the per-user remote document store, and the provider that
// picks one of them from the caller's sign-in state.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SourceLocal  = "local"
	SourceRemote = "remote"

	// DefaultLimit applies when a caller asks for a non-positive page size
	DefaultLimit = 50

	// StatsWindow is the trailing window for the weekly aggregates
	StatsWindow = 7 * 24 * time.Hour
)

// Repository is the data source behind every screen. The local and remote
// implementations are interchangeable and never synchronized.
type Repository interface {
	Initialize(ctx context.Context) error
	SaveScan(ctx context.Context, scan models.Scan) (models.Scan, error)
	GetRecentScans(ctx context.Context, limit, offset int) ([]models.Scan, error)
	GetSavedCollection(ctx context.Context, limit, offset int) ([]models.Scan, error)
	ToggleSavedScan(ctx context.Context, id string) (bool, error)
	SearchScans(ctx context.Context, query string) ([]models.Scan, error)
	GetCollections(ctx context.Context) ([]models.Collection, error)
	CreateCollection(ctx context.Context, name, icon string) (string, error)
	AddToCollection(ctx context.Context, collectionID string, car models.Scan) error
	RemoveFromCollection(ctx context.Context, collectionID, carID string) error
	DeleteCollection(ctx context.Context, collectionID string) error
	GetStats(ctx context.Context) (models.Stats, error)
	ClearAllData(ctx context.Context) error
}

// rejection is an expected, caller-caused failure
type rejection struct {
	msg string
}

func (r *rejection) Error() string   { return r.msg }
func (r *rejection) Outcome() string { return "rejected" }

var (
	// ErrProtectedCollection is returned when deleting the Favorites collection
	ErrProtectedCollection error = &rejection{"the Favorites collection cannot be deleted"}

	// ErrCollectionNotFound is returned when adding to a collection the user does not own
	ErrCollectionNotFound error = &rejection{"collection not found"}

	// ErrMissingCarID is returned when a membership is requested for a car without an id
	ErrMissingCarID error = &rejection{"car id is required"}
)

// Option configures a store
type Option func(*options)

type options struct {
	log zerolog.Logger
	now func() time.Time
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used to report failed operations
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces time.Now, for deterministic timestamps and stats windows
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// normalizePage applies the default page size and clamps negative offsets
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// likePattern builds a substring pattern using '!' as the escape character.
// Case folding happens in SQL so both sides are folded by the same rules.
func likePattern(query string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(query) + "%"
}

const searchCondition = "(LOWER(name) LIKE LOWER(?) ESCAPE '!' OR LOWER(manufacturer) LIKE LOWER(?) ESCAPE '!')"

var newestFirst = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

var isSaved = clause.Eq{Column: clause.Column{Name: "isSaved"}, Value: true}

// toggleSaved flips the saved flag portably across sqlite, mysql, postgres and sqlserver
func toggleSaved() clause.Expr {
	return gorm.Expr("CASE WHEN ? = ? THEN ? ELSE ? END", clause.Column{Name: "isSaved"}, true, false, true)
}

func since(column string, cutoff int64) clause.Gt {
	return clause.Gt{Column: clause.Column{Name: column}, Value: cutoff}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// fail logs a failed operation and wraps it as a StorageError
func fail(log zerolog.Logger, source, op string, kind types.ErrorKind, err error) error {
	log.Error().Err(err).Str("source", source).Str("op", op).Msg("store operation failed")
	return types.NewStorageError(source, op, kind, err)
}
