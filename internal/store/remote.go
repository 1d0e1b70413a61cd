// remote.go
//
// Persistence service for the car scanner app: scans, collections and stats
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carscan-store.
// carscan-store is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carscan-store is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carscan-store.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// ErrNoUser is returned when a remote repository is requested without a signed-in user
var ErrNoUser = errors.New("remote store requires a signed-in user")

// remoteReadComment tags every remote read so it can be picked out of the server's query log
const remoteReadComment = "carscan:remote"

// RemoteStore keeps scan and collection documents for signed-in users.
// Every document is scoped by user id; one user never sees another's data.
type RemoteStore struct {
	db    *gorm.DB
	log   zerolog.Logger
	opt   options
	watch *watchers
}

// NewRemoteStore wraps a migrated remote database handle
func NewRemoteStore(db *gorm.DB, opts ...Option) *RemoteStore {
	o := newOptions(opts)
	return &RemoteStore{db: db, log: o.log, opt: o, watch: newWatchers()}
}

// DB exposes the handle for health checks
func (s *RemoteStore) DB() *gorm.DB {
	return s.db
}

// ForUser returns the repository view of one user's documents
func (s *RemoteStore) ForUser(userID string) Repository {
	return &userRepository{store: s, userID: userID}
}

// Watch streams the user's collections, starting with the current state and
// followed by a fresh snapshot after every collection change. The channel is
// closed when ctx is done.
func (s *RemoteStore) Watch(ctx context.Context, userID string) (<-chan []models.Collection, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	// subscribe before the first read so no change in between is missed
	ch := s.watch.subscribe(ctx, userID)

	repo := &userRepository{store: s, userID: userID}
	initial, err := repo.GetCollections(ctx)
	if err != nil {
		s.watch.unsubscribe(userID, ch)
		return nil, err
	}
	s.watch.offer(userID, ch, initial)

	return ch, nil
}

type userRepository struct {
	store  *RemoteStore
	userID string
}

var _ Repository = (*userRepository)(nil)

func (r *userRepository) fail(op string, kind types.ErrorKind, err error) error {
	return fail(r.store.log.With().Str("user", r.userID).Logger(), SourceRemote, op, kind, err)
}

// owned scopes a write to the user's documents
func (r *userRepository) owned(ctx context.Context) *gorm.DB {
	return r.store.db.WithContext(ctx).Where("user_id = ?", r.userID)
}

// reads scopes a read to the user's documents and tags it
func (r *userRepository) reads(ctx context.Context) *gorm.DB {
	return r.owned(ctx).Clauses(hints.Comment("select", remoteReadComment))
}

func scansOf(rows []models.RemoteScan) []models.Scan {
	return lo.Map(rows, func(row models.RemoteScan, _ int) models.Scan {
		return row.Scan
	})
}

// Initialize provisions the Favorites collection for the user
func (r *userRepository) Initialize(ctx context.Context) error {
	if r.userID == "" {
		return r.fail("initialize", types.KindInit, ErrNoUser)
	}
	if err := r.ensureFavorites(ctx); err != nil {
		return r.fail("initialize", types.KindInit, err)
	}
	return nil
}

// ensureFavorites creates the user's default collection if it is missing
func (r *userRepository) ensureFavorites(ctx context.Context) error {
	var count int64
	if err := r.owned(ctx).
		Model(&models.RemoteCollection{}).
		Where("is_default = ?", true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count default collection: %w", err)
	}
	if count > 0 {
		return nil
	}

	favorites := models.RemoteCollection{
		ID:        uuid.NewString(),
		UserID:    r.userID,
		Name:      models.FavoritesName,
		Icon:      models.FavoritesIcon,
		IsDefault: true,
		Cars:      datatypes.JSONSlice[models.CarSnapshot]{},
	}
	if err := r.store.db.WithContext(ctx).Create(&favorites).Error; err != nil {
		return fmt.Errorf("create default collection: %w", err)
	}

	r.store.log.Debug().Str("user", r.userID).Str("collection", favorites.ID).Msg("provisioned favorites")
	return nil
}

func (r *userRepository) SaveScan(ctx context.Context, scan models.Scan) (models.Scan, error) {
	row := models.RemoteScan{UserID: r.userID, Scan: scan}
	if err := r.store.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return models.Scan{}, r.fail("saveScan", types.KindWrite, err)
	}
	return scan, nil
}

func (r *userRepository) GetRecentScans(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	limit, offset = normalizePage(limit, offset)

	var rows []models.RemoteScan
	if err := r.reads(ctx).
		Clauses(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.fail("getRecentScans", types.KindRead, err)
	}
	return scansOf(rows), nil
}

func (r *userRepository) GetSavedCollection(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	limit, offset = normalizePage(limit, offset)

	var rows []models.RemoteScan
	if err := r.reads(ctx).
		Where(isSaved).
		Clauses(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.fail("getSavedCollection", types.KindRead, err)
	}
	return scansOf(rows), nil
}

func (r *userRepository) ToggleSavedScan(ctx context.Context, id string) (bool, error) {
	result := r.owned(ctx).
		Model(&models.RemoteScan{}).
		Where("id = ?", id).
		Update("isSaved", toggleSaved())
	if result.Error != nil {
		return false, r.fail("toggleSavedScan", types.KindWrite, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) SearchScans(ctx context.Context, query string) ([]models.Scan, error) {
	pattern := likePattern(query)

	var rows []models.RemoteScan
	if err := r.reads(ctx).
		Where(searchCondition, pattern, pattern).
		Clauses(newestFirst).
		Find(&rows).Error; err != nil {
		return nil, r.fail("searchScans", types.KindRead, err)
	}
	return scansOf(rows), nil
}

// GetCollections lists the user's collections, Favorites first, provisioning it if needed
func (r *userRepository) GetCollections(ctx context.Context) ([]models.Collection, error) {
	if err := r.ensureFavorites(ctx); err != nil {
		return nil, r.fail("getCollections", types.KindRead, err)
	}

	docs, err := r.collectionDocs(ctx)
	if err != nil {
		return nil, r.fail("getCollections", types.KindRead, err)
	}

	return lo.Map(docs, func(doc models.RemoteCollection, _ int) models.Collection {
		return doc.Collection()
	}), nil
}

func (r *userRepository) collectionDocs(ctx context.Context) ([]models.RemoteCollection, error) {
	var docs []models.RemoteCollection
	err := r.reads(ctx).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "is_default"}, Desc: true},
			{Column: clause.Column{Name: "created_at"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&docs).Error
	return orEmpty(docs), err
}

func (r *userRepository) CreateCollection(ctx context.Context, name, icon string) (string, error) {
	if icon == "" {
		icon = models.DefaultCollectionIcon
	}

	doc := models.RemoteCollection{
		ID:     uuid.NewString(),
		UserID: r.userID,
		Name:   name,
		Icon:   icon,
		Cars:   datatypes.JSONSlice[models.CarSnapshot]{},
	}
	if err := r.store.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", r.fail("createCollection", types.KindWrite, err)
	}

	r.publish(ctx)
	return doc.ID, nil
}

// AddToCollection stores a snapshot of car in the collection. A car already
// present is replaced in place with the new snapshot.
func (r *userRepository) AddToCollection(ctx context.Context, collectionID string, car models.Scan) error {
	if car.ID == "" {
		return ErrMissingCarID
	}

	err := r.updateCars(ctx, collectionID, false, func(cars []models.CarSnapshot) []models.CarSnapshot {
		snapshot := models.CarSnapshot{Scan: car, AddedAt: r.store.opt.now().UnixMilli()}
		_, index, found := lo.FindIndexOf(cars, func(c models.CarSnapshot) bool {
			return c.ID == car.ID
		})
		if found {
			cars[index] = snapshot
			return cars
		}
		return append(cars, snapshot)
	})
	if errors.Is(err, ErrCollectionNotFound) {
		return err
	}
	if err != nil {
		return r.fail("addToCollection", types.KindWrite, err)
	}

	r.publish(ctx)
	return nil
}

func (r *userRepository) RemoveFromCollection(ctx context.Context, collectionID, carID string) error {
	err := r.updateCars(ctx, collectionID, true, func(cars []models.CarSnapshot) []models.CarSnapshot {
		return lo.Reject(cars, func(c models.CarSnapshot, _ int) bool {
			return c.ID == carID
		})
	})
	if err != nil {
		return r.fail("removeFromCollection", types.KindWrite, err)
	}

	r.publish(ctx)
	return nil
}

// updateCars rewrites a collection's snapshots under a row lock. A missing
// collection is ErrCollectionNotFound unless missingOK is set.
func (r *userRepository) updateCars(ctx context.Context, collectionID string, missingOK bool, change func([]models.CarSnapshot) []models.CarSnapshot) error {
	return r.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.RemoteCollection
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", collectionID, r.userID).
			First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if missingOK {
				return nil
			}
			return ErrCollectionNotFound
		}
		if err != nil {
			return err
		}

		cars := change(append([]models.CarSnapshot{}, doc.Cars...))
		return tx.Model(&doc).Update("cars", datatypes.JSONSlice[models.CarSnapshot](cars)).Error
	})
}

// DeleteCollection removes a user collection. The default collection is protected.
func (r *userRepository) DeleteCollection(ctx context.Context, collectionID string) error {
	if collectionID == models.FavoritesID {
		return ErrProtectedCollection
	}

	var docs []models.RemoteCollection
	if err := r.owned(ctx).Where("id = ?", collectionID).Limit(1).Find(&docs).Error; err != nil {
		return r.fail("deleteCollection", types.KindWrite, err)
	}
	if len(docs) == 0 {
		return nil
	}
	if docs[0].IsDefault {
		return ErrProtectedCollection
	}

	if err := r.owned(ctx).Where("id = ?", collectionID).Delete(&models.RemoteCollection{}).Error; err != nil {
		return r.fail("deleteCollection", types.KindWrite, err)
	}

	r.publish(ctx)
	return nil
}

// GetStats derives the aggregates from the user's scans and collection snapshots
func (r *userRepository) GetStats(ctx context.Context) (models.Stats, error) {
	cutoff := r.store.opt.now().Add(-StatsWindow).UnixMilli()

	var stats models.Stats
	if err := r.reads(ctx).Model(&models.RemoteScan{}).Count(&stats.TotalScans).Error; err != nil {
		return models.Stats{}, r.fail("getStats", types.KindRead, err)
	}
	if err := r.reads(ctx).Model(&models.RemoteScan{}).
		Where(since("timestamp", cutoff)).
		Count(&stats.WeeklyScans).Error; err != nil {
		return models.Stats{}, r.fail("getStats", types.KindRead, err)
	}

	docs, err := r.collectionDocs(ctx)
	if err != nil {
		return models.Stats{}, r.fail("getStats", types.KindRead, err)
	}
	snapshots := lo.FlatMap(docs, func(doc models.RemoteCollection, _ int) []models.CarSnapshot {
		return doc.Cars
	})
	saved := lo.Uniq(lo.Map(snapshots, func(c models.CarSnapshot, _ int) string {
		return c.ID
	}))
	recent := lo.Uniq(lo.FilterMap(snapshots, func(c models.CarSnapshot, _ int) (string, bool) {
		return c.ID, c.AddedAt > cutoff
	}))
	stats.TotalSaved = int64(len(saved))
	stats.NewSaves = int64(len(recent))

	return stats, nil
}

// ClearAllData deletes the user's scans and empties every collection, which are kept
func (r *userRepository) ClearAllData(ctx context.Context) error {
	err := r.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", r.userID).Delete(&models.RemoteScan{}).Error; err != nil {
			return fmt.Errorf("delete scans: %w", err)
		}
		if err := tx.Model(&models.RemoteCollection{}).
			Where("user_id = ?", r.userID).
			Update("cars", datatypes.JSONSlice[models.CarSnapshot]{}).Error; err != nil {
			return fmt.Errorf("empty collections: %w", err)
		}
		return nil
	})
	if err != nil {
		return r.fail("clearAllData", types.KindWrite, err)
	}

	r.publish(ctx)
	return nil
}

// publish pushes a fresh collections snapshot to the user's watchers
func (r *userRepository) publish(ctx context.Context) {
	if !r.store.watch.has(r.userID) {
		return
	}
	docs, err := r.collectionDocs(ctx)
	if err != nil {
		r.store.log.Warn().Err(err).Str("user", r.userID).Msg("failed to refresh watched collections")
		return
	}
	r.store.watch.publish(r.userID, lo.Map(docs, func(doc models.RemoteCollection, _ int) models.Collection {
		return doc.Collection()
	}))
}
