// local.go
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
	"fmt"

	"github.com/localnerve/carscan-store/data"
	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalStore is the on-device repository. It owns its database handle; the
// caller that opened the handle closes it.
type LocalStore struct {
	db  *gorm.DB
	log zerolog.Logger
	opt options
	ids collectionIDs
}

var _ Repository = (*LocalStore)(nil)

// NewLocalStore wraps an open SQLite handle
func NewLocalStore(db *gorm.DB, opts ...Option) *LocalStore {
	o := newOptions(opts)
	return &LocalStore{db: db, log: o.log, opt: o}
}

// DB exposes the handle for health checks
func (s *LocalStore) DB() *gorm.DB {
	return s.db
}

func (s *LocalStore) fail(op string, kind types.ErrorKind, err error) error {
	return fail(s.log, SourceLocal, op, kind, err)
}

// Initialize creates the schema if needed and makes sure Favorites exists
func (s *LocalStore) Initialize(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	for _, stmt := range data.Statements(data.LocalSchema) {
		if err := db.Exec(stmt).Error; err != nil {
			return s.fail("initialize", types.KindInit, err)
		}
	}

	favorites := models.Collection{
		ID:   models.FavoritesID,
		Name: models.FavoritesName,
		Icon: models.FavoritesIcon,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&favorites).Error; err != nil {
		return s.fail("initialize", types.KindInit, err)
	}

	return nil
}

// SaveScan inserts or replaces the scan keyed by its id
func (s *LocalStore) SaveScan(ctx context.Context, scan models.Scan) (models.Scan, error) {
	row := scan
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error; err != nil {
		return models.Scan{}, s.fail("saveScan", types.KindWrite, err)
	}
	return scan, nil
}

// GetRecentScans pages through all scans, newest first
func (s *LocalStore) GetRecentScans(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	limit, offset = normalizePage(limit, offset)

	var scans []models.Scan
	if err := s.db.WithContext(ctx).
		Clauses(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&scans).Error; err != nil {
		return nil, s.fail("getRecentScans", types.KindRead, err)
	}
	return orEmpty(scans), nil
}

// GetSavedCollection pages through saved scans, newest first
func (s *LocalStore) GetSavedCollection(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	limit, offset = normalizePage(limit, offset)

	var scans []models.Scan
	if err := s.db.WithContext(ctx).
		Where(isSaved).
		Clauses(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&scans).Error; err != nil {
		return nil, s.fail("getSavedCollection", types.KindRead, err)
	}
	return orEmpty(scans), nil
}

// ToggleSavedScan flips the saved flag, reporting whether a row was changed
func (s *LocalStore) ToggleSavedScan(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Scan{}).
		Where("id = ?", id).
		Update("isSaved", toggleSaved())
	if result.Error != nil {
		return false, s.fail("toggleSavedScan", types.KindWrite, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SearchScans matches name or manufacturer, case-insensitively
func (s *LocalStore) SearchScans(ctx context.Context, query string) ([]models.Scan, error) {
	pattern := likePattern(query)

	var scans []models.Scan
	if err := s.db.WithContext(ctx).
		Where(searchCondition, pattern, pattern).
		Clauses(newestFirst).
		Find(&scans).Error; err != nil {
		return nil, s.fail("searchScans", types.KindRead, err)
	}
	return orEmpty(scans), nil
}

// memberRow is one row of the membership join
type memberRow struct {
	CollectionID string `gorm:"column:collection_id"`
	models.Scan
}

// GetCollections returns every collection with its cars in the order they were added
func (s *LocalStore) GetCollections(ctx context.Context) ([]models.Collection, error) {
	db := s.db.WithContext(ctx)

	var collections []models.Collection
	if err := db.Order("rowid").Find(&collections).Error; err != nil {
		return nil, s.fail("getCollections", types.KindRead, err)
	}

	var rows []memberRow
	if err := db.Table("collection_cars AS cc").
		Select("cc.collection_id, s.*").
		Joins("JOIN scans AS s ON s.id = cc.car_id").
		Order("cc.timestamp ASC, cc.rowid ASC").
		Scan(&rows).Error; err != nil {
		return nil, s.fail("getCollections", types.KindRead, err)
	}

	byCollection := lo.GroupBy(rows, func(r memberRow) string {
		return r.CollectionID
	})
	for i := range collections {
		collections[i].Cars = lo.Map(byCollection[collections[i].ID], func(r memberRow, _ int) models.Scan {
			return r.Scan
		})
	}

	return orEmpty(collections), nil
}

// CreateCollection inserts a collection and returns its generated id
func (s *LocalStore) CreateCollection(ctx context.Context, name, icon string) (string, error) {
	if icon == "" {
		icon = models.DefaultCollectionIcon
	}

	collection := models.Collection{
		ID:   s.ids.next(s.opt.now()),
		Name: name,
		Icon: icon,
	}
	if err := s.db.WithContext(ctx).Create(&collection).Error; err != nil {
		return "", s.fail("createCollection", types.KindWrite, err)
	}
	return collection.ID, nil
}

// AddToCollection records the membership; re-adding refreshes its timestamp
func (s *LocalStore) AddToCollection(ctx context.Context, collectionID string, car models.Scan) error {
	if car.ID == "" {
		return ErrMissingCarID
	}

	membership := models.CollectionCar{
		CollectionID: collectionID,
		CarID:        car.ID,
		Timestamp:    s.opt.now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_id"}, {Name: "car_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp"}),
	}).Create(&membership).Error; err != nil {
		return s.fail("addToCollection", types.KindWrite, err)
	}
	return nil
}

// RemoveFromCollection deletes the membership if present
func (s *LocalStore) RemoveFromCollection(ctx context.Context, collectionID, carID string) error {
	if err := s.db.WithContext(ctx).
		Where("collection_id = ? AND car_id = ?", collectionID, carID).
		Delete(&models.CollectionCar{}).Error; err != nil {
		return s.fail("removeFromCollection", types.KindWrite, err)
	}
	return nil
}

// DeleteCollection removes a collection and its memberships in one transaction.
// Favorites is left untouched, memberships included.
func (s *LocalStore) DeleteCollection(ctx context.Context, collectionID string) error {
	if collectionID == models.FavoritesID {
		return ErrProtectedCollection
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", collectionID).
			Delete(&models.CollectionCar{}).Error; err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Where("id = ?", collectionID).
			Delete(&models.Collection{}).Error; err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.fail("deleteCollection", types.KindWrite, err)
	}
	return nil
}

// GetStats computes the dashboard aggregates
func (s *LocalStore) GetStats(ctx context.Context) (models.Stats, error) {
	db := s.db.WithContext(ctx)
	cutoff := s.opt.now().Add(-StatsWindow).UnixMilli()

	var stats models.Stats
	queries := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalScans, db.Model(&models.Scan{})},
		{&stats.WeeklyScans, db.Model(&models.Scan{}).Where(since("timestamp", cutoff))},
		{&stats.TotalSaved, db.Model(&models.CollectionCar{}).Distinct("car_id")},
		{&stats.NewSaves, db.Model(&models.CollectionCar{}).Distinct("car_id").Where(since("timestamp", cutoff))},
	}
	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			return models.Stats{}, s.fail("getStats", types.KindRead, err)
		}
	}

	return stats, nil
}

// ClearAllData deletes every scan and membership. Collections, Favorites included, are kept.
func (s *LocalStore) ClearAllData(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := tx.Delete(&models.CollectionCar{}).Error; err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Delete(&models.Scan{}).Error; err != nil {
			return fmt.Errorf("delete scans: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.fail("clearAllData", types.KindWrite, err)
	}
	return nil
}
