// scan_service.go
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

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/carscan-store/internal/images"
	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/rs/zerolog"
)

// ScanService records identified cars and clears a user's history.
// Signed-out images live under the local store; each signed-in user gets a subdirectory of users.
type ScanService struct {
	local *images.Store
	users *images.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewScanService creates the scan workflow over the two image roots
func NewScanService(local, users *images.Store, log zerolog.Logger) *ScanService {
	return &ScanService{local: local, users: users, now: time.Now, log: log}
}

// WithClock replaces the capture clock, for deterministic ids and timestamps
func (s *ScanService) WithClock(now func() time.Time) *ScanService {
	s.now = now
	return s
}

// Images returns the image store for userID; empty means signed out
func (s *ScanService) Images(userID string) (*images.Store, error) {
	if userID == "" {
		return s.local, nil
	}
	return s.users.Sub(userID)
}

// Record saves the photo and the identified scan. An empty image records the scan without one.
func (s *ScanService) Record(ctx context.Context, repo store.Repository, imgs *images.Store, ident Identification, base64Image string) (models.Scan, error) {
	captured := s.now()
	id := store.NewScanID(captured)

	if ident.Rarity != "" && !ident.Rarity.Valid() {
		s.log.Debug().Str("rarity", string(ident.Rarity)).Msg("unknown rarity label kept as given")
	}

	paths := []string{}
	if base64Image != "" {
		path, err := imgs.Save(id, base64Image)
		if err != nil {
			return models.Scan{}, fmt.Errorf("failed to save scan image: %w", err)
		}
		paths = append(paths, path)
	}

	scan, err := repo.SaveScan(ctx, ident.Scan(id, captured.UnixMilli(), paths))
	if err != nil {
		return models.Scan{}, err
	}

	s.log.Info().Str("scan", scan.ID).Str("name", scan.Name).Msg("scan recorded")
	return scan, nil
}

// ClearAll deletes every scan and membership, then the images directory
func (s *ScanService) ClearAll(ctx context.Context, repo store.Repository, imgs *images.Store) error {
	if err := repo.ClearAllData(ctx); err != nil {
		return err
	}
	if err := imgs.Clear(); err != nil {
		return err
	}

	s.log.Info().Str("images", imgs.Dir()).Msg("all scan data cleared")
	return nil
}
