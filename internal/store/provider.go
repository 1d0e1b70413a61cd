// provider.go
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
	"github.com/localnerve/carscan-store/internal/metrics"
	"github.com/rs/zerolog"
)

// Provider resolves the active repository from the caller's sign-in state.
// Signed-out callers use the on-device store, signed-in callers their remote documents.
type Provider struct {
	local  Repository
	remote *RemoteStore
	log    zerolog.Logger
	rec    metrics.Recorder
}

// NewProvider builds a provider. remote may be nil when no remote database is configured,
// in which case every caller is served from local.
func NewProvider(local Repository, remote *RemoteStore, log zerolog.Logger, rec metrics.Recorder) *Provider {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Provider{local: local, remote: remote, log: log, rec: rec}
}

// For returns the repository for userID; an empty userID means signed out
func (p *Provider) For(userID string) Repository {
	if userID == "" {
		return p.Local()
	}
	if p.remote == nil {
		p.log.Warn().Str("user", userID).Msg("remote store not configured, serving signed-in user from local store")
		return p.Local()
	}
	return Instrument(p.remote.ForUser(userID), SourceRemote, p.rec)
}

// Local returns the on-device repository
func (p *Provider) Local() Repository {
	return Instrument(p.local, SourceLocal, p.rec)
}

// Remote returns the remote store, or nil when it is not configured
func (p *Provider) Remote() *RemoteStore {
	return p.remote
}
