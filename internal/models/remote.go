package models

import (
	"time"

	"gorm.io/datatypes"
)

// RemoteScan is a scan document owned by a signed-in user
type RemoteScan struct {
	UserID    string `gorm:"primaryKey;size:128" json:"userId"`
	Scan      `gorm:"embedded"`
	CreatedAt time.Time `json:"createdAt"`
}

// CarSnapshot is a copy of a scan taken when it was added to a remote collection
type CarSnapshot struct {
	Scan
	AddedAt int64 `json:"addedAt"`
}

// RemoteCollection is a collection document owned by a signed-in user.
// Member cars are embedded as snapshots instead of a join table.
type RemoteCollection struct {
	ID        string                           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string                           `gorm:"size:128;not null;index" json:"userId"`
	Name      string                           `gorm:"size:255;not null" json:"name"`
	Icon      string                           `gorm:"size:32;not null" json:"icon"`
	IsDefault bool                             `gorm:"not null;default:false" json:"isDefault"`
	Cars      datatypes.JSONSlice[CarSnapshot] `json:"cars"`
	CreatedAt time.Time                        `json:"createdAt"`
}

// TableName overrides the table name for RemoteScan
func (RemoteScan) TableName() string {
	return "remote_scans"
}

// TableName overrides the table name for RemoteCollection
func (RemoteCollection) TableName() string {
	return "remote_collections"
}

// Collection converts the document to the shared collection shape, cars in insertion order
func (rc RemoteCollection) Collection() Collection {
	cars := make([]Scan, 0, len(rc.Cars))
	for _, snap := range rc.Cars {
		cars = append(cars, snap.Scan)
	}
	return Collection{ID: rc.ID, Name: rc.Name, Icon: rc.Icon, Cars: cars}
}
