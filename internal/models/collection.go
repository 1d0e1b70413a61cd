package models

const (
	// FavoritesID is the reserved collection that always exists and cannot be deleted
	FavoritesID   = "1"
	FavoritesName = "Favorites"
	FavoritesIcon = "✨"

	// DefaultCollectionIcon is used when a collection is created without an icon
	DefaultCollectionIcon = "📁"
)

// Collection is a user-named group of scans
type Collection struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Icon string `gorm:"not null" json:"icon"`
	Cars []Scan `gorm:"-" json:"cars"`
}

// CollectionCar is the membership of one scan in one collection
type CollectionCar struct {
	CollectionID string `gorm:"primaryKey;column:collection_id;size:64" json:"collectionId"`
	CarID        string `gorm:"primaryKey;column:car_id;size:64" json:"carId"`
	Timestamp    int64  `gorm:"column:timestamp" json:"timestamp"`
}

// TableName overrides the table name for Collection
func (Collection) TableName() string {
	return "collections"
}

// TableName overrides the table name for CollectionCar
func (CollectionCar) TableName() string {
	return "collection_cars"
}

// Stats are the dashboard aggregates, recomputed on every request
type Stats struct {
	TotalScans  int64 `json:"totalScans"`
	WeeklyScans int64 `json:"weeklyScans"`
	TotalSaved  int64 `json:"totalSaved"`
	NewSaves    int64 `json:"newSaves"`
}
