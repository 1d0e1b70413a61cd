package models

import (
	"gorm.io/datatypes"
)

// Rarity is the qualitative label the identification model assigns to a car
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityVeryRare  Rarity = "Very Rare"
	RarityUltraRare Rarity = "Ultra Rare"
)

// Rarities lists the known labels from most to least common
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityVeryRare, RarityUltraRare}

// Valid reports whether r is one of the known labels
func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

// Specs is the technical summary of an identified car
type Specs struct {
	Engine       string `json:"engine,omitempty"`
	Power        string `json:"power,omitempty"`
	Torque       string `json:"torque,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Acceleration string `json:"acceleration,omitempty"`
	TopSpeed     string `json:"topSpeed,omitempty"`
	Price        string `json:"price,omitempty"`
}

// Scan is a single car identification result
type Scan struct {
	ID              string                      `gorm:"primaryKey;size:64" json:"id"`
	Name            string                      `gorm:"not null" json:"name"`
	Category        string                      `json:"category"`
	Manufacturer    string                      `json:"manufacturer"`
	Specs           Specs                       `gorm:"column:specs" json:"specs"`
	ProductionYears string                      `gorm:"column:productionYears" json:"productionYears"`
	Rarity          Rarity                      `json:"rarity"`
	Description     string                      `json:"description"`
	AlsoKnownAs     datatypes.JSONSlice[string] `gorm:"column:alsoKnownAs" json:"alsoKnownAs"`
	Year            string                      `json:"year"`
	MatchAccuracy   string                      `gorm:"column:matchAccuracy" json:"matchAccuracy"`
	Timestamp       int64                       `gorm:"not null;index" json:"timestamp"`
	Images          datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	IsSaved         bool                        `gorm:"column:isSaved;not null" json:"isSaved"`
}

// TableName overrides the table name for Scan
func (Scan) TableName() string {
	return "scans"
}
