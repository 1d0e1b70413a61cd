// identification.go
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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/types"
)

// NotACarSentinel is the exact answer the identification model gives for non-car photos
const NotACarSentinel = "NOT_A_CAR"

var (
	// ErrNotACar is returned when the model reports the photo is not a car
	ErrNotACar = errors.New("image is not a car")

	// ErrNoIdentification is returned when the model answer carries no usable JSON object
	ErrNoIdentification = errors.New("no identification in model response")
)

type identifiedSpecs struct {
	Engine       types.FlexString `json:"engine"`
	Power        types.FlexString `json:"power"`
	Torque       types.FlexString `json:"torque"`
	Transmission types.FlexString `json:"transmission"`
	Acceleration types.FlexString `json:"acceleration"`
	TopSpeed     types.FlexString `json:"topSpeed"`
	Price        types.FlexString `json:"price"`
}

// Identification is the car description returned by the identification model
type Identification struct {
	Name            string                 `json:"name"`
	Category        string                 `json:"category"`
	Manufacturer    string                 `json:"manufacturer"`
	Specs           identifiedSpecs        `json:"specs"`
	ProductionYears types.FlexString       `json:"productionYears"`
	Rarity          models.Rarity          `json:"rarity"`
	Description     string                 `json:"description"`
	AlsoKnownAs     types.FlexList[string] `json:"alsoKnownAs"`
	Year            types.FlexString       `json:"year"`
	MatchAccuracy   types.FlexString       `json:"matchAccuracy"`
}

// ParseIdentification decodes the model's answer. The answer may wrap the JSON
// object in prose or a code fence; the first object found is used.
func ParseIdentification(text string) (Identification, error) {
	if strings.Contains(text, NotACarSentinel) {
		return Identification{}, ErrNotACar
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return Identification{}, ErrNoIdentification
	}

	var ident Identification
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&ident); err != nil {
		return Identification{}, fmt.Errorf("%w: %v", ErrNoIdentification, err)
	}
	ident.Name = strings.TrimSpace(ident.Name)
	if ident.Name == "" {
		return Identification{}, fmt.Errorf("%w: missing name", ErrNoIdentification)
	}

	return ident, nil
}

// Scan builds the scan record for this identification
func (i Identification) Scan(id string, timestamp int64, imagePaths []string) models.Scan {
	aka := i.AlsoKnownAs.Slice()
	if imagePaths == nil {
		imagePaths = []string{}
	}

	return models.Scan{
		ID:           id,
		Name:         i.Name,
		Category:     i.Category,
		Manufacturer: i.Manufacturer,
		Specs: models.Specs{
			Engine:       i.Specs.Engine.String(),
			Power:        i.Specs.Power.String(),
			Torque:       i.Specs.Torque.String(),
			Transmission: i.Specs.Transmission.String(),
			Acceleration: i.Specs.Acceleration.String(),
			TopSpeed:     i.Specs.TopSpeed.String(),
			Price:        i.Specs.Price.String(),
		},
		ProductionYears: i.ProductionYears.String(),
		Rarity:          i.Rarity,
		Description:     i.Description,
		AlsoKnownAs:     aka,
		Year:            i.Year.String(),
		MatchAccuracy:   i.MatchAccuracy.String(),
		Timestamp:       timestamp,
		Images:          imagePaths,
	}
}
