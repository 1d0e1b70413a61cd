// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/database"
	"github.com/localnerve/carscan-store/internal/logging"
	"github.com/localnerve/carscan-store/internal/services"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so stdout stays valid JSON
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	localDB, err := database.OpenLocal(cfg.LocalDBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local database")
	}
	defer database.Close(localDB)

	var remoteDB *gorm.DB
	if cfg.RemoteEnabled() {
		remoteDB, err = database.Connect(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to remote database")
		}
		defer database.Close(remoteDB)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Perform health check
	result := services.HealthCheck(ctx, cfg, localDB, remoteDB, log)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal health check result")
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
}
