// root.go
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
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/database"
	"github.com/localnerve/carscan-store/internal/images"
	"github.com/localnerve/carscan-store/internal/logging"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cli holds what every subcommand shares once the store is open
type cli struct {
	envFile   string
	dbPath    string
	imagesDir string

	log   zerolog.Logger
	db    *gorm.DB
	repo  *store.LocalStore
	scans *services.ScanService
	imgs  *images.Store
}

// newRootCommand builds the command tree. The caller closes the returned cli
// after Execute, whether or not the command failed.
func newRootCommand() (*cobra.Command, *cli) {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:          "carscan",
		Short:        "Car scanner local store CLI",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&c.envFile, "env", "f", "", "path to a .env file")
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "local database file (overrides LOCAL_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&c.imagesDir, "images", "", "images directory (overrides IMAGES_DIR)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.open(cmd)
	}

	rootCmd.AddCommand(
		c.initCommand(),
		c.scansCommand(),
		c.savedCommand(),
		c.searchCommand(),
		c.toggleCommand(),
		c.collectionsCommand(),
		c.statsCommand(),
		c.clearCommand(),
	)

	return rootCmd, c
}

// open loads configuration, opens the local database and makes sure the schema exists
func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.LocalDBPath = c.dbPath
	}
	if c.imagesDir != "" {
		cfg.ImagesDir = c.imagesDir
	}

	c.log = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	c.db, err = database.OpenLocal(cfg.LocalDBPath, logging.Component(c.log, "sqlite"))
	if err != nil {
		return err
	}

	c.repo = store.NewLocalStore(c.db, store.WithLogger(logging.Component(c.log, "store")))
	if err := c.repo.Initialize(cmd.Context()); err != nil {
		return err
	}

	c.imgs = images.NewOS(filepath.Join(cfg.ImagesDir, "local"))
	c.scans = services.NewScanService(c.imgs, images.NewOS(filepath.Join(cfg.ImagesDir, "users")), logging.Component(c.log, "scans"))
	return nil
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := database.Close(c.db)
	c.db = nil
	return err
}

// printJSON writes v to the command's output as indented JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
