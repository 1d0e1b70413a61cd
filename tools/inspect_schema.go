// Prints the local schema and the tables AutoMigrate creates for the remote store.
//
//	go run tools/inspect_schema.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/localnerve/carscan-store/internal/database"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	dir, err := os.MkdirTemp("", "carscan-schema")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	local, err := database.OpenLocal(filepath.Join(dir, "local.db"), zerolog.Nop())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(local)
	if err := store.NewLocalStore(local).Initialize(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("##### local")
	printSchema(local)

	remote, err := database.OpenLocal(filepath.Join(dir, "remote.db"), zerolog.Nop())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(remote)
	if err := database.AutoMigrate(remote); err != nil {
		log.Fatal(err)
	}
	fmt.Println("\n##### remote (sqlite rendition)")
	printSchema(remote)
}

func printSchema(db *gorm.DB) {
	tables, err := db.Migrator().GetTables()
	if err != nil {
		log.Fatal(err)
	}

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		columns, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			log.Fatal(err)
		}
		for _, col := range columns {
			nullable, _ := col.Nullable()
			fmt.Printf("  %-16s %-10s nullable=%t\n", col.Name(), col.DatabaseTypeName(), nullable)
		}
	}
}
