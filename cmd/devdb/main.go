package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/carscan-store/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run a disposable remote database for the carscan server.

Usage:

devdb [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to a .env file providing DB_TYPE and DB_IMAGE

example
  DB_TYPE=postgres DB_IMAGE=postgres:17 devdb
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "mariadb"
	}
	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "mariadb:11"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := testutil.StartDatabase(ctx, dbType, image)
	if err != nil {
		log.Fatalf("Failed to start database container: %v\n", err)
	}

	// print the connection settings in .env form for the server
	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		db.Type, db.Host, db.Port, db.Name, db.User, db.Password)

	<-ctx.Done()
	log.Printf("Received signal, terminating database container...\n")
	if err := db.Terminate(context.Background()); err != nil {
		log.Fatalf("Failed to terminate database container: %v\n", err)
	}
}
