package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	containerDatabase = "carscan"
	containerUser     = "carscan"
	containerPassword = "Carscan-pass-1"
)

// Database is a disposable remote database running in a container
type Database struct {
	Container testcontainers.Container
	Type      string
	Host      string
	Port      string
	Name      string
	User      string
	Password  string
}

// Config returns a configuration pointing the remote store at the container
func (d *Database) Config() *config.Config {
	return &config.Config{
		DBType:            d.Type,
		DBHost:            d.Host,
		DBPort:            d.Port,
		DBDatabase:        d.Name,
		DBUser:            d.User,
		DBPassword:        d.Password,
		DBConnectionLimit: 5,
	}
}

// Terminate stops and removes the container
func (d *Database) Terminate(ctx context.Context) error {
	return d.Container.Terminate(ctx)
}

func containerPort(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	default:
		return "3306"
	}
}

func containerEnv(dbType string) map[string]string {
	switch dbType {
	case "postgres", "postgresql":
		return map[string]string{
			"POSTGRES_PASSWORD": containerPassword,
			"POSTGRES_USER":     containerUser,
			"POSTGRES_DB":       containerDatabase,
		}
	case "sqlserver", "mssql":
		return map[string]string{
			"ACCEPT_EULA":       "Y",
			"MSSQL_SA_PASSWORD": containerPassword,
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": containerPassword,
			"MYSQL_DATABASE":      containerDatabase,
			"MYSQL_USER":          containerUser,
			"MYSQL_PASSWORD":      containerPassword,
		}
	}
}

// StartDatabase starts image as a remote database of dbType and waits until it accepts connections
func StartDatabase(ctx context.Context, dbType, image string) (*Database, error) {
	tcpPort, err := nat.NewPort("tcp", containerPort(dbType))
	if err != nil {
		return nil, fmt.Errorf("failed to create database port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort)},
			Env:          containerEnv(dbType),
			WaitingFor:   wait.ForListeningPort(tcpPort).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start database container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	db := &Database{
		Container: container,
		Type:      dbType,
		Host:      host,
		Port:      mapped.Port(),
		Name:      containerDatabase,
		User:      containerUser,
		Password:  containerPassword,
	}
	if dbType == "sqlserver" || dbType == "mssql" {
		db.Name = "master"
		db.User = "sa"
	}

	if err := db.waitReady(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return db, nil
}

// waitReady pings until the server finishes its own initialization, which
// can lag behind the listening port
func (d *Database) waitReady(ctx context.Context) error {
	var err error
	for i := 0; i < 30; i++ {
		var conn *gorm.DB
		if conn, err = database.Connect(d.Config(), zerolog.Nop()); err == nil {
			sqlDB, dbErr := conn.DB()
			if dbErr == nil {
				err = sqlDB.PingContext(ctx)
				_ = sqlDB.Close()
			} else {
				err = dbErr
			}
			if err == nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", err)
}

// RemoteDatabase starts the container named by DB_IMAGE (typed by DB_TYPE,
// default mariadb) and returns a migrated connection to it. The test is
// skipped in short mode or when DB_IMAGE is unset.
func RemoteDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	image := os.Getenv("DB_IMAGE")
	if image == "" {
		t.Skip("DB_IMAGE not set")
	}
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "mariadb"
	}

	ctx := context.Background()
	container, err := StartDatabase(ctx, dbType, image)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate database container: %v", err)
		}
	})

	db, err := database.Connect(container.Config(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	require.NoError(t, database.AutoMigrate(db))

	return db
}
