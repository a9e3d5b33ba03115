// Package dbtest hands out migrated Postgres databases to tests.
//
// ECHOMEMO_TEST_DATABASE_URL points at an existing server. Without it a
// postgres container is started once per test binary; tests skip when no
// container runtime is available. Every call gets its own schema.
package dbtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"echomemo/internal/db"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const EnvDatabaseURL = "ECHOMEMO_TEST_DATABASE_URL"

var (
	once   sync.Once
	server string
	setErr error
)

// Open returns a gorm handle on a fresh, migrated schema.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in short mode")
	}

	once.Do(func() { server, setErr = serverDSN() })
	if setErr != nil {
		t.Skipf("no postgres available (set %s): %v", EnvDatabaseURL, setErr)
	}

	admin, err := db.Connect(server)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := admin.Exec("create schema " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	gdb, err := db.Connect(withSearchPath(server, schema))
	if err != nil {
		t.Fatalf("connect %s: %v", schema, err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = admin.Exec("drop schema " + schema + " cascade").Error
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func serverDSN() (string, error) {
	if dsn := os.Getenv(EnvDatabaseURL); dsn != "" {
		return dsn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "echomemo",
				"POSTGRES_PASSWORD": "echomemo",
				"POSTGRES_DB":       "echomemo",
			},
			// the server restarts once after init
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://echomemo:echomemo@%s:%s/echomemo?sslmode=disable", host, port.Port()), nil
}

// withSearchPath sets search_path as a connection runtime parameter.
func withSearchPath(dsn, schema string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}
