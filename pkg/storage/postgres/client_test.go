package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quotecollector/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// newSQLiteClient opens a migrated client on a throwaway sqlite file.
func newSQLiteClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()

	client, err := postgres.NewClientWithDialector(sqlite.Open(filepath.Join(t.TempDir(), "snapshot.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.AutoMigrateQuoteSnapshot())
	return client
}

// go test -v --run ^TestSQLiteClientHealthy$
func TestSQLiteClientHealthy(t *testing.T) {
	client := newSQLiteClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.True(t, client.IsHealthy(ctx))
	require.True(t, client.DB.Migrator().HasTable("quote_snapshot"))
}

// go test -v --run ^TestPostgresClientWithConfig$
// Requires QUOTECOLLECTOR_TEST_POSTGRES_DSN pointing at a live server.
func TestPostgresClientWithConfig(t *testing.T) {
	dsn := os.Getenv("QUOTECOLLECTOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("QUOTECOLLECTOR_TEST_POSTGRES_DSN not set")
	}

	client, err := postgres.NewClient(dsn)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.True(t, client.IsHealthy(ctx), "expected healthy DB connection")
	require.NoError(t, client.AutoMigrateQuoteSnapshot())
}
