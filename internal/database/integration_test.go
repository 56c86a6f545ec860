package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pottytracker/internal/config"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "local_storage").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "local_storage", name)

	// Migrations are idempotent
	require.NoError(t, db.RunMigrations())
	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestDatabaseTransactions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, tx.GetDialect().UpsertStorageQuery(), "k1", `"v1"`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertStorageQuery(), "k2", `"v2"`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM local_storage").Scan(&count))
	assert.Equal(t, 1, count)

	// Upsert replaces in place
	_, err = db.ExecContext(ctx, db.Dialect.UpsertStorageQuery(), "k1", `"v3"`)
	require.NoError(t, err)
	var value string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT storage_value FROM local_storage WHERE storage_key = ?", "k1").Scan(&value))
	assert.Equal(t, `"v3"`, value)

	// Ensuring a row never overwrites an existing value
	_, err = db.ExecContext(ctx, db.Dialect.EnsureStorageRowQuery(), "k1")
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT storage_value FROM local_storage WHERE storage_key = ?", "k1").Scan(&value))
	assert.Equal(t, `"v3"`, value)

	_, err = db.ExecContext(ctx, db.Dialect.EnsureStorageRowQuery(), "k4")
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT storage_value FROM local_storage WHERE storage_key = ?", "k4").Scan(&value))
	assert.Equal(t, "", value)
}

func TestConcurrentAccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, db.Dialect.UpsertStorageQuery(), "shared", "hello")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var value string
			err := db.QueryRowContext(ctx, "SELECT storage_value FROM local_storage WHERE storage_key = ?", "shared").Scan(&value)
			assert.NoError(t, err)
			assert.Equal(t, "hello", value)
		}()
	}
	wg.Wait()
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(configFor("oracle"))
	assert.Error(t, err)
}

func configFor(kind string) config.DatabaseConfig {
	return config.DatabaseConfig{Type: kind}
}
