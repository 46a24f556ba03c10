package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/storage/postgres"
	"github.com/steveyegge/partsbin/internal/storage/sqlite"
	"github.com/steveyegge/partsbin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStorage opens a fresh store for backend, skipping when postgres is unreachable
func setupStorage(t *testing.T, backend string) storage.Storage {
	t.Helper()
	ctx := context.Background()

	switch backend {
	case "sqlite":
		store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "inventory.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	case "postgres":
		cfg := postgres.DefaultConfig()
		if host := os.Getenv("PARTSBIN_TEST_PG_HOST"); host != "" {
			cfg.Host = host
		}
		if port, err := strconv.Atoi(os.Getenv("PARTSBIN_TEST_PG_PORT")); err == nil {
			cfg.Port = port
		}
		if db := os.Getenv("PARTSBIN_TEST_PG_DATABASE"); db != "" {
			cfg.Database = db
		}
		if user := os.Getenv("PARTSBIN_TEST_PG_USER"); user != "" {
			cfg.User = user
		}
		if pass := os.Getenv("PARTSBIN_TEST_PG_PASSWORD"); pass != "" {
			cfg.Password = pass
		}
		store, err := postgres.New(ctx, cfg)
		if err != nil {
			t.Skipf("PostgreSQL not available: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		clearStore(t, store)
		return store
	}

	t.Fatalf("unknown backend %q", backend)
	return nil
}

// clearStore removes all rows through the public interface
func clearStore(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()

	components, err := store.ListComponents(ctx, types.ComponentFilter{})
	require.NoError(t, err)
	for _, c := range components {
		require.NoError(t, store.DeleteComponent(ctx, c.ID))
	}
	_, err = store.PruneExclusions(ctx)
	require.NoError(t, err)
}

func forEachBackend(t *testing.T, fn func(t *testing.T, store storage.Storage)) {
	for _, backend := range []string{"sqlite", "postgres"} {
		t.Run(backend, func(t *testing.T) {
			fn(t, setupStorage(t, backend))
		})
	}
}

func TestBackendsShareNotFoundSemantics(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Storage) {
		ctx := context.Background()

		_, err := store.GetComponent(ctx, 424242)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		err = store.UpdateComponent(ctx, 424242, map[string]interface{}{"quantity": 1})
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		err = store.DeleteComponent(ctx, 424242)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		err = store.UpdateComponent(ctx, 1, map[string]interface{}{"id": 7})
		assert.True(t, errors.Is(err, storage.ErrInvalidField))
	})
}

func TestBackendsOrderListings(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Storage) {
		ctx := context.Background()

		for _, c := range []types.Component{
			{Name: "b", Category: "IC"},
			{Name: "a", Category: "Resistor"},
			{Name: "a", Category: "IC"},
		} {
			c := c
			require.NoError(t, store.CreateComponent(ctx, &c))
		}

		list, err := store.ListComponents(ctx, types.ComponentFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "IC", list[0].Category)
		assert.Equal(t, "a", list[0].Name)
		assert.Equal(t, "b", list[1].Name)
		assert.Equal(t, "Resistor", list[2].Category)
	})
}

// TestConcurrentDeletesOfSameComponent checks that exactly one of several
// transactions that read-then-delete the same row succeeds.
func TestConcurrentDeletesOfSameComponent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Storage) {
		ctx := context.Background()

		c := &types.Component{Name: "LM358", Category: "IC", Quantity: 2}
		require.NoError(t, store.CreateComponent(ctx, c))

		var wg sync.WaitGroup
		var succeeded, notFound atomic.Int32
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.RunInTransaction(ctx, func(tx storage.Tx) error {
					if _, err := tx.GetComponent(ctx, c.ID); err != nil {
						return err
					}
					return tx.DeleteComponent(ctx, c.ID)
				})
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, storage.ErrNotFound):
					notFound.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(4), notFound.Load())
	})
}
