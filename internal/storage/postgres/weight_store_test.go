package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-strategy-lab/internal/storage"
)

func TestModelWeightStore_LoadBeforeSave(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelWeightStore(pool)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestModelWeightStore_SaveAndLoad(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelWeightStore(pool)

	payload := []byte(`{"version":1}`)
	require.NoError(t, store.Save(ctx, payload))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, loaded)
}

func TestModelWeightStore_SaveReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelWeightStore(pool)

	require.NoError(t, store.Save(ctx, []byte("first")))
	require.NoError(t, store.Save(ctx, []byte("second")))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), loaded)
}

func TestModelWeightStore_SaveEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelWeightStore(pool)

	err := store.Save(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
