package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"previnet/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	w := &Worker{
		ID:         "w1",
		Name:       "Juan Pérez",
		ExternalID: "12.345.678-9",
		PIN:        "482913",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.Create(ctx, w))

	// External ID and PIN are both unique.
	require.ErrorIs(t, store.Create(ctx, &Worker{
		ID: "w2", Name: "Dup", ExternalID: "12.345.678-9",
	}), sentinel.ErrConflict)
	require.ErrorIs(t, store.Create(ctx, &Worker{
		ID: "w3", Name: "Dup", ExternalID: "1-9", PIN: "482913",
	}), sentinel.ErrConflict)

	got, err := store.FindByExternalID(ctx, "12.345.678-9")
	require.NoError(t, err)
	require.Equal(t, "w1", got.ID)
	require.False(t, got.Enabled)

	byPIN, err := store.FindByPIN(ctx, "482913")
	require.NoError(t, err)
	require.Equal(t, "w1", byPIN.ID)

	_, err = store.FindByPIN(ctx, "")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.SetEnabled(ctx, "w1", true))
	got, err = store.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, got.Enabled)

	require.ErrorIs(t, store.SetEnabled(ctx, "missing", true), sentinel.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
