package certificate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"previnet/pkg/platform/sentinel"
)

func TestInMemoryStoreAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	record := &Record{
		EntityID:  "e1",
		WorkerID:  "w1",
		Token:     "t1",
		FileName:  "TALK_x.pdf",
		MimeType:  "application/pdf",
		Content:   []byte("%PDF-1.7"),
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Put(ctx, record))
	require.ErrorIs(t, store.Put(ctx, record), sentinel.ErrConflict)

	got, err := store.Get(ctx, "e1", "w1", "t1")
	require.NoError(t, err)
	require.Equal(t, record.FileName, got.FileName)

	// Returned records are copies; the archive is immutable.
	got.Content[0] = 'X'
	again, err := store.Get(ctx, "e1", "w1", "t1")
	require.NoError(t, err)
	require.Equal(t, byte('%'), again.Content[0])

	_, err = store.Get(ctx, "e1", "w1", "other-token")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := store.ListByWorker(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}
