//go:build integration

package verification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"previnet/internal/verification"
	"previnet/pkg/testutil/containers"
)

func TestRedisViewTracker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	tracker := verification.NewRedisViewTracker(rc.Client)

	viewed, err := tracker.Viewed(ctx, "e1", "w1")
	require.NoError(t, err)
	require.False(t, viewed)

	require.NoError(t, tracker.MarkViewed(ctx, "e1", "w1"))

	viewed, err = tracker.Viewed(ctx, "e1", "w1")
	require.NoError(t, err)
	require.True(t, viewed)

	// Views are scoped per entity and worker.
	viewed, err = tracker.Viewed(ctx, "e1", "w2")
	require.NoError(t, err)
	require.False(t, viewed)
	viewed, err = tracker.Viewed(ctx, "e2", "w1")
	require.NoError(t, err)
	require.False(t, viewed)
}
