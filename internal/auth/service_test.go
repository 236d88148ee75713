package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"previnet/internal/worker"
)

func newWorkerStore(t *testing.T) *worker.InMemoryStore {
	t.Helper()
	store := worker.NewInMemoryStore()
	require.NoError(t, store.Create(context.Background(), &worker.Worker{
		ID:         "w1",
		Name:       "Juan Pérez",
		ExternalID: "12.345.678-9",
		PIN:        "482913",
		CreatedAt:  time.Now(),
	}))
	return store
}

func TestLoginWithPIN(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newWorkerStore(t), []byte("test-key"), time.Hour)

	token, w, err := svc.LoginWithPIN(ctx, "482913")
	require.NoError(t, err)
	require.Equal(t, "w1", w.ID)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "w1", claims.WorkerID)
	require.Equal(t, RoleWorker, claims.Role)

	_, _, err = svc.LoginWithPIN(ctx, "000000")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.LoginWithPIN(ctx, "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc := NewService(newWorkerStore(t), []byte("test-key"), time.Hour,
		WithClock(func() time.Time { return issuedAt }))

	token, _, err := svc.LoginWithPIN(ctx, "482913")
	require.NoError(t, err)

	live := NewService(newWorkerStore(t), []byte("test-key"), time.Hour)
	_, err = live.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newWorkerStore(t), []byte("test-key"), time.Hour)
	token, _, err := svc.LoginWithPIN(ctx, "482913")
	require.NoError(t, err)

	other := NewService(newWorkerStore(t), []byte("other-key"), time.Hour)
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}
