package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOTPStore(t *testing.T, ttl time.Duration) (*OTPStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewOTPStore(client, ttl), mr
}

func TestOTPStore_IssueAndVerify(t *testing.T) {
	store, _ := setupOTPStore(t, 5*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	err = store.Verify(ctx, "user@example.com", code)
	assert.NoError(t, err)

	// Consumed on success, second verify fails
	err = store.Verify(ctx, "user@example.com", code)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStore_WrongCodeLeavesOTPInPlace(t *testing.T) {
	store, _ := setupOTPStore(t, 5*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	err = store.Verify(ctx, "user@example.com", "000000")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	// The real code still works after a failed attempt
	err = store.Verify(ctx, "user@example.com", code)
	assert.NoError(t, err)
}

func TestOTPStore_Expiry(t *testing.T) {
	store, mr := setupOTPStore(t, 5*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	err = store.Verify(ctx, "user@example.com", code)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStore_ReissueReplacesCode(t *testing.T) {
	store, _ := setupOTPStore(t, 5*time.Minute)
	ctx := context.Background()

	first, err := store.Issue(ctx, "user@example.com")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, store.Verify(ctx, "user@example.com", first), ErrOTPNotFound)
	}
	assert.NoError(t, store.Verify(ctx, "user@example.com", second))
}
