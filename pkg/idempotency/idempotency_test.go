package idempotency_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a, err := idempotency.Fingerprint(map[string]any{
		"amount": 25.5,
		"pix":    map[string]any{"type": "email", "key": "maria@example.com"},
	})
	require.NoError(t, err)

	b, err := idempotency.Fingerprint(map[string]any{
		"pix":    map[string]any{"key": "maria@example.com", "type": "email"},
		"amount": 25.5,
	})
	require.NoError(t, err)

	assert.Equal(t, a, b, "key order must not change the fingerprint")
	assert.Len(t, a, 64)
}

func TestFingerprint_DistinguishesPayloads(t *testing.T) {
	a, err := idempotency.Fingerprint(map[string]any{"amount": 25.5})
	require.NoError(t, err)
	b, err := idempotency.Fingerprint(map[string]any{"amount": 25.51})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestMemoryService_StoreAndReplay(t *testing.T) {
	svc := idempotency.NewMemoryService(time.Minute)
	ctx := context.Background()

	body, err := svc.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, body, "miss before store")

	payload := map[string]any{"ok": true, "withdraw_id": "wid-1"}
	headers := map[string]string{"Idempotency-Key": "k1"}
	require.NoError(t, svc.Store(ctx, "k1", "fp-1", 200, headers, payload))

	rec, err := svc.GetRecord(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "fp-1", rec.Fingerprint)
	assert.Equal(t, 200, rec.Status)
	assert.Equal(t, headers, rec.Headers)

	var replayed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body, &replayed))
	assert.Equal(t, true, replayed["ok"])
	assert.Equal(t, "wid-1", replayed["withdraw_id"])
}

func TestMemoryService_AcquireLock(t *testing.T) {
	svc := idempotency.NewMemoryService(time.Minute)
	ctx := context.Background()

	ok, err := svc.Acquire(ctx, "k1", "fp-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Acquire(ctx, "k1", "fp-other")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must observe the in-flight lock")

	fp, err := svc.InflightFingerprint(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "fp-1", fp)

	// storing the response releases the lock
	require.NoError(t, svc.Store(ctx, "k1", "fp-1", 200, nil, map[string]any{"ok": true}))

	fp, err = svc.InflightFingerprint(ctx, "k1")
	require.NoError(t, err)
	assert.Empty(t, fp)

	ok, err = svc.Acquire(ctx, "k1", "fp-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryService_ReleaseDropsLockWithoutCaching(t *testing.T) {
	svc := idempotency.NewMemoryService(time.Minute)
	ctx := context.Background()

	ok, err := svc.Acquire(ctx, "k1", "fp-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Release(ctx, "k1"))

	rec, err := svc.GetRecord(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec, "release must not cache a response")

	ok, err = svc.Acquire(ctx, "k1", "fp-2")
	require.NoError(t, err)
	assert.True(t, ok, "released key is immediately reusable")
}

func TestMemoryService_TTLExpiry(t *testing.T) {
	svc := idempotency.NewMemoryService(time.Millisecond)
	ctx := context.Background()

	require.NoError(t, svc.Store(ctx, "k1", "fp-1", 200, nil, map[string]any{"ok": true}))
	time.Sleep(5 * time.Millisecond)

	rec, err := svc.GetRecord(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, rec, "expired entries behave like a miss")
}
