// Package idempotency deduplicates client-submitted mutation requests.
//
// Every response to the withdrawal endpoint is cached under the
// client-supplied idempotency key; a retried request replays the cached
// response verbatim instead of re-executing business logic. A short-lived
// lock entry detects in-flight duplicates. Unexpected server errors are never
// cached so those requests stay retryable.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Record is the cached response envelope for one idempotency key.
type Record struct {
	Fingerprint string            `json:"fp"`
	Status      int               `json:"status"`
	Headers     map[string]string `json:"headers"`
	Body        json.RawMessage   `json:"body"`
}

// Service is the idempotency cache contract. Implementations live in
// infra/idempotency (Redis) and this package (in-memory, for tests and
// single-node setups).
type Service interface {
	// Get returns the cached response body for key, or nil on a miss.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// GetRecord returns the full cached envelope, or nil on a miss.
	GetRecord(ctx context.Context, key string) (*Record, error)
	// Acquire takes the in-flight lock for key, recording the request
	// fingerprint. It reports false when another request already holds it.
	Acquire(ctx context.Context, key, fingerprint string) (bool, error)
	// InflightFingerprint returns the fingerprint stored by Acquire, or ""
	// when no request is in flight for key.
	InflightFingerprint(ctx context.Context, key string) (string, error)
	// Store caches the final response for key and releases the lock. Both
	// success and business-error responses go through here.
	Store(ctx context.Context, key, fingerprint string, status int, headers map[string]string, body any) error
	// Release drops the in-flight lock without caching a response. Called
	// after a server error so the client can retry before the lock expires.
	Release(ctx context.Context, key string) error
}

// Fingerprint hashes a request payload deterministically. The payload is
// round-tripped through JSON so object keys are canonically sorted at every
// nesting level; two logically equal payloads always hash the same.
func Fingerprint(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var canonical any
	if err := json.Unmarshal(raw, &canonical); err != nil {
		return "", err
	}
	out, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(out)
	return hex.EncodeToString(sum[:]), nil
}
