package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryService implements Service with in-process storage. It mirrors the
// Redis implementation's semantics, including TTL expiry.
type MemoryService struct {
	ttl     time.Duration
	mu      sync.Mutex
	records map[string]*memoryEntry
	locks   map[string]*memoryLock
}

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

type memoryLock struct {
	fingerprint string
	expiresAt   time.Time
}

// NewMemoryService creates an in-memory idempotency cache with the given TTL.
func NewMemoryService(ttl time.Duration) *MemoryService {
	return &MemoryService{
		ttl:     ttl,
		records: make(map[string]*memoryEntry),
		locks:   make(map[string]*memoryLock),
	}
}

// Get implements Service.
func (s *MemoryService) Get(ctx context.Context, key string) (json.RawMessage, error) {
	rec, err := s.GetRecord(ctx, key)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Body, nil
}

// GetRecord implements Service.
func (s *MemoryService) GetRecord(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.records[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.records, key)
		return nil, nil
	}
	rec := entry.record
	return &rec, nil
}

// Acquire implements Service.
func (s *MemoryService) Acquire(_ context.Context, key, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, ok := s.locks[key]; ok && time.Now().Before(lock.expiresAt) {
		return false, nil
	}
	s.locks[key] = &memoryLock{fingerprint: fingerprint, expiresAt: time.Now().Add(s.ttl)}
	return true, nil
}

// InflightFingerprint implements Service.
func (s *MemoryService) InflightFingerprint(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok || time.Now().After(lock.expiresAt) {
		return "", nil
	}
	return lock.fingerprint, nil
}

// Release implements Service.
func (s *MemoryService) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, key)
	return nil
}

// Store implements Service.
func (s *MemoryService) Store(_ context.Context, key, fingerprint string, status int, headers map[string]string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = &memoryEntry{
		record: Record{
			Fingerprint: fingerprint,
			Status:      status,
			Headers:     headers,
			Body:        raw,
		},
		expiresAt: time.Now().Add(s.ttl),
	}
	delete(s.locks, key)
	return nil
}
