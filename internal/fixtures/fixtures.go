// Package fixtures provides in-memory test doubles for the storage, clock
// and identity ports.
package fixtures

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/amirasaad/pixflow/pkg/repository"
)

// FixedClock is a Clock pinned to one instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time           { return c.Time }
func (c FixedClock) Timezone() *time.Location { return c.Time.Location() }

// SequentialIDs hands out wid-1, wid-2, ... deterministically.
type SequentialIDs struct {
	n int
}

func (s *SequentialIDs) NewID() string {
	s.n++
	return fmt.Sprintf("wid-%d", s.n)
}

type withdrawRow struct {
	id           string
	accountID    string
	amountCents  int64
	method       string
	scheduled    bool
	scheduledFor *time.Time
	pixType      string
	pixKey       string
	hasPix       bool
	done         bool
	hasError     bool
	errorReason  string
	createdAt    time.Time
	updatedAt    time.Time
}

// MemoryStore is an in-memory UnitOfWork/Tx/repository implementation with
// hooks for error injection.
type MemoryStore struct {
	accounts   map[string]*domain.Account
	withdraws  map[string]*withdrawRow
	Clock      domain.Clock
	FailByID   map[string]error // withdraw id -> error returned by WithdrawRepository.ByID
	FailCreate error
	// OnAccountLock runs when an account is loaded forUpdate, before the row
	// is returned. Tests use it to interleave work that a concurrent
	// transaction would have committed while waiting for the lock.
	OnAccountLock func(id string)
}

// NewMemoryStore builds an empty store.
func NewMemoryStore(clock domain.Clock) *MemoryStore {
	return &MemoryStore{
		accounts:  map[string]*domain.Account{},
		withdraws: map[string]*withdrawRow{},
		Clock:     clock,
		FailByID:  map[string]error{},
	}
}

// SeedAccount registers an account.
func (m *MemoryStore) SeedAccount(acc *domain.Account) {
	clone := *acc
	m.accounts[acc.ID] = &clone
}

// AccountByID returns the stored account for assertions, or nil.
func (m *MemoryStore) AccountByID(id string) *domain.Account {
	return m.accounts[id]
}

// Do implements repository.UnitOfWork. Rollback semantics are not simulated;
// the fixtures exercise business behavior, not storage atomicity.
func (m *MemoryStore) Do(_ context.Context, fn func(tx repository.Tx) error) error {
	return fn(m)
}

// Accounts implements repository.Tx.
func (m *MemoryStore) Accounts() repository.AccountRepository { return accountRepo{m} }

// Withdraws implements repository.Tx.
func (m *MemoryStore) Withdraws() repository.WithdrawRepository { return withdrawRepo{m} }

type accountRepo struct{ m *MemoryStore }

func (r accountRepo) ByID(_ context.Context, id string, forUpdate bool) (*domain.Account, error) {
	if forUpdate && r.m.OnAccountLock != nil {
		r.m.OnAccountLock(id)
	}
	acc, ok := r.m.accounts[id]
	if !ok {
		return nil, nil
	}
	clone := *acc
	return &clone, nil
}

func (r accountRepo) Save(_ context.Context, acc *domain.Account) error {
	clone := *acc
	r.m.accounts[acc.ID] = &clone
	return nil
}

type withdrawRepo struct{ m *MemoryStore }

func (r withdrawRepo) Create(_ context.Context, create repository.WithdrawCreate) error {
	if r.m.FailCreate != nil {
		return r.m.FailCreate
	}
	now := r.m.Clock.Now()
	r.m.withdraws[create.ID] = &withdrawRow{
		id:           create.ID,
		accountID:    create.AccountID,
		amountCents:  create.Amount.Cents(),
		method:       create.Method,
		scheduled:    create.Scheduled,
		scheduledFor: create.ScheduledFor,
		pixType:      string(create.Pix.Type()),
		pixKey:       create.Pix.Key(),
		hasPix:       true,
		createdAt:    now,
		updatedAt:    now,
	}
	return nil
}

func (r withdrawRepo) ByID(_ context.Context, id string) (*domain.Withdraw, error) {
	if err, ok := r.m.FailByID[id]; ok {
		return nil, err
	}
	row, ok := r.m.withdraws[id]
	if !ok || !row.hasPix {
		return nil, nil
	}
	return r.toDomain(row)
}

func (r withdrawRepo) MarkDone(_ context.Context, id string) error {
	row, ok := r.m.withdraws[id]
	if !ok {
		return fmt.Errorf("withdraw %s not found", id)
	}
	row.done = true
	row.hasError = false
	row.errorReason = ""
	row.updatedAt = r.m.Clock.Now()
	return nil
}

func (r withdrawRepo) MarkFailed(_ context.Context, id, reason string) error {
	row, ok := r.m.withdraws[id]
	if !ok {
		return fmt.Errorf("withdraw %s not found", id)
	}
	row.done = true
	row.hasError = true
	row.errorReason = reason
	row.updatedAt = r.m.Clock.Now()
	return nil
}

func (r withdrawRepo) FindDueScheduled(_ context.Context, now time.Time, limit int) ([]*domain.Withdraw, error) {
	var rows []*withdrawRow
	for _, row := range r.m.withdraws {
		if row.scheduled && !row.done && row.hasPix &&
			row.scheduledFor != nil && !row.scheduledFor.After(now) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].scheduledFor.Before(*rows[j].scheduledFor)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]*domain.Withdraw, 0, len(rows))
	for _, row := range rows {
		w, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r withdrawRepo) toDomain(row *withdrawRow) (*domain.Withdraw, error) {
	pix, err := domain.NewPixKey(row.pixType, row.pixKey)
	if err != nil {
		return nil, err
	}
	amount, err := money.FromCents(row.amountCents)
	if err != nil {
		return nil, err
	}
	return domain.NewWithdraw(
		row.id, row.accountID, amount, pix, row.method,
		row.scheduled, row.scheduledFor,
		row.done, row.hasError, row.errorReason,
		row.createdAt, row.updatedAt,
	), nil
}
