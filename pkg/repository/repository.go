// Package repository defines the storage contracts consumed by the withdrawal
// domain service. Concrete implementations live in infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
)

// AccountRepository loads and persists accounts.
type AccountRepository interface {
	// ByID returns the account or nil when it does not exist. With forUpdate
	// set, the row is loaded under an exclusive lock scoped to the enclosing
	// transaction; this is the sole serialization point for concurrent debits.
	ByID(ctx context.Context, id string, forUpdate bool) (*domain.Account, error)
	// Save upserts the account by id.
	Save(ctx context.Context, acc *domain.Account) error
}

// WithdrawCreate carries the fields of a new pending withdraw row.
type WithdrawCreate struct {
	ID           string
	AccountID    string
	Amount       money.Money
	Method       string
	Scheduled    bool
	ScheduledFor *time.Time
	Pix          domain.PixKey
}

// WithdrawRepository writes withdraw rows and their PIX sub-records.
type WithdrawRepository interface {
	// Create persists a pending withdraw together with its PIX sub-record.
	Create(ctx context.Context, create WithdrawCreate) error
	// ByID returns the withdraw or nil when absent. A row whose PIX
	// sub-record is missing is treated as incomplete and also yields nil.
	ByID(ctx context.Context, id string) (*domain.Withdraw, error)
	// MarkDone moves the withdraw to the successful terminal state.
	MarkDone(ctx context.Context, id string) error
	// MarkFailed moves the withdraw to the failed terminal state.
	MarkFailed(ctx context.Context, id, reason string) error
	// FindDueScheduled returns scheduled, not-done withdrawals whose
	// execution time has arrived, earliest first, capped at limit.
	FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.Withdraw, error)
}

// WithdrawListItem is the read-side projection of a withdraw. The PIX key is
// already masked.
type WithdrawListItem struct {
	ID           string     `json:"id"`
	AccountID    string     `json:"account_id"`
	Method       string     `json:"method"`
	Amount       float64    `json:"amount"`
	AmountCents  int64      `json:"amount_cents"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Done         bool       `json:"done"`
	Error        bool       `json:"error"`
	ErrorReason  *string    `json:"error_reason"`
	PixType      *string    `json:"pix_type"`
	PixKeyMasked *string    `json:"pix_key"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WithdrawPage is one page of the listing projection.
type WithdrawPage struct {
	Total int64
	Items []WithdrawListItem
}

// WithdrawReadRepository serves the paginated listing projection.
type WithdrawReadRepository interface {
	ListByAccount(ctx context.Context, accountID string, page, perPage int) (WithdrawPage, error)
}

// Tx gives access to repositories bound to one storage transaction.
type Tx interface {
	Accounts() AccountRepository
	Withdraws() WithdrawRepository
}

// UnitOfWork runs fn inside a single atomic transaction. Any error from fn
// rolls the transaction back and is propagated to the caller.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}
