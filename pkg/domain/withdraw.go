package domain

import (
	"time"

	"github.com/amirasaad/pixflow/pkg/money"
)

// MethodPix is the only withdrawal method the service supports.
const MethodPix = "PIX"

// Withdraw is a single withdrawal request. It is created in a pending shape
// and transitions exactly once to a terminal state: Done with Error=false
// (success) or Done with Error=true and ErrorReason set (failure). A done row
// is never mutated again.
type Withdraw struct {
	ID           string
	AccountID    string
	Amount       money.Money
	Pix          PixKey
	Method       string
	Scheduled    bool
	ScheduledFor *time.Time
	Done         bool
	Error        bool
	ErrorReason  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewWithdraw rebuilds a withdraw from validated storage fields.
func NewWithdraw(
	id, accountID string,
	amount money.Money,
	pix PixKey,
	method string,
	scheduled bool,
	scheduledFor *time.Time,
	done, hasError bool,
	errorReason string,
	createdAt, updatedAt time.Time,
) *Withdraw {
	return &Withdraw{
		ID:           id,
		AccountID:    accountID,
		Amount:       amount,
		Pix:          pix,
		Method:       method,
		Scheduled:    scheduled,
		ScheduledFor: scheduledFor,
		Done:         done,
		Error:        hasError,
		ErrorReason:  errorReason,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}
