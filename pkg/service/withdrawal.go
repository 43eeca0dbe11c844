// Package service orchestrates the PIX withdrawal use cases on top of the
// repository ports. Every operation runs inside a single unit-of-work
// transaction; business failures at debit time are persisted as terminal
// withdraw state instead of propagating as errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/amirasaad/pixflow/pkg/repository"
)

// IDGenerator produces globally unique withdraw identifiers.
type IDGenerator interface {
	NewID() string
}

// WithdrawalService is the withdrawal domain service. It owns the
// transaction boundary: each public operation is one atomic unit of work.
type WithdrawalService struct {
	uow    repository.UnitOfWork
	ids    IDGenerator
	clock  domain.Clock
	logger *slog.Logger
}

// NewWithdrawalService wires the service with its collaborators.
func NewWithdrawalService(
	uow repository.UnitOfWork,
	ids IDGenerator,
	clock domain.Clock,
	logger *slog.Logger,
) *WithdrawalService {
	return &WithdrawalService{uow: uow, ids: ids, clock: clock, logger: logger}
}

// Request creates a withdrawal and, for the immediate path, debits the
// account in the same transaction.
//
// The pending row is persisted before any balance check, so a record exists
// even when the account lookup fails. Scheduled withdrawals stop there; the
// batch processor picks them up once due. The returned id identifies the
// withdraw regardless of outcome: success or failure is discovered by
// re-reading the row, not by an error from this method. Only infrastructure
// failures return an error (and roll the transaction back).
func (s *WithdrawalService) Request(
	ctx context.Context,
	accountID string,
	amount money.Money,
	pix domain.PixKey,
	schedule domain.Schedule,
) (string, error) {
	wid := s.ids.NewID()

	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		if err := tx.Withdraws().Create(ctx, repository.WithdrawCreate{
			ID:           wid,
			AccountID:    accountID,
			Amount:       amount,
			Method:       domain.MethodPix,
			Scheduled:    schedule.IsScheduled(),
			ScheduledFor: schedule.At(),
			Pix:          pix,
		}); err != nil {
			return err
		}

		if schedule.IsScheduled() {
			return nil
		}

		acc, err := tx.Accounts().ByID(ctx, accountID, true)
		if err != nil {
			return err
		}
		if acc == nil {
			s.logger.Warn("withdraw against unknown account",
				"withdraw_id", wid, "account_id", accountID)
			return tx.Withdraws().MarkFailed(ctx, wid, domain.ReasonAccountNotFound)
		}

		if err := acc.Debit(amount); err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return tx.Withdraws().MarkFailed(ctx, wid, domain.ReasonInsufficientFunds)
			}
			return err
		}

		if err := tx.Accounts().Save(ctx, acc); err != nil {
			return err
		}
		return tx.Withdraws().MarkDone(ctx, wid)
	})
	if err != nil {
		return "", err
	}
	return wid, nil
}

// ProcessScheduled executes one due scheduled withdrawal in its own
// transaction. A missing row yields (nil, nil); an already-done row is
// returned untouched, which is what makes duplicate invocations of the batch
// job safe. The returned withdraw is re-read from storage so the caller
// observes committed state.
func (s *WithdrawalService) ProcessScheduled(ctx context.Context, withdrawID string) (*domain.Withdraw, error) {
	var out *domain.Withdraw

	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		w, err := tx.Withdraws().ByID(ctx, withdrawID)
		if err != nil {
			return err
		}
		if w == nil {
			s.logger.Warn("due withdraw vanished before processing", "withdraw_id", withdrawID)
			return nil
		}
		if w.Done {
			out = w
			return nil
		}

		acc, err := tx.Accounts().ByID(ctx, w.AccountID, true)
		if err != nil {
			return err
		}

		// Re-check under the account lock: a concurrent batch pass may have
		// finished this withdraw while we waited for the row. The done flag
		// is only authoritative once the lock is held.
		w, err = tx.Withdraws().ByID(ctx, withdrawID)
		if err != nil {
			return err
		}
		if w == nil {
			return nil
		}
		if w.Done {
			out = w
			return nil
		}

		switch {
		case acc == nil:
			err = tx.Withdraws().MarkFailed(ctx, w.ID, domain.ReasonAccountNotFound)
		default:
			if debitErr := acc.Debit(w.Amount); debitErr != nil {
				if !errors.Is(debitErr, domain.ErrInsufficientFunds) {
					return debitErr
				}
				err = tx.Withdraws().MarkFailed(ctx, w.ID, domain.ReasonInsufficientFunds)
			} else {
				if err = tx.Accounts().Save(ctx, acc); err == nil {
					err = tx.Withdraws().MarkDone(ctx, w.ID)
				}
			}
		}
		if err != nil {
			return err
		}

		out, err = tx.Withdraws().ByID(ctx, withdrawID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithdrawByID re-reads a withdraw so callers can inspect its committed
// outcome after Request.
func (s *WithdrawalService) WithdrawByID(ctx context.Context, withdrawID string) (*domain.Withdraw, error) {
	var out *domain.Withdraw
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Withdraws().ByID(ctx, withdrawID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindDueScheduled lists scheduled withdrawals that are due at now, earliest
// first, capped at limit.
func (s *WithdrawalService) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.Withdraw, error) {
	var due []*domain.Withdraw
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		var err error
		due, err = tx.Withdraws().FindDueScheduled(ctx, now, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}
