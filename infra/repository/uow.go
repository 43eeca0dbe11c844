// Package repository holds the GORM-backed implementations of the storage
// ports in pkg/repository.
package repository

import (
	"context"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories handed out inside Do share the transaction
// session, so everything the callback touches commits or rolls back together.
type UoW struct {
	db    *gorm.DB
	clock domain.Clock
}

// NewUoW creates a unit of work over the given *gorm.DB.
func NewUoW(db *gorm.DB, clock domain.Clock) *UoW {
	return &UoW{db: db, clock: clock}
}

// Do implements repository.UnitOfWork. An error from fn rolls the
// transaction back and is returned to the caller.
func (u *UoW) Do(ctx context.Context, fn func(tx repository.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txSession{db: tx, clock: u.clock})
	})
}

// txSession binds the repositories to one open transaction.
type txSession struct {
	db    *gorm.DB
	clock domain.Clock
}

// Accounts implements repository.Tx.
func (s *txSession) Accounts() repository.AccountRepository {
	return NewAccountRepository(s.db)
}

// Withdraws implements repository.Tx.
func (s *txSession) Withdraws() repository.WithdrawRepository {
	return NewWithdrawRepository(s.db, s.clock)
}
