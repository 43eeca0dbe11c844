package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository on the given session.
func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

// ByID implements repository.AccountRepository. With forUpdate set, the row is
// selected FOR UPDATE and stays locked until the enclosing transaction ends.
func (r *accountRepository) ByID(ctx context.Context, id string, forUpdate bool) (*domain.Account, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row Account
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapAccountRow(&row)
}

// Save implements repository.AccountRepository as an upsert on the id.
func (r *accountRepository) Save(ctx context.Context, acc *domain.Account) error {
	row := Account{
		ID:           acc.ID,
		Name:         acc.Name,
		BalanceCents: acc.Balance.Cents(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "balance_cents", "updated_at"}),
		}).
		Create(&row).Error
}

func mapAccountRow(row *Account) (*domain.Account, error) {
	balance, err := money.FromCentsForBalance(row.BalanceCents)
	if err != nil {
		return nil, fmt.Errorf("account %s: corrupt balance: %w", row.ID, err)
	}
	return domain.NewAccount(row.ID, row.Name, balance), nil
}
