package repository

import (
	"context"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/repository"
	"gorm.io/gorm"
)

type withdrawReadRepository struct {
	db *gorm.DB
}

// NewWithdrawReadRepository creates the listing projection on the given
// session. Reads run outside the unit of work.
func NewWithdrawReadRepository(db *gorm.DB) *withdrawReadRepository {
	return &withdrawReadRepository{db: db}
}

// ListByAccount implements repository.WithdrawReadRepository. Newest first;
// PIX keys come back masked. Rows without a PIX sub-record are listed with a
// null key so the history stays complete.
func (r *withdrawReadRepository) ListByAccount(
	ctx context.Context,
	accountID string,
	page, perPage int,
) (repository.WithdrawPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	base := r.db.WithContext(ctx).Model(&Withdraw{}).Where("account_id = ?", accountID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return repository.WithdrawPage{}, err
	}

	var rows []Withdraw
	err := r.db.WithContext(ctx).
		Preload("Pix").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return repository.WithdrawPage{}, err
	}

	items := make([]repository.WithdrawListItem, 0, len(rows))
	for i := range rows {
		items = append(items, mapWithdrawListItem(&rows[i]))
	}
	return repository.WithdrawPage{Total: total, Items: items}, nil
}

func mapWithdrawListItem(row *Withdraw) repository.WithdrawListItem {
	item := repository.WithdrawListItem{
		ID:           row.ID,
		AccountID:    row.AccountID,
		Method:       row.Method,
		Amount:       row.Amount,
		AmountCents:  row.AmountCents,
		ScheduledFor: row.ScheduledFor,
		Done:         row.Done,
		Error:        row.Error,
		ErrorReason:  row.ErrorReason,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Pix != nil {
		masked := domain.MaskKey(row.Pix.Type, row.Pix.Key)
		item.PixType = &row.Pix.Type
		item.PixKeyMasked = &masked
	}
	return item
}
