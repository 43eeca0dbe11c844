package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/amirasaad/pixflow/pkg/repository"
	"gorm.io/gorm"
)

type withdrawRepository struct {
	db    *gorm.DB
	clock domain.Clock
}

// NewWithdrawRepository creates a withdraw repository on the given session.
// The clock stamps state transitions so tests can pin time.
func NewWithdrawRepository(db *gorm.DB, clock domain.Clock) *withdrawRepository {
	return &withdrawRepository{db: db, clock: clock}
}

// Create implements repository.WithdrawRepository. The withdraw row and its
// PIX sub-record are written together.
func (r *withdrawRepository) Create(ctx context.Context, create repository.WithdrawCreate) error {
	now := r.clock.Now()
	row := Withdraw{
		ID:           create.ID,
		AccountID:    create.AccountID,
		Amount:       create.Amount.Amount(),
		AmountCents:  create.Amount.Cents(),
		Method:       create.Method,
		Scheduled:    create.Scheduled,
		ScheduledFor: create.ScheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
		Pix: &WithdrawPix{
			WithdrawID: create.ID,
			Type:       string(create.Pix.Type()),
			Key:        create.Pix.Key(),
		},
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// ByID implements repository.WithdrawRepository. A row whose PIX sub-record
// is missing yields nil.
func (r *withdrawRepository) ByID(ctx context.Context, id string) (*domain.Withdraw, error) {
	var row Withdraw
	err := r.db.WithContext(ctx).Preload("Pix").First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if row.Pix == nil {
		return nil, nil
	}
	return mapWithdrawRow(&row)
}

// MarkDone implements repository.WithdrawRepository.
func (r *withdrawRepository) MarkDone(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Withdraw{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"done":       true,
			"error":      false,
			"updated_at": r.clock.Now(),
		}).Error
}

// MarkFailed implements repository.WithdrawRepository.
func (r *withdrawRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.db.WithContext(ctx).
		Model(&Withdraw{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"done":         true,
			"error":        true,
			"error_reason": reason,
			"updated_at":   r.clock.Now(),
		}).Error
}

// FindDueScheduled implements repository.WithdrawRepository.
func (r *withdrawRepository) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.Withdraw, error) {
	var rows []Withdraw
	err := r.db.WithContext(ctx).
		Preload("Pix").
		Where("scheduled = ? AND done = ? AND scheduled_for <= ?", true, false, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Withdraw, 0, len(rows))
	for i := range rows {
		if rows[i].Pix == nil {
			continue
		}
		w, err := mapWithdrawRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func mapWithdrawRow(row *Withdraw) (*domain.Withdraw, error) {
	amount, err := money.FromCents(row.AmountCents)
	if err != nil {
		return nil, fmt.Errorf("withdraw %s: corrupt amount: %w", row.ID, err)
	}

	var reason string
	if row.ErrorReason != nil {
		reason = *row.ErrorReason
	}

	return domain.NewWithdraw(
		row.ID,
		row.AccountID,
		amount,
		domain.RestorePixKey(row.Pix.Type, row.Pix.Key),
		row.Method,
		row.Scheduled,
		row.ScheduledFor,
		row.Done,
		row.Error,
		reason,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}
