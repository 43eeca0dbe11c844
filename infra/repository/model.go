package repository

import "time"

// Account is the accounts table row.
type Account struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"not null"`
	BalanceCents int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Withdraw is the account_withdraws table row.
type Withdraw struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	AccountID    string `gorm:"type:uuid;index;not null"`
	Amount       float64
	AmountCents  int64      `gorm:"not null"`
	Method       string     `gorm:"type:varchar(16);not null"`
	Scheduled    bool       `gorm:"not null;default:false;index:idx_withdraws_due,priority:1"`
	ScheduledFor *time.Time `gorm:"index:idx_withdraws_due,priority:3"`
	Done         bool       `gorm:"not null;default:false;index:idx_withdraws_due,priority:2"`
	Error        bool       `gorm:"not null;default:false"`
	ErrorReason  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Pix *WithdrawPix `gorm:"foreignKey:WithdrawID"`
}

// TableName specifies the table name for the Withdraw model.
func (Withdraw) TableName() string {
	return "account_withdraws"
}

// WithdrawPix is the PIX sub-record of a withdraw. A withdraw without one is
// treated as incomplete and excluded from point reads.
type WithdrawPix struct {
	WithdrawID string `gorm:"type:uuid;primaryKey"`
	Type       string `gorm:"type:varchar(32);not null"`
	Key        string `gorm:"not null"`
}

// TableName specifies the table name for the WithdrawPix model.
func (WithdrawPix) TableName() string {
	return "account_withdraw_pix"
}
