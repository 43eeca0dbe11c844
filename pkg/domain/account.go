package domain

import "github.com/amirasaad/pixflow/pkg/money"

// Account is the debitable balance holder. It is reconstructed from storage
// per transaction; nothing caches it across requests.
type Account struct {
	ID      string
	Name    string
	Balance money.Money
}

// NewAccount rebuilds an account from validated fields.
func NewAccount(id, name string, balance money.Money) *Account {
	return &Account{ID: id, Name: name, Balance: balance}
}

// Debit decreases the balance by amount. On insufficient funds the account is
// left untouched and ErrInsufficientFunds is returned; the caller persists the
// post-debit state on success.
func (a *Account) Debit(amount money.Money) error {
	if !a.Balance.GTE(amount) {
		return ErrInsufficientFunds
	}
	b, err := a.Balance.Minus(amount)
	if err != nil {
		return err
	}
	a.Balance = b
	return nil
}
