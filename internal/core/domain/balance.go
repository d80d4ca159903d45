package domain

import (
	"github.com/holiman/uint256"
)

// Balance is the custodial amount of a token held for an account, separate
// from any external asset holding. Balances never go negative.
type Balance struct {
	Account string
	Token   string
	Amount  *uint256.Int
}

// NewBalance returns a zero balance for the given key.
func NewBalance(account, token string) *Balance {
	return &Balance{Account: account, Token: token, Amount: uint256.NewInt(0)}
}

// Add credits the balance.
func (b *Balance) Add(amount *uint256.Int) {
	b.Amount = new(uint256.Int).Add(b.Amount, amount)
}

// Sub debits the balance, failing without mutation if it cannot cover amount.
func (b *Balance) Sub(amount *uint256.Int) error {
	if b.Amount.Lt(amount) {
		return ErrInsufficientBalance
	}
	b.Amount = new(uint256.Int).Sub(b.Amount, amount)
	return nil
}

// Covers returns whether the balance can pay the given amount.
func (b *Balance) Covers(amount *uint256.Int) bool {
	return !b.Amount.Lt(amount)
}

// Fulfillment is the write-once record marking an RFQ as settled.
type Fulfillment struct {
	RFQId     uint64
	Timestamp int64
}
