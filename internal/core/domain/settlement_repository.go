package domain

import "context"

// SettlementRepository is the abstraction for any kind of database intended
// to persist custodial balances and fulfillment records.
type SettlementRepository interface {
	// GetOrCreateBalance returns the balance for (account, token), creating a
	// zero entry if missing.
	GetOrCreateBalance(ctx context.Context, account, token string) (*Balance, error)
	// GetBalancesForAccount returns all token balances held for an account.
	GetBalancesForAccount(ctx context.Context, account string) ([]*Balance, error)
	// UpdateBalances commits changes to a set of balances in a transactional
	// way. The keys are (account, token) pairs; the updateFn receives the
	// balances in key order and every mutation is applied atomically.
	UpdateBalances(
		ctx context.Context, keys []BalanceKey,
		updateFn func(balances []*Balance) error,
	) error
	// AddFulfillment stores the write-once settled marker for an RFQ, or
	// ErrAlreadyFulfilled if one exists.
	AddFulfillment(ctx context.Context, fulfillment *Fulfillment) error
	// GetFulfillment returns the fulfillment record, or nil if the RFQ has not
	// settled yet.
	GetFulfillment(ctx context.Context, rfqID uint64) (*Fulfillment, error)
}

// BalanceKey identifies a custodial balance entry.
type BalanceKey struct {
	Account string
	Token   string
}
