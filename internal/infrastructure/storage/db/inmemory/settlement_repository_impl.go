package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

type settlementInmemoryStore struct {
	locker       sync.Mutex
	balances     map[domain.BalanceKey]*domain.Balance
	fulfillments map[uint64]*domain.Fulfillment
}

type settlementRepositoryImpl struct {
	store *settlementInmemoryStore
}

// NewSettlementRepositoryImpl returns a new inmemory SettlementRepository
// implementation.
func NewSettlementRepositoryImpl() domain.SettlementRepository {
	return &settlementRepositoryImpl{
		store: &settlementInmemoryStore{
			balances:     make(map[domain.BalanceKey]*domain.Balance),
			fulfillments: make(map[uint64]*domain.Fulfillment),
		},
	}
}

func (r *settlementRepositoryImpl) GetOrCreateBalance(
	_ context.Context, account, token string,
) (*domain.Balance, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return copyBalance(r.getOrCreateBalance(account, token)), nil
}

func (r *settlementRepositoryImpl) GetBalancesForAccount(
	_ context.Context, account string,
) ([]*domain.Balance, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	balances := make([]*domain.Balance, 0)
	for key, balance := range r.store.balances {
		if key.Account == account {
			balances = append(balances, copyBalance(balance))
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Token < balances[j].Token
	})
	return balances, nil
}

// UpdateBalances hands deep copies to the updateFn and writes them all back
// only if it returns without error, so a failing update is a no-op.
// Duplicate keys share a single copy, so paired mutations on the same
// (account, token) entry compose instead of overwriting each other.
func (r *settlementRepositoryImpl) UpdateBalances(
	_ context.Context, keys []domain.BalanceKey,
	updateFn func(balances []*domain.Balance) error,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	balances := make([]*domain.Balance, 0, len(keys))
	byKey := make(map[domain.BalanceKey]*domain.Balance, len(keys))
	for _, key := range keys {
		balance, ok := byKey[key]
		if !ok {
			balance = copyBalance(r.getOrCreateBalance(key.Account, key.Token))
			byKey[key] = balance
		}
		balances = append(balances, balance)
	}

	if err := updateFn(balances); err != nil {
		return err
	}

	for key, balance := range byKey {
		r.store.balances[key] = balance
	}
	return nil
}

func (r *settlementRepositoryImpl) AddFulfillment(
	_ context.Context, fulfillment *domain.Fulfillment,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.fulfillments[fulfillment.RFQId]; ok {
		return domain.ErrAlreadyFulfilled
	}

	stored := *fulfillment
	r.store.fulfillments[fulfillment.RFQId] = &stored
	return nil
}

func (r *settlementRepositoryImpl) GetFulfillment(
	_ context.Context, rfqID uint64,
) (*domain.Fulfillment, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	fulfillment, ok := r.store.fulfillments[rfqID]
	if !ok {
		return nil, nil
	}
	copied := *fulfillment
	return &copied, nil
}

func (r *settlementRepositoryImpl) getOrCreateBalance(
	account, token string,
) *domain.Balance {
	key := domain.BalanceKey{Account: account, Token: token}
	balance, ok := r.store.balances[key]
	if !ok {
		balance = domain.NewBalance(account, token)
		r.store.balances[key] = balance
	}
	return balance
}

func copyBalance(balance *domain.Balance) *domain.Balance {
	copied := *balance
	copied.Amount = balance.Amount.Clone()
	return &copied
}
