package dbbadger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

type settlementRepositoryImpl struct {
	db *DbManager
}

func newSettlementRepositoryImpl(db *DbManager) domain.SettlementRepository {
	return settlementRepositoryImpl{db}
}

func balanceKey(account, token string) string {
	return fmt.Sprintf("%s/%s", account, token)
}

func (r settlementRepositoryImpl) GetOrCreateBalance(
	ctx context.Context, account, token string,
) (*domain.Balance, error) {
	var balance domain.Balance
	var err error
	key := balanceKey(account, token)
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxGet(tx, key, &balance)
	} else {
		err = r.db.store.Get(key, &balance)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.NewBalance(account, token), nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r settlementRepositoryImpl) GetBalancesForAccount(
	ctx context.Context, account string,
) ([]*domain.Balance, error) {
	query := badgerhold.Where("Account").Eq(account).SortBy("Token")

	var balances []domain.Balance
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxFind(tx, &balances, query)
	} else {
		err = r.db.store.Find(&balances, query)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Balance, 0, len(balances))
	for i := range balances {
		list = append(list, &balances[i])
	}
	return list, nil
}

func (r settlementRepositoryImpl) UpdateBalances(
	ctx context.Context, keys []domain.BalanceKey,
	updateFn func(balances []*domain.Balance) error,
) error {
	// Duplicate keys share a single loaded balance so paired mutations on
	// the same (account, token) entry compose instead of overwriting.
	balances := make([]*domain.Balance, 0, len(keys))
	byKey := make(map[domain.BalanceKey]*domain.Balance, len(keys))
	for _, key := range keys {
		balance, ok := byKey[key]
		if !ok {
			var err error
			balance, err = r.GetOrCreateBalance(ctx, key.Account, key.Token)
			if err != nil {
				return err
			}
			byKey[key] = balance
		}
		balances = append(balances, balance)
	}

	if err := updateFn(balances); err != nil {
		return err
	}

	for key, balance := range byKey {
		storeKey := balanceKey(key.Account, key.Token)
		var err error
		if tx, ok := r.db.tx(ctx); ok {
			err = r.db.store.TxUpsert(tx, storeKey, balance)
		} else {
			err = r.db.store.Upsert(storeKey, balance)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r settlementRepositoryImpl) AddFulfillment(
	ctx context.Context, fulfillment *domain.Fulfillment,
) error {
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxInsert(tx, fulfillment.RFQId, fulfillment)
	} else {
		err = r.db.store.Insert(fulfillment.RFQId, fulfillment)
	}
	if err == badgerhold.ErrKeyExists {
		return domain.ErrAlreadyFulfilled
	}
	return err
}

func (r settlementRepositoryImpl) GetFulfillment(
	ctx context.Context, rfqID uint64,
) (*domain.Fulfillment, error) {
	var fulfillment domain.Fulfillment
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxGet(tx, rfqID, &fulfillment)
	} else {
		err = r.db.store.Get(rfqID, &fulfillment)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &fulfillment, nil
}
