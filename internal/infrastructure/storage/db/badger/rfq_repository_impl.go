package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

const rfqIDSequence = "rfq_id"

type rfqRepositoryImpl struct {
	db *DbManager
}

func newRFQRepositoryImpl(db *DbManager) domain.RFQRepository {
	return rfqRepositoryImpl{db}
}

func (r rfqRepositoryImpl) AddRFQ(
	ctx context.Context, rfq *domain.RFQ,
) (uint64, error) {
	id, err := r.db.nextInSequence(ctx, rfqIDSequence)
	if err != nil {
		return 0, err
	}

	rfq.Id = id
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxInsert(tx, id, rfq)
	} else {
		err = r.db.store.Insert(id, rfq)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r rfqRepositoryImpl) GetRFQ(
	ctx context.Context, id uint64,
) (*domain.RFQ, error) {
	var rfq domain.RFQ
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxGet(tx, id, &rfq)
	} else {
		err = r.db.store.Get(id, &rfq)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrRFQNotFound
		}
		return nil, err
	}
	return &rfq, nil
}

func (r rfqRepositoryImpl) GetAllRFQs(
	ctx context.Context,
) ([]*domain.RFQ, error) {
	query := (&badgerhold.Query{}).SortBy("Id")

	var rfqs []domain.RFQ
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxFind(tx, &rfqs, query)
	} else {
		err = r.db.store.Find(&rfqs, query)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*domain.RFQ, 0, len(rfqs))
	for i := range rfqs {
		list = append(list, &rfqs[i])
	}
	return list, nil
}

func (r rfqRepositoryImpl) UpdateRFQ(
	ctx context.Context, id uint64,
	updateFn func(rfq *domain.RFQ) (*domain.RFQ, error),
) error {
	rfq, err := r.GetRFQ(ctx, id)
	if err != nil {
		return err
	}

	updated, err := updateFn(rfq)
	if err != nil {
		return err
	}

	if tx, ok := r.db.tx(ctx); ok {
		return r.db.store.TxUpdate(tx, id, updated)
	}
	return r.db.store.Update(id, updated)
}
