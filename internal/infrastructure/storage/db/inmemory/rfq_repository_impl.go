package inmemory

import (
	"context"
	"sync"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

type rfqInmemoryStore struct {
	locker sync.Mutex
	rfqs   map[uint64]*domain.RFQ
	nextID uint64
}

type rfqRepositoryImpl struct {
	store *rfqInmemoryStore
}

// NewRFQRepositoryImpl returns a new inmemory RFQRepository implementation.
func NewRFQRepositoryImpl() domain.RFQRepository {
	return &rfqRepositoryImpl{
		store: &rfqInmemoryStore{
			rfqs:   make(map[uint64]*domain.RFQ),
			nextID: 1,
		},
	}
}

func (r *rfqRepositoryImpl) AddRFQ(
	_ context.Context, rfq *domain.RFQ,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	id := r.store.nextID
	r.store.nextID++

	stored := *rfq
	stored.Id = id
	r.store.rfqs[id] = &stored
	rfq.Id = id
	return id, nil
}

func (r *rfqRepositoryImpl) GetRFQ(
	_ context.Context, id uint64,
) (*domain.RFQ, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getRFQ(id)
}

func (r *rfqRepositoryImpl) GetAllRFQs(
	_ context.Context,
) ([]*domain.RFQ, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	rfqs := make([]*domain.RFQ, 0, len(r.store.rfqs))
	for id := uint64(1); id < r.store.nextID; id++ {
		if rfq, ok := r.store.rfqs[id]; ok {
			copied := *rfq
			rfqs = append(rfqs, &copied)
		}
	}
	return rfqs, nil
}

func (r *rfqRepositoryImpl) UpdateRFQ(
	_ context.Context, id uint64,
	updateFn func(rfq *domain.RFQ) (*domain.RFQ, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, err := r.getRFQ(id)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	r.store.rfqs[id] = updated
	return nil
}

func (r *rfqRepositoryImpl) getRFQ(id uint64) (*domain.RFQ, error) {
	rfq, ok := r.store.rfqs[id]
	if !ok {
		return nil, domain.ErrRFQNotFound
	}
	copied := *rfq
	return &copied, nil
}
