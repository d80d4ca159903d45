package inmemory

import (
	"context"
	"sync"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

type quoteInmemoryStore struct {
	locker     sync.Mutex
	quotes     map[uint64][]*domain.Quote
	selections map[uint64]*domain.Selection
}

type quoteRepositoryImpl struct {
	store *quoteInmemoryStore
}

// NewQuoteRepositoryImpl returns a new inmemory QuoteRepository implementation.
func NewQuoteRepositoryImpl() domain.QuoteRepository {
	return &quoteRepositoryImpl{
		store: &quoteInmemoryStore{
			quotes:     make(map[uint64][]*domain.Quote),
			selections: make(map[uint64]*domain.Selection),
		},
	}
}

func (r *quoteRepositoryImpl) AddQuote(
	_ context.Context, quote *domain.Quote,
) (int, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	index := len(r.store.quotes[quote.RFQId])

	stored := *quote
	stored.Index = index
	r.store.quotes[quote.RFQId] = append(r.store.quotes[quote.RFQId], &stored)
	quote.Index = index
	return index, nil
}

func (r *quoteRepositoryImpl) GetQuotesForRFQ(
	_ context.Context, rfqID uint64,
) ([]*domain.Quote, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return copyQuotes(r.store.quotes[rfqID]), nil
}

func (r *quoteRepositoryImpl) UpdateQuotes(
	_ context.Context, rfqID uint64,
	updateFn func(quotes []*domain.Quote) ([]*domain.Quote, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	updated, err := updateFn(copyQuotes(r.store.quotes[rfqID]))
	if err != nil {
		return err
	}

	r.store.quotes[rfqID] = updated
	return nil
}

func (r *quoteRepositoryImpl) AddSelection(
	_ context.Context, selection *domain.Selection,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.selections[selection.RFQId]; ok {
		return domain.ErrAlreadySelected
	}

	stored := *selection
	r.store.selections[selection.RFQId] = &stored
	return nil
}

func (r *quoteRepositoryImpl) GetSelection(
	_ context.Context, rfqID uint64,
) (*domain.Selection, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	selection, ok := r.store.selections[rfqID]
	if !ok {
		return nil, domain.ErrNoSelectionMade
	}
	copied := *selection
	return &copied, nil
}

func copyQuotes(quotes []*domain.Quote) []*domain.Quote {
	copied := make([]*domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		quote := *q
		copied = append(copied, &quote)
	}
	return copied
}
