package inmemory

import (
	"context"
	"sync"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

// RepoManager is the in-memory implementation of the ledger storage, used by
// tests and by the daemon when no datadir persistence is wanted. A single
// RWMutex serializes writing transactions, which is what gives the engine its
// single-writer transaction log semantics on this backend.
type RepoManager struct {
	locker sync.RWMutex

	rfqRepository        domain.RFQRepository
	quoteRepository      domain.QuoteRepository
	settlementRepository domain.SettlementRepository
	eventRepository      domain.EventRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		rfqRepository:        NewRFQRepositoryImpl(),
		quoteRepository:      NewQuoteRepositoryImpl(),
		settlementRepository: NewSettlementRepositoryImpl(),
		eventRepository:      NewEventRepositoryImpl(),
	}
}

func (d *RepoManager) RFQRepository() domain.RFQRepository {
	return d.rfqRepository
}

func (d *RepoManager) QuoteRepository() domain.QuoteRepository {
	return d.quoteRepository
}

func (d *RepoManager) SettlementRepository() domain.SettlementRepository {
	return d.settlementRepository
}

func (d *RepoManager) EventRepository() domain.EventRepository {
	return d.eventRepository
}

// RunTransaction serializes the handler against all other writers. The
// in-memory repositories apply each mutation only after its updateFn has
// returned without error, so a failing handler observes no partial state.
func (d *RepoManager) RunTransaction(
	ctx context.Context, readOnly bool, handler func(ctx context.Context) error,
) error {
	if readOnly {
		d.locker.RLock()
		defer d.locker.RUnlock()
	} else {
		d.locker.Lock()
		defer d.locker.Unlock()
	}
	return handler(ctx)
}

func (d *RepoManager) Close() {}
