package ports

import (
	"context"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

// RepoManager gives access to the ledger repositories and to the
// single-writer transaction log semantics: every state-changing engine call
// runs inside RunTransaction, which serializes it against all others and
// guarantees that a failing call leaves no partial state behind.
type RepoManager interface {
	RFQRepository() domain.RFQRepository
	QuoteRepository() domain.QuoteRepository
	SettlementRepository() domain.SettlementRepository
	EventRepository() domain.EventRepository

	// RunTransaction runs the handler atomically: either every repository
	// mutation performed inside it is applied, or none is.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) error,
	) error

	Close()
}
