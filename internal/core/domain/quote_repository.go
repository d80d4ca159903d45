package domain

import "context"

// QuoteRepository is the abstraction for any kind of database intended to
// persist the per-RFQ quote sequences and the write-once selections.
type QuoteRepository interface {
	// AddQuote appends a quote to the RFQ's sequence and returns its index.
	AddQuote(ctx context.Context, quote *Quote) (int, error)
	// GetQuotesForRFQ returns the RFQ's quotes in commit order.
	GetQuotesForRFQ(ctx context.Context, rfqID uint64) ([]*Quote, error)
	// UpdateQuotes commits changes to an RFQ's quote sequence in a
	// transactional way.
	UpdateQuotes(
		ctx context.Context, rfqID uint64,
		updateFn func(quotes []*Quote) ([]*Quote, error),
	) error
	// AddSelection stores the winner draw outcome, or ErrAlreadySelected if a
	// selection already exists for the RFQ.
	AddSelection(ctx context.Context, selection *Selection) error
	// GetSelection returns the selection for the RFQ, or ErrNoSelectionMade.
	GetSelection(ctx context.Context, rfqID uint64) (*Selection, error)
}
