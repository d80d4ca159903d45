package domain

import "context"

// RFQRepository is the abstraction for any kind of database intended to
// persist RFQs. Ids are assigned sequentially on insertion, entries are
// append-only and never deleted.
type RFQRepository interface {
	// AddRFQ inserts a new RFQ and returns its assigned id.
	AddRFQ(ctx context.Context, rfq *RFQ) (uint64, error)
	// GetRFQ returns the RFQ with the given id, or ErrRFQNotFound.
	GetRFQ(ctx context.Context, id uint64) (*RFQ, error)
	// GetAllRFQs returns all stored RFQs ordered by id.
	GetAllRFQs(ctx context.Context) ([]*RFQ, error)
	// UpdateRFQ commits multiple changes to the same RFQ in a transactional way.
	UpdateRFQ(
		ctx context.Context, id uint64, updateFn func(rfq *RFQ) (*RFQ, error),
	) error
}
