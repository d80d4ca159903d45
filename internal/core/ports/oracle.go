package ports

import (
	"context"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

// PriceSource produces the oracle snapshot consumed by the selection call.
// The engine trusts the returned values as given and only enforces the
// deviation bound against the snapshot price.
type PriceSource interface {
	// TakeSnapshot returns a fresh reference price for the pair, together
	// with an identifier the selection records for auditability.
	TakeSnapshot(ctx context.Context, tokenIn, tokenOut string) (domain.PriceSnapshot, error)
}

// RandSource produces the verifiable-randomness draw consumed by the
// selection call. The engine only validates the IsSecure flag.
type RandSource interface {
	Draw(ctx context.Context) (domain.RandomDraw, error)
}
