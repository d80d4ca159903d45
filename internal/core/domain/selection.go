package domain

import (
	"github.com/holiman/uint256"
)

// Selection is the write-once outcome of the winner draw for an RFQ. The
// oracle snapshot id and reference price used by the deviation filter are
// recorded for auditability.
type Selection struct {
	RFQId       uint64
	Maker       string
	QuoteOut    *uint256.Int
	WinnerIndex int
	SnapshotID  uint64
	RefPrice    *uint256.Int
}

// ValidQuotes filters the revealed quotes whose deviation from the reference
// price stays within maxDeviationBps, preserving the original commit order.
// The deviation is |quoteOut − refPrice| · 10000 / refPrice, computed with
// integer division on 256-bit values.
func ValidQuotes(quotes []*Quote, refPrice *uint256.Int, maxDeviationBps uint64) []*Quote {
	valid := make([]*Quote, 0, len(quotes))
	bound := uint256.NewInt(maxDeviationBps)
	bpsUnit := uint256.NewInt(MaxSlippageBps)

	for _, q := range quotes {
		if !q.Revealed {
			continue
		}
		diff := new(uint256.Int)
		if q.QuoteOut.Gt(refPrice) {
			diff.Sub(q.QuoteOut, refPrice)
		} else {
			diff.Sub(refPrice, q.QuoteOut)
		}
		deviation := diff.Mul(diff, bpsUnit)
		deviation.Div(deviation, refPrice)
		if !deviation.Gt(bound) {
			valid = append(valid, q)
		}
	}
	return valid
}

// SelectWinner runs the verifiable-random draw over the valid subset of an
// RFQ's quotes. The winner index is rngValue mod |valid|, taken within the
// filtered subset rather than the raw quote sequence, so every valid quote
// carries the same 1/|valid| chance regardless of price.
func SelectWinner(
	rfqID uint64, quotes []*Quote,
	rng RandomDraw, snapshot PriceSnapshot, maxDeviationBps uint64,
) (*Selection, error) {
	if !rng.IsSecure {
		return nil, ErrInsecureRandomness
	}
	// A zero reference price makes every deviation compute to zero, letting
	// arbitrarily distant quotes through the filter.
	if snapshot.Price == nil || snapshot.Price.IsZero() {
		return nil, ErrInvalidRefPrice
	}

	valid := ValidQuotes(quotes, snapshot.Price, maxDeviationBps)
	if len(valid) == 0 {
		return nil, ErrNoValidQuotes
	}

	count := uint256.NewInt(uint64(len(valid)))
	draw := new(uint256.Int).Mod(rng.Value, count)
	winnerIndex := int(draw.Uint64())
	winner := valid[winnerIndex]

	return &Selection{
		RFQId:       rfqID,
		Maker:       winner.Maker,
		QuoteOut:    winner.QuoteOut.Clone(),
		WinnerIndex: winnerIndex,
		SnapshotID:  snapshot.SnapshotID,
		RefPrice:    snapshot.Price.Clone(),
	}, nil
}
