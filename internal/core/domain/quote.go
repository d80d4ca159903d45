package domain

import (
	"github.com/holiman/uint256"
)

// Quote is a single sealed maker offer for an RFQ. Quotes form an ordered,
// append-only sequence per RFQ; a maker may hold several entries at once,
// each with its own commitment.
type Quote struct {
	RFQId      uint64
	Maker      string
	Commitment Commitment
	QuoteOut   *uint256.Int
	Revealed   bool
	Index      int
}

// NewQuote validates the commit-phase arguments and returns an unrevealed
// quote entry. The per-RFQ index is assigned by the repository on insertion.
func NewQuote(rfqID uint64, maker string, commitment Commitment) (*Quote, error) {
	if commitment.IsZero() {
		return nil, ErrEmptyCommitment
	}
	return &Quote{
		RFQId:      rfqID,
		Maker:      maker,
		Commitment: commitment,
	}, nil
}

// RevealQuote scans the quotes of an RFQ for an unrevealed entry submitted by
// the caller whose commitment matches keccak256(quoteOut, salt), and marks it
// revealed. Entries are scoped to their submitter: another maker's entry is
// never matched, even when its commitment would.
func RevealQuote(
	quotes []*Quote, maker string, quoteOut *uint256.Int, salt Salt,
) (*Quote, error) {
	if quoteOut.IsZero() {
		return nil, ErrInvalidQuote
	}

	commitment := QuoteCommitment(quoteOut, salt)
	for _, q := range quotes {
		if q.Maker != maker || q.Revealed {
			continue
		}
		if q.Commitment == commitment {
			q.QuoteOut = quoteOut.Clone()
			q.Revealed = true
			return q, nil
		}
	}
	return nil, ErrNoMatchingCommitment
}
