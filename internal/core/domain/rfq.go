package domain

import (
	"time"

	"github.com/holiman/uint256"
)

const (
	// RFQStatusCodeUndefined is the zero status of a non-existing RFQ.
	RFQStatusCodeUndefined = iota
	// RFQStatusCodeCommitted is the status of an RFQ whose trade parameters
	// are still hidden behind the commitment.
	RFQStatusCodeCommitted
	// RFQStatusCodeRevealed is the terminal status for the intent ledger, the
	// trade parameters are disclosed and bound to the commitment.
	RFQStatusCodeRevealed
)

// RFQ is the data structure representing a taker's trade intent. The amount
// and slippage fields are zero until the intent is revealed.
type RFQ struct {
	Id             uint64
	Owner          string
	TokenIn        string
	TokenOut       string
	Commitment     Commitment
	AmountIn       *uint256.Int
	MaxSlippageBps uint64
	Expiry         int64
	Status         int
}

// NewRFQ validates the commit-phase arguments and returns an RFQ in Committed
// status. The id is assigned by the repository on insertion.
func NewRFQ(
	owner, tokenIn, tokenOut string, expiry int64, commitment Commitment,
) (*RFQ, error) {
	if tokenIn == tokenOut {
		return nil, ErrSameToken
	}
	if expiry <= time.Now().Unix() {
		return nil, ErrRFQExpired
	}

	return &RFQ{
		Owner:      owner,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		Commitment: commitment,
		Expiry:     expiry,
		Status:     RFQStatusCodeCommitted,
	}, nil
}

// Reveal brings the RFQ from Committed to Revealed status by checking the
// caller's identity and the commitment preimage. The transition is one-way,
// a revealed RFQ can never be revealed again.
func (r *RFQ) Reveal(
	caller string, amountIn *uint256.Int, maxSlippageBps uint64, salt Salt,
) error {
	if caller != r.Owner {
		return ErrNotOwner
	}
	if r.Status != RFQStatusCodeCommitted {
		return ErrInvalidReveal
	}
	if IntentCommitment(amountIn, maxSlippageBps, salt) != r.Commitment {
		return ErrInvalidReveal
	}
	if maxSlippageBps > MaxSlippageBps {
		return ErrInvalidSlippage
	}
	if r.IsExpired() {
		return ErrRFQExpired
	}

	r.AmountIn = amountIn.Clone()
	r.MaxSlippageBps = maxSlippageBps
	r.Status = RFQStatusCodeRevealed
	return nil
}

// IsRevealed returns whether the trade parameters have been disclosed.
func (r *RFQ) IsRevealed() bool {
	return r.Status == RFQStatusCodeRevealed
}

// IsExpired returns whether the RFQ expiry has passed.
func (r *RFQ) IsExpired() bool {
	return time.Now().Unix() > r.Expiry
}
