package domain

import "errors"

var (
	// ErrSameToken is thrown when committing an RFQ with tokenIn == tokenOut.
	ErrSameToken = errors.New("tokenIn and tokenOut must be different assets")
	// ErrRFQNotFound ...
	ErrRFQNotFound = errors.New("RFQ not found")
	// ErrRFQExpired is thrown when an operation references an RFQ past its expiry.
	ErrRFQExpired = errors.New("RFQ expired")
	// ErrRFQNotRevealed is thrown when an operation requires the RFQ to be in
	// Revealed status.
	ErrRFQNotRevealed = errors.New("RFQ not revealed")
	// ErrNotOwner is thrown when the reveal caller does not own the RFQ.
	ErrNotOwner = errors.New("caller is not the RFQ owner")
	// ErrInvalidReveal is thrown when the recomputed commitment does not match
	// the stored one.
	ErrInvalidReveal = errors.New("invalid reveal, commitment mismatch")
	// ErrInvalidSlippage is thrown when maxSlippageBps exceeds 10000.
	ErrInvalidSlippage = errors.New("max slippage must not exceed 10000 bps")

	// ErrEmptyCommitment is thrown when committing the zero hash as a quote.
	ErrEmptyCommitment = errors.New("empty commitment")
	// ErrInvalidQuote is thrown when revealing a zero output amount.
	ErrInvalidQuote = errors.New("quote output amount must not be zero")
	// ErrNoMatchingCommitment is thrown when none of the caller's own
	// unrevealed commitments matches the revealed preimage.
	ErrNoMatchingCommitment = errors.New("no matching commitment for caller")

	// ErrInsecureRandomness is thrown when selection is attempted with a
	// randomness draw not flagged secure.
	ErrInsecureRandomness = errors.New("randomness draw is not secure")
	// ErrAlreadySelected is thrown when a selection already exists for the RFQ.
	ErrAlreadySelected = errors.New("winner already selected for RFQ")
	// ErrNoValidQuotes is thrown when no revealed quote passes the oracle
	// deviation filter.
	ErrNoValidQuotes = errors.New("no valid quotes within deviation bound")
	// ErrInvalidRefPrice is thrown when selection is attempted with a zero
	// reference price, which would void the deviation filter.
	ErrInvalidRefPrice = errors.New("reference price must not be zero")
	// ErrNoSelectionMade is thrown when fulfilling an RFQ without a selection.
	ErrNoSelectionMade = errors.New("no selection made for RFQ")

	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientTakerBalance is thrown when the taker's custodial balance
	// cannot cover amountIn.
	ErrInsufficientTakerBalance = errors.New("insufficient taker balance")
	// ErrInsufficientMakerBalance is thrown when the maker's custodial balance
	// cannot cover quoteOut.
	ErrInsufficientMakerBalance = errors.New("insufficient maker balance")
	// ErrAlreadyFulfilled is thrown when the RFQ has already been settled.
	ErrAlreadyFulfilled = errors.New("RFQ already fulfilled")

	// ErrZeroAmount is thrown when funding or withdrawing a zero amount.
	ErrZeroAmount = errors.New("amount must not be zero")
)
