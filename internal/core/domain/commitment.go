package domain

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Commitment preimages follow the EVM ABI encoding of the original protocol
// contracts: every operand is a 32-byte big-endian word and the digest is
// legacy Keccak-256. A reveal succeeds only if the recomputed digest matches
// the stored commitment byte for byte.

// IntentCommitment computes keccak256(amountIn ‖ maxSlippageBps ‖ salt).
func IntentCommitment(amountIn *uint256.Int, maxSlippageBps uint64, salt Salt) Commitment {
	bps := uint256.NewInt(maxSlippageBps)
	return keccakWords(amountIn.Bytes32(), bps.Bytes32(), salt)
}

// QuoteCommitment computes keccak256(quoteOut ‖ salt).
func QuoteCommitment(quoteOut *uint256.Int, salt Salt) Commitment {
	return keccakWords(quoteOut.Bytes32(), salt)
}

func keccakWords(words ...[32]byte) Commitment {
	h := sha3.NewLegacyKeccak256()
	for _, w := range words {
		h.Write(w[:])
	}
	var c Commitment
	copy(c[:], h.Sum(nil))
	return c
}
