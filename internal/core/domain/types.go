package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// MaxSlippageBps is the upper bound for any bps-denominated parameter.
	MaxSlippageBps = 10000

	hashSize = 32
)

// Commitment is the fixed-width hash a party publishes during the commit
// phase, binding it to the values disclosed at reveal time.
type Commitment [hashSize]byte

// Salt is the 32-byte blinding factor mixed into a commitment preimage.
type Salt [hashSize]byte

// IsZero returns whether the commitment is the empty hash.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// CommitmentFromHex parses a 32-byte hex string, with or without 0x prefix.
func CommitmentFromHex(s string) (Commitment, error) {
	var c Commitment
	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return c, fmt.Errorf("invalid commitment encoding: %w", err)
	}
	if len(buf) != hashSize {
		return c, fmt.Errorf("invalid commitment length: got %d, want %d", len(buf), hashSize)
	}
	copy(c[:], buf)
	return c, nil
}

func (s Salt) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// SaltFromHex parses a 32-byte hex string, with or without 0x prefix.
func SaltFromHex(str string) (Salt, error) {
	var s Salt
	buf, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return s, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if len(buf) != hashSize {
		return s, fmt.Errorf("invalid salt length: got %d, want %d", len(buf), hashSize)
	}
	copy(s[:], buf)
	return s, nil
}

// SaltFromBytes copies up to 32 bytes into a right-aligned salt.
func SaltFromBytes(buf []byte) Salt {
	var s Salt
	if len(buf) > hashSize {
		buf = buf[len(buf)-hashSize:]
	}
	copy(s[hashSize-len(buf):], buf)
	return s
}

// PriceSnapshot is an oracle observation consumed as-given by the selection
// call. The engine never fetches prices itself, it only validates the
// deviation bound against the reference price recorded here.
type PriceSnapshot struct {
	SnapshotID uint64
	Price      *uint256.Int
	Decimals   uint32
	Timestamp  int64
}

// RandomDraw is a verifiable-randomness observation consumed as-given by the
// selection call. Only IsSecure is validated by the engine.
type RandomDraw struct {
	Value          *uint256.Int
	IsSecure       bool
	EpochTimestamp int64
}
