package rand

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/holiman/uint256"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

type secureSource struct{}

// NewSecureSource returns a RandSource whose draws come from the operating
// system CSPRNG and are flagged secure. Deployments wired to a verifiable
// randomness beacon replace this adapter; the engine only ever consumes the
// draw.
func NewSecureSource() ports.RandSource {
	return secureSource{}
}

func (secureSource) Draw(_ context.Context) (domain.RandomDraw, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return domain.RandomDraw{}, err
	}

	return domain.RandomDraw{
		Value:          new(uint256.Int).SetBytes(buf[:]),
		IsSecure:       true,
		EpochTimestamp: time.Now().Unix(),
	}, nil
}

type fixedSource struct {
	value  *uint256.Int
	secure bool
}

// NewFixedSource returns a RandSource always serving the given draw, used by
// tests that need a deterministic winner index.
func NewFixedSource(value *uint256.Int, secure bool) ports.RandSource {
	return fixedSource{value, secure}
}

func (s fixedSource) Draw(_ context.Context) (domain.RandomDraw, error) {
	return domain.RandomDraw{
		Value:          s.value.Clone(),
		IsSecure:       s.secure,
		EpochTimestamp: time.Now().Unix(),
	}, nil
}
