package oracle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

type staticSource struct {
	lock       sync.RWMutex
	prices     map[string]*uint256.Int
	decimals   uint32
	snapshotID uint64
}

// NewStaticSource returns a PriceSource serving fixed unit rates per pair,
// used by the demo mode and tests. Keys follow the "tokenIn/tokenOut" form.
func NewStaticSource(prices map[string]*uint256.Int, decimals uint32) ports.PriceSource {
	return &staticSource{prices: prices, decimals: decimals}
}

// SetPrice replaces the unit rate for a pair.
func SetPrice(source ports.PriceSource, tokenIn, tokenOut string, price *uint256.Int) {
	if s, ok := source.(*staticSource); ok {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.prices[pairKey(tokenIn, tokenOut)] = price.Clone()
	}
}

func (s *staticSource) TakeSnapshot(
	_ context.Context, tokenIn, tokenOut string,
) (domain.PriceSnapshot, error) {
	s.lock.RLock()
	price, ok := s.prices[pairKey(tokenIn, tokenOut)]
	s.lock.RUnlock()
	if !ok {
		return domain.PriceSnapshot{}, fmt.Errorf(
			"no price configured for pair %s", pairKey(tokenIn, tokenOut),
		)
	}

	return domain.PriceSnapshot{
		SnapshotID: atomic.AddUint64(&s.snapshotID, 1),
		Price:      price.Clone(),
		Decimals:   s.decimals,
		Timestamp:  time.Now().Unix(),
	}, nil
}

func pairKey(tokenIn, tokenOut string) string {
	return tokenIn + "/" + tokenOut
}
