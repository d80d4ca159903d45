package oracle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

type feedSource struct {
	lock       sync.RWMutex
	latest     map[string]decimal.Decimal
	decimals   uint32
	snapshotID uint64
}

// NewFeedSource turns a price feeder stream into a PriceSource: it caches the
// latest observation per pair and serves it as a fixed-point snapshot with
// the configured number of decimals. It consumes the feeder's channel until
// the context is done.
func NewFeedSource(
	ctx context.Context, feeder ports.PriceFeeder, decimals uint32,
) ports.PriceSource {
	s := &feedSource{
		latest:   make(map[string]decimal.Decimal),
		decimals: decimals,
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case feed, ok := <-feeder.FeedChan():
				if !ok {
					return
				}
				s.lock.Lock()
				s.latest[pairKey(feed.Pair.TokenIn, feed.Pair.TokenOut)] = feed.Price
				s.lock.Unlock()
			}
		}
	}()

	return s
}

func (s *feedSource) TakeSnapshot(
	_ context.Context, tokenIn, tokenOut string,
) (domain.PriceSnapshot, error) {
	s.lock.RLock()
	price, ok := s.latest[pairKey(tokenIn, tokenOut)]
	s.lock.RUnlock()
	if !ok {
		return domain.PriceSnapshot{}, fmt.Errorf(
			"no observation yet for pair %s", pairKey(tokenIn, tokenOut),
		)
	}

	scaled, err := decimalToUint256(price, s.decimals)
	if err != nil {
		log.WithError(err).Warn("oracle: discarding unrepresentable observation")
		return domain.PriceSnapshot{}, err
	}

	return domain.PriceSnapshot{
		SnapshotID: atomic.AddUint64(&s.snapshotID, 1),
		Price:      scaled,
		Decimals:   s.decimals,
		Timestamp:  time.Now().Unix(),
	}, nil
}

func decimalToUint256(d decimal.Decimal, decimals uint32) (*uint256.Int, error) {
	scaled := d.Shift(int32(decimals)).Truncate(0)
	if scaled.IsNegative() {
		return nil, fmt.Errorf("negative price %s", d)
	}
	value, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("price %s overflows 256 bits", d)
	}
	return value, nil
}
