package maker

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/rfq-network/rfqd/internal/core/ports"
)

// PricingEngine turns external spot observations into quote outputs. The
// quoted amount is the spot-implied output shaded by the configured spread:
// quoteOut = amountIn · rate · (1 − spreadBps/10000).
type PricingEngine struct {
	lock      sync.RWMutex
	rates     map[string]decimal.Decimal
	spreadBps uint64
}

func NewPricingEngine(spreadBps uint64) *PricingEngine {
	return &PricingEngine{
		rates:     make(map[string]decimal.Decimal),
		spreadBps: spreadBps,
	}
}

// Consume caches the latest spot rate per pair from the feeder stream until
// the context is done.
func (p *PricingEngine) Consume(ctx context.Context, feeder ports.PriceFeeder) {
	for {
		select {
		case <-ctx.Done():
			return
		case feed, ok := <-feeder.FeedChan():
			if !ok {
				return
			}
			p.lock.Lock()
			p.rates[pairKey(feed.Pair.TokenIn, feed.Pair.TokenOut)] = feed.Price
			p.lock.Unlock()
		}
	}
}

// SetRate injects a spot rate directly, used by tests and the demo mode.
func (p *PricingEngine) SetRate(tokenIn, tokenOut string, rate decimal.Decimal) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.rates[pairKey(tokenIn, tokenOut)] = rate
}

// HasRate returns whether a spot rate is known for the pair.
func (p *PricingEngine) HasRate(tokenIn, tokenOut string) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	_, ok := p.rates[pairKey(tokenIn, tokenOut)]
	return ok
}

// QuoteOut computes the output amount to quote for the given input amount.
func (p *PricingEngine) QuoteOut(
	tokenIn, tokenOut string, amountIn *uint256.Int,
) (*uint256.Int, error) {
	p.lock.RLock()
	rate, ok := p.rates[pairKey(tokenIn, tokenOut)]
	p.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no spot rate for pair %s/%s", tokenIn, tokenOut)
	}

	spread := decimal.NewFromInt(int64(10000 - p.spreadBps)).
		Div(decimal.NewFromInt(10000))
	amount := decimal.NewFromBigInt(amountIn.ToBig(), 0)
	out := amount.Mul(rate).Mul(spread).Truncate(0)

	quoteOut, overflow := uint256.FromBig(out.BigInt())
	if overflow || out.IsNegative() {
		return nil, fmt.Errorf("quote output out of range for pair %s/%s", tokenIn, tokenOut)
	}
	if quoteOut.IsZero() {
		return nil, fmt.Errorf("quote output rounds to zero for pair %s/%s", tokenIn, tokenOut)
	}
	return quoteOut, nil
}

func pairKey(tokenIn, tokenOut string) string {
	return tokenIn + "/" + tokenOut
}
