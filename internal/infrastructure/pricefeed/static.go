package pricefeed

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rfq-network/rfqd/internal/core/ports"
)

type staticFeeder struct {
	lock     sync.RWMutex
	interval time.Duration
	prices   map[string]decimal.Decimal
	pairs    []ports.Pair
	feedChan chan ports.PriceFeedChan
	quitChan chan struct{}
}

// NewStaticPriceFeeder periodically re-publishes a fixed price per ticker.
// It backs the demo mode and the maker tests, where no external market data
// source is reachable.
func NewStaticPriceFeeder(
	prices map[string]decimal.Decimal, interval time.Duration,
) ports.PriceFeeder {
	return &staticFeeder{
		interval: interval,
		prices:   prices,
		feedChan: make(chan ports.PriceFeedChan),
		quitChan: make(chan struct{}, 1),
	}
}

func (s *staticFeeder) SubscribePairs(pairs []ports.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.pairs = pairs
	return nil
}

func (s *staticFeeder) Start() error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quitChan:
			close(s.feedChan)
			return nil
		case <-ticker.C:
			s.lock.RLock()
			feeds := make([]ports.PriceFeedChan, 0, len(s.pairs))
			for _, pair := range s.pairs {
				if price, ok := s.prices[pair.Ticker]; ok {
					feeds = append(feeds, ports.PriceFeedChan{Pair: pair, Price: price})
				}
			}
			s.lock.RUnlock()

			// The send must stay preemptible by Stop, otherwise a consumer
			// that already went away leaves this goroutine blocked forever.
			for _, feed := range feeds {
				select {
				case s.feedChan <- feed:
				case <-s.quitChan:
					close(s.feedChan)
					return nil
				}
			}
		}
	}
}

func (s *staticFeeder) Stop() {
	s.quitChan <- struct{}{}
}

func (s *staticFeeder) FeedChan() chan ports.PriceFeedChan {
	return s.feedChan
}
