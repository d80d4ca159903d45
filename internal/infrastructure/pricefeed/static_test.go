package pricefeed_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/ports"
	"github.com/rfq-network/rfqd/internal/infrastructure/pricefeed"
)

func TestStaticPriceFeeder(t *testing.T) {
	t.Parallel()

	feeder := pricefeed.NewStaticPriceFeeder(map[string]decimal.Decimal{
		"ETHUSD": decimal.NewFromInt(2000),
	}, 5*time.Millisecond)

	err := feeder.SubscribePairs([]ports.Pair{
		{TokenIn: "WETH", TokenOut: "USDC", Ticker: "ETHUSD"},
	})
	require.NoError(t, err)

	go feeder.Start()

	select {
	case feed := <-feeder.FeedChan():
		require.Equal(t, "WETH", feed.Pair.TokenIn)
		require.Equal(t, "USDC", feed.Pair.TokenOut)
		require.True(t, feed.Price.Equal(decimal.NewFromInt(2000)))
	case <-time.After(5 * time.Second):
		t.Fatal("no price observation received")
	}

	feeder.Stop()
	// Draining until the channel closes proves the feeder shut down cleanly.
	for range feeder.FeedChan() {
	}
}

func TestStaticPriceFeederStopsWithoutConsumer(t *testing.T) {
	t.Parallel()

	feeder := pricefeed.NewStaticPriceFeeder(map[string]decimal.Decimal{
		"ETHUSD": decimal.NewFromInt(2000),
	}, time.Millisecond)

	err := feeder.SubscribePairs([]ports.Pair{
		{TokenIn: "WETH", TokenOut: "USDC", Ticker: "ETHUSD"},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- feeder.Start() }()

	// Let Start block on an unread publish, then stop without ever reading
	// the feed: the loop must still wind down.
	time.Sleep(20 * time.Millisecond)
	feeder.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("feeder did not stop while blocked on publish")
	}
}
