package ports

import "github.com/shopspring/decimal"

// Pair identifies a tradable token pair on an external market data source.
type Pair struct {
	TokenIn  string
	TokenOut string
	Ticker   string
}

// PriceFeedChan is a single spot price observation streamed by a feeder.
type PriceFeedChan struct {
	Pair  Pair
	Price decimal.Decimal
}

// PriceFeeder streams external spot prices for the maker's pricing engine.
// It is not an oracle: selection never consumes these values directly.
type PriceFeeder interface {
	// SubscribePairs registers the pairs to watch. Must be called before Start.
	SubscribePairs(pairs []Pair) error
	// Start begins streaming on FeedChan until Stop is called.
	Start() error
	// Stop closes the feed.
	Stop()
	// FeedChan returns the channel the observations are delivered on.
	FeedChan() chan PriceFeedChan
}
