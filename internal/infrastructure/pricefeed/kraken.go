package pricefeed

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rfq-network/rfqd/internal/core/ports"
	"github.com/rfq-network/rfqd/pkg/circuitbreaker"
)

const (
	// KrakenWebSocketURL is the base url to open a connection with kraken.
	KrakenWebSocketURL = "ws.kraken.com"

	defaultWriteInterval = 1 * time.Second
)

type krakenFeeder struct {
	conn        *websocket.Conn
	writeTicker *time.Ticker
	cb          *gobreaker.CircuitBreaker
	lock        sync.RWMutex
	chLock      sync.Mutex

	pairByTicker       map[string]ports.Pair
	latestFeedByTicker map[string]ports.PriceFeedChan
	feedChan           chan ports.PriceFeedChan
	quitChan           chan struct{}
}

// NewKrakenPriceFeeder streams spot prices for the subscribed pairs from the
// kraken websocket ticker channel.
func NewKrakenPriceFeeder() ports.PriceFeeder {
	return &krakenFeeder{
		writeTicker:        time.NewTicker(defaultWriteInterval),
		cb:                 circuitbreaker.NewCircuitBreaker("kraken"),
		pairByTicker:       make(map[string]ports.Pair),
		latestFeedByTicker: make(map[string]ports.PriceFeedChan),
		feedChan:           make(chan ports.PriceFeedChan),
		quitChan:           make(chan struct{}, 1),
	}
}

func (s *krakenFeeder) SubscribePairs(pairs []ports.Pair) error {
	tickers := make([]string, 0, len(pairs))
	pairByTicker := make(map[string]ports.Pair)
	for _, pair := range pairs {
		tickers = append(tickers, pair.Ticker)
		pairByTicker[pair.Ticker] = pair
	}

	conn, err := s.connect(tickers)
	if err != nil {
		return err
	}

	s.conn = conn
	s.pairByTicker = pairByTicker
	return nil
}

// connect routes the dial through the circuit breaker so a flapping endpoint
// is not hammered on every reconnect attempt.
func (s *krakenFeeder) connect(tickers []string) (*websocket.Conn, error) {
	conn, err := s.cb.Execute(func() (interface{}, error) {
		return connectAndSubscribe(tickers)
	})
	if err != nil {
		return nil, err
	}
	return conn.(*websocket.Conn), nil
}

func (s *krakenFeeder) Start() error {
	mustReconnect, err := s.start()
	for mustReconnect {
		log.WithError(err).Warn(
			"pricefeed: connection dropped unexpectedly, trying to reconnect...",
		)

		tickers := make([]string, 0, len(s.pairByTicker))
		for ticker := range s.pairByTicker {
			tickers = append(tickers, ticker)
		}

		var conn *websocket.Conn
		conn, err = s.connect(tickers)
		if err != nil {
			return err
		}
		s.conn = conn

		log.Debug("pricefeed: connection and subscriptions re-established")
		mustReconnect, err = s.start()
	}
	return err
}

func (s *krakenFeeder) Stop() {
	s.quitChan <- struct{}{}
}

func (s *krakenFeeder) FeedChan() chan ports.PriceFeedChan {
	return s.feedChan
}

func (s *krakenFeeder) start() (mustReconnect bool, err error) {
	// The kraken websocket sometimes panics on read instead of returning an
	// UnexpectedCloseError, so a recover is used to signal the reconnection
	// in both situations.
	defer func() {
		if rec := recover(); rec != nil {
			mustReconnect = true
		}
	}()

	go func() {
		for range s.writeTicker.C {
			s.writeToFeedChan()
		}
	}()

	for {
		select {
		case <-s.quitChan:
			s.writeTicker.Stop()
			s.closeChannels()
			err = s.conn.Close()
			return false, err
		default:
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				) {
					panic(err)
				}
			}

			ticker, price, ok := parseTickerMessage(message)
			if !ok {
				continue
			}
			pair, ok := s.pairByTicker[ticker]
			if !ok {
				continue
			}

			s.lock.Lock()
			s.latestFeedByTicker[ticker] = ports.PriceFeedChan{Pair: pair, Price: price}
			s.lock.Unlock()
		}
	}
}

func (s *krakenFeeder) writeToFeedChan() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	s.lock.RLock()
	feeds := make([]ports.PriceFeedChan, 0, len(s.latestFeedByTicker))
	for _, feed := range s.latestFeedByTicker {
		feeds = append(feeds, feed)
	}
	s.lock.RUnlock()

	for _, feed := range feeds {
		s.feedChan <- feed
	}
}

func (s *krakenFeeder) closeChannels() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	close(s.feedChan)
	close(s.quitChan)
}

// parseTickerMessage extracts the last-trade price from a kraken ticker
// update, which comes as [channelID, {"c": [price, lotVolume], ...}, "ticker",
// pairTicker].
func parseTickerMessage(msg []byte) (string, decimal.Decimal, bool) {
	var i []interface{}
	if err := json.Unmarshal(msg, &i); err != nil {
		return "", decimal.Zero, false
	}
	if len(i) != 4 {
		return "", decimal.Zero, false
	}

	ticker, ok := i[3].(string)
	if !ok {
		return "", decimal.Zero, false
	}

	ii, ok := i[1].(map[string]interface{})
	if !ok {
		return "", decimal.Zero, false
	}
	iii, ok := ii["c"].([]interface{})
	if !ok || len(iii) < 1 {
		return "", decimal.Zero, false
	}
	priceStr, ok := iii[0].(string)
	if !ok {
		return "", decimal.Zero, false
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return "", decimal.Zero, false
	}
	return ticker, price, true
}

func connectAndSubscribe(tickers []string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "wss", Host: KrakenWebSocketURL}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing kraken websocket: %w", err)
	}

	sub := map[string]interface{}{
		"event": "subscribe",
		"pair":  tickers,
		"subscription": map[string]string{
			"name": "ticker",
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to ticker channel: %w", err)
	}
	return conn, nil
}
