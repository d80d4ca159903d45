package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rfq-network/rfqd/internal/config"
	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/maker"
	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/application/relayer"
	"github.com/rfq-network/rfqd/internal/core/ports"
	"github.com/rfq-network/rfqd/internal/infrastructure/oracle"
	"github.com/rfq-network/rfqd/internal/infrastructure/pricefeed"
	webhookpubsub "github.com/rfq-network/rfqd/internal/infrastructure/pubsub"
	randsource "github.com/rfq-network/rfqd/internal/infrastructure/rand"
	dbbadger "github.com/rfq-network/rfqd/internal/infrastructure/storage/db/badger"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	repoManager, err := openRepoManager()
	if err != nil {
		log.WithError(err).Fatal("error while opening storage")
	}
	defer repoManager.Close()

	pubsubSvc := pubsub.NewService(webhookpubsub.NewWebhookPubSubService())
	if endpoint := config.GetString(config.WebhookEndpointKey); endpoint != "" {
		if _, err := pubsubSvc.AddSubscriber(
			ports.AnyTopic, endpoint, config.GetString(config.WebhookSecretKey),
		); err != nil {
			log.WithError(err).Fatal("error while registering webhook endpoint")
		}
	}

	intentSvc, err := intent.NewService(repoManager, pubsubSvc)
	if err != nil {
		log.WithError(err).Fatal("error while starting intent service")
	}
	quoteSvc, err := quote.NewService(
		repoManager, pubsubSvc, config.GetUint64(config.MaxDeviationBpsKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while starting quote service")
	}
	feedSvc, err := feed.NewService(repoManager)
	if err != nil {
		log.WithError(err).Fatal("error while starting feed service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, egCtx := errgroup.WithContext(ctx)

	if config.GetBool(config.EnableMakerKey) {
		makerSvc, err := buildMaker(egCtx, intentSvc, quoteSvc, feedSvc)
		if err != nil {
			log.WithError(err).Fatal("error while starting maker bot")
		}
		eg.Go(func() error { return makerSvc.Start(egCtx) })
		log.Info("maker bot is running")
	}

	if config.GetBool(config.EnableRelayerKey) {
		relayerSvc, err := buildRelayer(egCtx, intentSvc, quoteSvc, feedSvc)
		if err != nil {
			log.WithError(err).Fatal("error while starting relayer")
		}
		eg.Go(func() error { return relayerSvc.Start(egCtx) })
		log.Info("selection relayer is running")
	}

	log.Debug("daemon is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-sigChan:
	case <-egCtx.Done():
	}

	cancel()
	if err := eg.Wait(); err != nil && err != context.Canceled {
		log.WithError(err).Error("error while shutting down")
	}

	log.Debug("exiting")
}

func openRepoManager() (ports.RepoManager, error) {
	switch config.GetString(config.DBTypeKey) {
	case config.DBInMemory:
		return inmemory.NewRepoManager(), nil
	default:
		return dbbadger.NewDbManager(config.GetDbDir(), log.New())
	}
}

func buildMaker(
	ctx context.Context,
	intentSvc *intent.Service, quoteSvc *quote.Service, feedSvc *feed.Service,
) (*maker.Service, error) {
	pairs, pairNames, err := parseSupportedPairs(
		config.GetStringSlice(config.SupportedPairsKey),
	)
	if err != nil {
		return nil, err
	}

	feeder, err := buildFeeder(ctx, pairs)
	if err != nil {
		return nil, err
	}

	pricing := maker.NewPricingEngine(config.GetUint64(config.MakerSpreadBpsKey))
	go pricing.Consume(ctx, feeder)

	var maxPosition *uint256.Int
	if raw := config.GetString(config.MakerMaxPositionKey); raw != "" {
		maxPosition, err = uint256.FromDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid maker max position: %s", err)
		}
	}

	return maker.NewService(intentSvc, quoteSvc, feedSvc, pricing, maker.Options{
		Account:        config.GetString(config.MakerAccountKey),
		RevealDelay:    config.GetDuration(config.RevealDelayKey),
		PollInterval:   config.GetDuration(config.PollIntervalKey),
		SpreadBps:      config.GetUint64(config.MakerSpreadBpsKey),
		MaxPosition:    maxPosition,
		SupportedPairs: pairNames,
	})
}

func buildRelayer(
	ctx context.Context,
	intentSvc *intent.Service, quoteSvc *quote.Service, feedSvc *feed.Service,
) (*relayer.Service, error) {
	pairs, _, err := parseSupportedPairs(
		config.GetStringSlice(config.SupportedPairsKey),
	)
	if err != nil {
		return nil, err
	}

	// The oracle gets its own feeder subscription, the spot stream consumed
	// by the maker's pricing is never reused for selection.
	feeder, err := buildFeeder(ctx, pairs)
	if err != nil {
		return nil, err
	}
	priceSource := oracle.NewFeedSource(
		ctx, feeder, uint32(config.GetInt(config.OracleDecimalsKey)),
	)

	return relayer.NewService(
		intentSvc, quoteSvc, feedSvc, priceSource, randsource.NewSecureSource(),
		relayer.Options{
			SelectionDelay: config.GetDuration(config.SelectionDelayKey),
			PollInterval:   config.GetDuration(config.PollIntervalKey),
		},
	)
}

func buildFeeder(ctx context.Context, pairs []ports.Pair) (ports.PriceFeeder, error) {
	var feeder ports.PriceFeeder
	switch config.GetString(config.PriceFeederKey) {
	case config.FeederKraken:
		feeder = pricefeed.NewKrakenPriceFeeder()
	default:
		prices, err := parseStaticPrices(
			config.GetStringSlice(config.StaticPricesKey),
		)
		if err != nil {
			return nil, err
		}
		feeder = pricefeed.NewStaticPriceFeeder(
			prices, config.GetDuration(config.PollIntervalKey),
		)
	}

	if err := feeder.SubscribePairs(pairs); err != nil {
		return nil, err
	}

	go func() {
		if err := feeder.Start(); err != nil {
			log.WithError(err).Error("price feeder stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		feeder.Stop()
	}()

	return feeder, nil
}

// parseSupportedPairs parses "tokenIn/tokenOut:TICKER" entries into feeder
// pairs plus the plain "tokenIn/tokenOut" names the maker matches RFQs on.
func parseSupportedPairs(raw []string) ([]ports.Pair, []string, error) {
	pairs := make([]ports.Pair, 0, len(raw))
	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		pairAndTicker := strings.SplitN(entry, ":", 2)
		tokens := strings.SplitN(pairAndTicker[0], "/", 2)
		if len(tokens) != 2 || tokens[0] == "" || tokens[1] == "" {
			return nil, nil, fmt.Errorf("invalid pair %s", entry)
		}
		ticker := pairAndTicker[0]
		if len(pairAndTicker) == 2 {
			ticker = pairAndTicker[1]
		}
		pairs = append(pairs, ports.Pair{
			TokenIn:  tokens[0],
			TokenOut: tokens[1],
			Ticker:   ticker,
		})
		names = append(names, pairAndTicker[0])
	}
	return pairs, names, nil
}

func parseStaticPrices(raw []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, entry := range raw {
		tickerAndPrice := strings.SplitN(entry, "=", 2)
		if len(tickerAndPrice) != 2 {
			return nil, fmt.Errorf("invalid static price %s", entry)
		}
		price, err := decimal.NewFromString(tickerAndPrice[1])
		if err != nil {
			return nil, fmt.Errorf("invalid static price %s: %s", entry, err)
		}
		prices[tickerAndPrice[0]] = price
	}
	return prices, nil
}
