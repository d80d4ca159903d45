package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the ledger state of the daemon.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported.
	DBTypeKey = "DB_TYPE"
	// MaxDeviationBpsKey is the oracle-deviation bound applied by the quote
	// selection, in basis points. Fixed per deployment.
	MaxDeviationBpsKey = "MAX_DEVIATION_BPS"
	// PollIntervalKey is the pace of the maker and relayer event feed polling.
	PollIntervalKey = "POLL_INTERVAL"
	// RevealDelayKey is the window the maker bot waits before revealing a
	// committed quote.
	RevealDelayKey = "REVEAL_DELAY"
	// SelectionDelayKey is the quiet window the relayer waits after the first
	// observed quote reveal before driving the selection.
	SelectionDelayKey = "SELECTION_DELAY"
	// EnableMakerKey starts the embedded maker bot.
	EnableMakerKey = "ENABLE_MAKER"
	// EnableRelayerKey starts the embedded selection relayer.
	EnableRelayerKey = "ENABLE_RELAYER"
	// MakerAccountKey is the account the embedded maker quotes with.
	MakerAccountKey = "MAKER_ACCOUNT"
	// MakerSpreadBpsKey is the spread the maker shades its quotes by.
	MakerSpreadBpsKey = "MAKER_SPREAD_BPS"
	// MakerMaxPositionKey caps the amountIn the maker is willing to serve.
	MakerMaxPositionKey = "MAKER_MAX_POSITION"
	// SupportedPairsKey lists the "tokenIn/tokenOut:TICKER" pairs the maker
	// serves, mapping each to the feeder ticker used for pricing.
	SupportedPairsKey = "SUPPORTED_PAIRS"
	// PriceFeederKey selects the spot price source for the maker's pricing.
	PriceFeederKey = "PRICE_FEEDER"
	// StaticPricesKey configures the static feeder, as "TICKER=price" entries.
	StaticPricesKey = "STATIC_PRICES"
	// OracleDecimalsKey is the fixed-point scale of oracle snapshots.
	OracleDecimalsKey = "ORACLE_DECIMALS"
	// WebhookEndpointKey is an optional endpoint notified about every engine event.
	WebhookEndpointKey = "WEBHOOK_ENDPOINT"
	// WebhookSecretKey is the secret attached to webhook notifications.
	WebhookSecretKey = "WEBHOOK_SECRET"

	// DBBadger stores the ledgers on disk under the datadir.
	DBBadger = "badger"
	// DBInMemory keeps the ledgers in memory, for tests and throwaway runs.
	DBInMemory = "inmemory"

	// FeederKraken streams spot prices from the kraken websocket.
	FeederKraken = "kraken"
	// FeederStatic serves the fixed prices of StaticPricesKey.
	FeederStatic = "static"

	// DbLocation is the dir under the datadir holding the badger store.
	DbLocation = "db"
)

var vip *viper.Viper

var defaultDatadir = btcutil.AppDataDir("rfqd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("RFQ")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(MaxDeviationBpsKey, 300)
	vip.SetDefault(PollIntervalKey, 5*time.Second)
	vip.SetDefault(RevealDelayKey, 1*time.Minute)
	vip.SetDefault(SelectionDelayKey, 2*time.Minute)
	vip.SetDefault(EnableMakerKey, false)
	vip.SetDefault(EnableRelayerKey, false)
	vip.SetDefault(MakerSpreadBpsKey, 30)
	vip.SetDefault(PriceFeederKey, FeederStatic)
	vip.SetDefault(OracleDecimalsKey, 18)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	if len(GetString(DatadirKey)) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	switch dbType := GetString(DBTypeKey); dbType {
	case DBBadger, DBInMemory:
	default:
		return fmt.Errorf("unsupported database type %s", dbType)
	}

	switch feeder := GetString(PriceFeederKey); feeder {
	case FeederKraken, FeederStatic:
	default:
		return fmt.Errorf("unsupported price feeder %s", feeder)
	}

	maxDeviation := GetUint64(MaxDeviationBpsKey)
	if maxDeviation == 0 || maxDeviation > 10000 {
		return fmt.Errorf("%s must be in range (0, 10000]", MaxDeviationBpsKey)
	}

	if GetBool(EnableMakerKey) && GetString(MakerAccountKey) == "" {
		return fmt.Errorf("%s is required when the maker bot is enabled", MakerAccountKey)
	}
	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
