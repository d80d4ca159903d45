package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/config"
	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/application/settlement"
	"github.com/rfq-network/rfqd/internal/core/ports"
	webhookpubsub "github.com/rfq-network/rfqd/internal/infrastructure/pubsub"
	dbbadger "github.com/rfq-network/rfqd/internal/infrastructure/storage/db/badger"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

var (
	rfqDataDir = btcutil.AppDataDir("rfq-operator", false)
	statePath  = path.Join(rfqDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "rfq operator CLI"
	app.Usage = "Command line interface for rfqd daemon operators"
	app.Commands = append(
		app.Commands,
		&configCmd,
		&commitintent,
		&revealintent,
		&commitquote,
		&revealquote,
		&selectbest,
		&fund,
		&withdraw,
		&fulfill,
		&status,
		&listrfqs,
		&balance,
		&events,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

type services struct {
	intent     *intent.Service
	quote      *quote.Service
	settlement *settlement.Service
	feed       *feed.Service
}

// getServices opens the daemon's ledger storage and builds the engine against
// it. The caller must invoke cleanup once done to release the store.
func getServices(_ *cli.Context) (*services, func(), error) {
	if err := config.InitConfig(); err != nil {
		return nil, nil, err
	}

	var repoManager ports.RepoManager
	var err error
	switch config.GetString(config.DBTypeKey) {
	case config.DBInMemory:
		repoManager = inmemory.NewRepoManager()
	default:
		repoManager, err = dbbadger.NewDbManager(config.GetDbDir(), nil)
		if err != nil {
			return nil, nil, err
		}
	}
	cleanup := func() { repoManager.Close() }

	pubsubSvc := pubsub.NewService(webhookpubsub.NewWebhookPubSubService())

	intentSvc, err := intent.NewService(repoManager, pubsubSvc)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	quoteSvc, err := quote.NewService(
		repoManager, pubsubSvc, config.GetUint64(config.MaxDeviationBpsKey),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	settlementSvc, err := settlement.NewService(repoManager, pubsubSvc)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	feedSvc, err := feed.NewService(repoManager)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &services{intentSvc, quoteSvc, settlementSvc, feedSvc}, cleanup, nil
}

// getAccount resolves the acting account: the --account flag when given,
// otherwise the one stored with `config init`.
func getAccount(ctx *cli.Context) (string, error) {
	if account := ctx.String("account"); account != "" {
		return account, nil
	}
	state, err := getState()
	if err != nil {
		return "", err
	}
	account, ok := state["account"]
	if !ok || account == "" {
		return "", errors.New("set account with `config init --account`")
	}
	return account, nil
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	json.Unmarshal(file, &data)

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(rfqDataDir); os.IsNotExist(err) {
		os.Mkdir(rfqDataDir, os.ModeDir|0755)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		if err := os.WriteFile(statePath, []byte("{}"), 0644); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		return err
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0755); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func parseAmount(raw string) (*uint256.Int, error) {
	if raw == "" {
		return nil, errors.New("missing amount")
	}
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	return amount, nil
}

func printRespJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

func fatal(err error) {
	log.Fatalf("[rfq] %v", err)
}
