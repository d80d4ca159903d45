package relayer_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/application/relayer"
	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
	"github.com/rfq-network/rfqd/internal/infrastructure/oracle"
	webhookpubsub "github.com/rfq-network/rfqd/internal/infrastructure/pubsub"
	randsource "github.com/rfq-network/rfqd/internal/infrastructure/rand"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

func TestSelectNow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	// amountIn 100e18 at a unit rate of 2000 (18 decimals) implies a
	// reference output of 200000e18, which the maker quotes exactly.
	amountIn := tokens(100)
	quoteOut := tokens(200000)
	rfqID := env.newQuotedRFQ(t, amountIn, quoteOut)

	selection, err := env.relayer.SelectNow(ctx, rfqID)
	require.NoError(t, err)
	require.Equal(t, "maker1", selection.Maker)
	require.Equal(t, quoteOut, selection.QuoteOut)
	require.Equal(t, tokens(200000), selection.RefPrice)

	// A second attempt must hit the write-once guard.
	_, err = env.relayer.SelectNow(ctx, rfqID)
	require.EqualError(t, err, domain.ErrAlreadySelected.Error())
}

func TestStartDrivesSelection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go env.relayer.Start(ctx)

	rfqID := env.newQuotedRFQ(t, tokens(100), tokens(200000))

	require.Eventually(t, func() bool {
		_, err := env.quote.GetSelection(context.Background(), rfqID)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSelectNowRefusesInsecureRandomness(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithRand(t, randsource.NewFixedSource(uint256.NewInt(0), false))
	ctx := context.Background()

	rfqID := env.newQuotedRFQ(t, tokens(100), tokens(200000))

	_, err := env.relayer.SelectNow(ctx, rfqID)
	require.EqualError(t, err, domain.ErrInsecureRandomness.Error())

	_, err = env.quote.GetSelection(ctx, rfqID)
	require.EqualError(t, err, domain.ErrNoSelectionMade.Error())
}

type testEnv struct {
	intent  *intent.Service
	quote   *quote.Service
	relayer *relayer.Service
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRand(t, randsource.NewFixedSource(uint256.NewInt(0), true))
}

func newTestEnvWithRand(t *testing.T, randSource ports.RandSource) *testEnv {
	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })

	pubsubSvc := pubsub.NewService(webhookpubsub.NewWebhookPubSubService())
	intentSvc, err := intent.NewService(repoManager, pubsubSvc)
	require.NoError(t, err)
	quoteSvc, err := quote.NewService(repoManager, pubsubSvc, 500)
	require.NoError(t, err)
	feedSvc, err := feed.NewService(repoManager)
	require.NoError(t, err)

	priceSource := oracle.NewStaticSource(map[string]*uint256.Int{
		"WETH/USDC": tokens(2000),
	}, 18)

	relayerSvc, err := relayer.NewService(
		intentSvc, quoteSvc, feedSvc, priceSource, randSource,
		relayer.Options{
			SelectionDelay: time.Millisecond,
			PollInterval:   10 * time.Millisecond,
		},
	)
	require.NoError(t, err)

	return &testEnv{intentSvc, quoteSvc, relayerSvc}
}

func (e *testEnv) newQuotedRFQ(t *testing.T, amountIn, quoteOut *uint256.Int) uint64 {
	ctx := context.Background()

	salt := domain.SaltFromBytes([]byte{0x01})
	commitment := domain.IntentCommitment(amountIn, 50, salt)
	id, err := e.intent.CommitRFQ(
		ctx, "alice", "WETH", "USDC", time.Now().Add(time.Hour).Unix(), commitment,
	)
	require.NoError(t, err)
	require.NoError(t, e.intent.RevealRFQ(ctx, "alice", id, amountIn, 50, salt))

	quoteSalt := domain.SaltFromBytes([]byte{0xaa})
	quoteCommitment := domain.QuoteCommitment(quoteOut, quoteSalt)
	_, err = e.quote.CommitQuote(ctx, id, "maker1", quoteCommitment)
	require.NoError(t, err)
	require.NoError(t, e.quote.RevealQuote(ctx, id, "maker1", quoteOut, quoteSalt))

	return id
}

func tokens(units uint64) *uint256.Int {
	e18 := uint256.NewInt(0).Exp(uint256.NewInt(10), uint256.NewInt(18))
	return uint256.NewInt(0).Mul(uint256.NewInt(units), e18)
}
