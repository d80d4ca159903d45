package quote_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/domain"
	webhookpubsub "github.com/rfq-network/rfqd/internal/infrastructure/pubsub"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

const maxDeviationBps = 500

func TestCommitAndRevealQuote(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)
	ctx := context.Background()
	rfqID := svc.newRevealedRFQ(t, tokens(100))

	quoteOut := tokens(95)
	salt := domain.SaltFromBytes([]byte{0xaa})
	commitment := domain.QuoteCommitment(quoteOut, salt)

	index, err := svc.quote.CommitQuote(ctx, rfqID, "maker1", commitment)
	require.NoError(t, err)
	require.Equal(t, 0, index)

	index, err = svc.quote.CommitQuote(ctx, rfqID, "maker2", commitment)
	require.NoError(t, err)
	require.Equal(t, 1, index)

	err = svc.quote.RevealQuote(ctx, rfqID, "maker1", quoteOut, salt)
	require.NoError(t, err)

	quotes, err := svc.quote.GetQuotes(ctx, rfqID)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.True(t, quotes[0].Revealed)
	require.Equal(t, quoteOut, quotes[0].QuoteOut)
	require.False(t, quotes[1].Revealed)
}

func TestFailingCommitQuote(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)
	ctx := context.Background()

	commitment := domain.QuoteCommitment(tokens(95), domain.SaltFromBytes([]byte{0xaa}))

	t.Run("unknown_rfq", func(t *testing.T) {
		_, err := svc.quote.CommitQuote(ctx, 42, "maker1", commitment)
		require.EqualError(t, err, domain.ErrRFQNotFound.Error())
	})

	t.Run("rfq_not_revealed", func(t *testing.T) {
		rfqID := svc.newCommittedRFQ(t, tokens(100))
		_, err := svc.quote.CommitQuote(ctx, rfqID, "maker1", commitment)
		require.EqualError(t, err, domain.ErrRFQNotRevealed.Error())
	})

	t.Run("empty_commitment", func(t *testing.T) {
		rfqID := svc.newRevealedRFQ(t, tokens(100))
		_, err := svc.quote.CommitQuote(ctx, rfqID, "maker1", domain.Commitment{})
		require.EqualError(t, err, domain.ErrEmptyCommitment.Error())
	})
}

func TestSelectBest(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)
	ctx := context.Background()
	rfqID := svc.newRevealedRFQ(t, tokens(100))

	// Two identical quotes within the deviation bound: the draw alone decides.
	svc.newRevealedQuote(t, rfqID, "maker1", tokens(95), 0xa1)
	svc.newRevealedQuote(t, rfqID, "maker2", tokens(95), 0xa2)

	rng := domain.RandomDraw{Value: uint256.NewInt(1), IsSecure: true}
	snapshot := domain.PriceSnapshot{SnapshotID: 7, Price: tokens(100), Decimals: 18}

	selection, err := svc.quote.SelectBest(ctx, rfqID, rng, snapshot)
	require.NoError(t, err)
	require.Equal(t, "maker2", selection.Maker)
	require.Equal(t, 1, selection.WinnerIndex)
	require.Equal(t, uint64(7), selection.SnapshotID)

	stored, err := svc.quote.GetSelection(ctx, rfqID)
	require.NoError(t, err)
	require.Equal(t, selection.Maker, stored.Maker)

	// The selection is write-once, any further attempt must fail.
	_, err = svc.quote.SelectBest(ctx, rfqID, rng, snapshot)
	require.EqualError(t, err, domain.ErrAlreadySelected.Error())
}

func TestFailingSelectBest(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t)
	ctx := context.Background()

	snapshot := domain.PriceSnapshot{SnapshotID: 7, Price: tokens(100), Decimals: 18}
	secureRng := domain.RandomDraw{Value: uint256.NewInt(0), IsSecure: true}

	t.Run("unknown_rfq", func(t *testing.T) {
		_, err := svc.quote.SelectBest(ctx, 42, secureRng, snapshot)
		require.EqualError(t, err, domain.ErrRFQNotFound.Error())
	})

	t.Run("insecure_randomness", func(t *testing.T) {
		rfqID := svc.newRevealedRFQ(t, tokens(100))
		svc.newRevealedQuote(t, rfqID, "maker1", tokens(99), 0xa1)

		rng := domain.RandomDraw{Value: uint256.NewInt(0), IsSecure: false}
		_, err := svc.quote.SelectBest(ctx, rfqID, rng, snapshot)
		require.EqualError(t, err, domain.ErrInsecureRandomness.Error())

		// The rejected draw must leave the RFQ selectable.
		_, err = svc.quote.GetSelection(ctx, rfqID)
		require.EqualError(t, err, domain.ErrNoSelectionMade.Error())
	})

	t.Run("all_quotes_out_of_bound", func(t *testing.T) {
		rfqID := svc.newRevealedRFQ(t, tokens(100))
		svc.newRevealedQuote(t, rfqID, "maker1", tokens(80), 0xa1)

		_, err := svc.quote.SelectBest(ctx, rfqID, secureRng, snapshot)
		require.EqualError(t, err, domain.ErrNoValidQuotes.Error())
	})
}

type testServices struct {
	intent *intent.Service
	quote  *quote.Service
}

func newTestServices(t *testing.T) *testServices {
	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })

	pubsubSvc := pubsub.NewService(webhookpubsub.NewWebhookPubSubService())
	intentSvc, err := intent.NewService(repoManager, pubsubSvc)
	require.NoError(t, err)
	quoteSvc, err := quote.NewService(repoManager, pubsubSvc, maxDeviationBps)
	require.NoError(t, err)

	return &testServices{intentSvc, quoteSvc}
}

func (s *testServices) newCommittedRFQ(t *testing.T, amountIn *uint256.Int) uint64 {
	salt := domain.SaltFromBytes([]byte{0x01})
	commitment := domain.IntentCommitment(amountIn, 50, salt)
	id, err := s.intent.CommitRFQ(
		context.Background(), "alice", "WETH", "USDC",
		time.Now().Add(time.Hour).Unix(), commitment,
	)
	require.NoError(t, err)
	return id
}

func (s *testServices) newRevealedRFQ(t *testing.T, amountIn *uint256.Int) uint64 {
	id := s.newCommittedRFQ(t, amountIn)
	salt := domain.SaltFromBytes([]byte{0x01})
	err := s.intent.RevealRFQ(context.Background(), "alice", id, amountIn, 50, salt)
	require.NoError(t, err)
	return id
}

func (s *testServices) newRevealedQuote(
	t *testing.T, rfqID uint64, maker string, quoteOut *uint256.Int, saltByte byte,
) {
	salt := domain.SaltFromBytes([]byte{saltByte})
	commitment := domain.QuoteCommitment(quoteOut, salt)
	_, err := s.quote.CommitQuote(context.Background(), rfqID, maker, commitment)
	require.NoError(t, err)
	err = s.quote.RevealQuote(context.Background(), rfqID, maker, quoteOut, salt)
	require.NoError(t, err)
}

func tokens(units uint64) *uint256.Int {
	e18 := uint256.NewInt(0).Exp(uint256.NewInt(10), uint256.NewInt(18))
	return uint256.NewInt(0).Mul(uint256.NewInt(units), e18)
}
