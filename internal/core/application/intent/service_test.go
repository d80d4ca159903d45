package intent_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
	webhookpubsub "github.com/rfq-network/rfqd/internal/infrastructure/pubsub"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

func TestCommitAndRevealRFQ(t *testing.T) {
	t.Parallel()

	svc, repoManager := newTestService(t)
	ctx := context.Background()

	amountIn := uint256.NewInt(0).Mul(uint256.NewInt(100), oneE18())
	maxSlippageBps := uint64(50)
	salt := domain.SaltFromBytes([]byte{0x01})
	commitment := domain.IntentCommitment(amountIn, maxSlippageBps, salt)
	expiry := time.Now().Add(time.Hour).Unix()

	id, err := svc.CommitRFQ(ctx, "alice", "WETH", "USDC", expiry, commitment)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	rfq, err := svc.GetRFQ(ctx, id)
	require.NoError(t, err)
	require.False(t, rfq.IsRevealed())
	require.Nil(t, rfq.AmountIn)

	err = svc.RevealRFQ(ctx, "alice", id, amountIn, maxSlippageBps, salt)
	require.NoError(t, err)

	rfq, err = svc.GetRFQ(ctx, id)
	require.NoError(t, err)
	require.True(t, rfq.IsRevealed())
	require.Equal(t, amountIn, rfq.AmountIn)

	rfqs, err := svc.ListRFQs(ctx)
	require.NoError(t, err)
	require.Len(t, rfqs, 1)

	// Both phases must land on the ordered event log.
	records, err := repoManager.EventRepository().ListEventsAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, domain.EventTypeRFQCommitted, records[0].Type)
	require.Equal(t, domain.EventTypeRFQRevealed, records[1].Type)
}

func TestFailingCommitAndRevealRFQ(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	amountIn := uint256.NewInt(0).Mul(uint256.NewInt(100), oneE18())
	salt := domain.SaltFromBytes([]byte{0x01})
	commitment := domain.IntentCommitment(amountIn, 50, salt)
	expiry := time.Now().Add(time.Hour).Unix()

	t.Run("same_token", func(t *testing.T) {
		_, err := svc.CommitRFQ(ctx, "alice", "WETH", "WETH", expiry, commitment)
		require.EqualError(t, err, domain.ErrSameToken.Error())
	})

	t.Run("unknown_rfq", func(t *testing.T) {
		err := svc.RevealRFQ(ctx, "alice", 42, amountIn, 50, salt)
		require.EqualError(t, err, domain.ErrRFQNotFound.Error())
	})

	t.Run("wrong_caller_leaves_rfq_sealed", func(t *testing.T) {
		id, err := svc.CommitRFQ(ctx, "alice", "WETH", "USDC", expiry, commitment)
		require.NoError(t, err)

		err = svc.RevealRFQ(ctx, "mallory", id, amountIn, 50, salt)
		require.EqualError(t, err, domain.ErrNotOwner.Error())

		rfq, err := svc.GetRFQ(ctx, id)
		require.NoError(t, err)
		require.False(t, rfq.IsRevealed())
	})
}

func newTestService(t *testing.T) (*intent.Service, ports.RepoManager) {
	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })

	pubsubSvc := pubsub.NewService(webhookpubsub.NewWebhookPubSubService())
	svc, err := intent.NewService(repoManager, pubsubSvc)
	require.NoError(t, err)
	return svc, repoManager
}

func oneE18() *uint256.Int {
	return uint256.NewInt(0).Exp(uint256.NewInt(10), uint256.NewInt(18))
}
