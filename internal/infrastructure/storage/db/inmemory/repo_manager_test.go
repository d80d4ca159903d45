package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

func TestRFQRepository(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })
	repo := repoManager.RFQRepository()
	ctx := context.Background()

	id, err := repo.AddRFQ(ctx, newRFQ(t))
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	id, err = repo.AddRFQ(ctx, newRFQ(t))
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)

	rfq, err := repo.GetRFQ(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rfq.Id)

	all, err := repo.GetAllRFQs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = repo.GetRFQ(ctx, 42)
	require.EqualError(t, err, domain.ErrRFQNotFound.Error())

	t.Run("failing_update_is_noop", func(t *testing.T) {
		err := repo.UpdateRFQ(ctx, 1, func(rfq *domain.RFQ) (*domain.RFQ, error) {
			rfq.Status = domain.RFQStatusCodeRevealed
			return nil, domain.ErrInvalidReveal
		})
		require.EqualError(t, err, domain.ErrInvalidReveal.Error())

		rfq, err := repo.GetRFQ(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, domain.RFQStatusCodeCommitted, rfq.Status)
	})
}

func TestQuoteRepository(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })
	repo := repoManager.QuoteRepository()
	ctx := context.Background()

	quote, err := domain.NewQuote(1, "maker1", testCommitment())
	require.NoError(t, err)

	index, err := repo.AddQuote(ctx, quote)
	require.NoError(t, err)
	require.Equal(t, 0, index)
	index, err = repo.AddQuote(ctx, quote)
	require.NoError(t, err)
	require.Equal(t, 1, index)

	quotes, err := repo.GetQuotesForRFQ(ctx, 1)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Mutating the returned slice must not leak into the store.
	quotes[0].Revealed = true
	quotes, err = repo.GetQuotesForRFQ(ctx, 1)
	require.NoError(t, err)
	require.False(t, quotes[0].Revealed)

	t.Run("selection_is_write_once", func(t *testing.T) {
		selection := &domain.Selection{
			RFQId: 1, Maker: "maker1", QuoteOut: uint256.NewInt(95),
		}
		require.NoError(t, repo.AddSelection(ctx, selection))

		err := repo.AddSelection(ctx, selection)
		require.EqualError(t, err, domain.ErrAlreadySelected.Error())

		stored, err := repo.GetSelection(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "maker1", stored.Maker)

		_, err = repo.GetSelection(ctx, 42)
		require.EqualError(t, err, domain.ErrNoSelectionMade.Error())
	})
}

func TestSettlementRepository(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })
	repo := repoManager.SettlementRepository()
	ctx := context.Background()

	balance, err := repo.GetOrCreateBalance(ctx, "alice", "USDC")
	require.NoError(t, err)
	require.True(t, balance.Amount.IsZero())

	keys := []domain.BalanceKey{
		{Account: "alice", Token: "USDC"},
		{Account: "maker1", Token: "USDC"},
	}
	err = repo.UpdateBalances(ctx, keys, func(balances []*domain.Balance) error {
		balances[0].Add(uint256.NewInt(100))
		balances[1].Add(uint256.NewInt(50))
		return nil
	})
	require.NoError(t, err)

	balances, err := repo.GetBalancesForAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, uint256.NewInt(100), balances[0].Amount)

	t.Run("failing_update_is_noop", func(t *testing.T) {
		err := repo.UpdateBalances(ctx, keys, func(balances []*domain.Balance) error {
			balances[0].Add(uint256.NewInt(1))
			return domain.ErrInsufficientBalance
		})
		require.EqualError(t, err, domain.ErrInsufficientBalance.Error())

		balance, err := repo.GetOrCreateBalance(ctx, "alice", "USDC")
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(100), balance.Amount)
	})

	t.Run("duplicate_keys_share_one_balance", func(t *testing.T) {
		dupKeys := []domain.BalanceKey{
			{Account: "alice", Token: "USDC"},
			{Account: "alice", Token: "USDC"},
		}
		err := repo.UpdateBalances(ctx, dupKeys, func(balances []*domain.Balance) error {
			// Both slots must point at the same entry so paired mutations
			// compose instead of the last write winning.
			require.Same(t, balances[0], balances[1])
			balances[0].Add(uint256.NewInt(30))
			return balances[1].Sub(uint256.NewInt(30))
		})
		require.NoError(t, err)

		balance, err := repo.GetOrCreateBalance(ctx, "alice", "USDC")
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(100), balance.Amount)
	})

	t.Run("fulfillment_is_write_once", func(t *testing.T) {
		fulfillment, err := repo.GetFulfillment(ctx, 1)
		require.NoError(t, err)
		require.Nil(t, fulfillment)

		require.NoError(t, repo.AddFulfillment(
			ctx, &domain.Fulfillment{RFQId: 1, Timestamp: 1700000000},
		))
		err = repo.AddFulfillment(
			ctx, &domain.Fulfillment{RFQId: 1, Timestamp: 1700000001},
		)
		require.EqualError(t, err, domain.ErrAlreadyFulfilled.Error())
	})
}

func TestEventRepository(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })
	repo := repoManager.EventRepository()
	ctx := context.Background()

	err := repo.AppendEvents(ctx, 1700000000,
		domain.RFQCommittedEvent{Id: 1, Owner: "alice"},
		domain.RFQRevealedEvent{Id: 1},
	)
	require.NoError(t, err)
	err = repo.AppendEvents(ctx, 1700000001,
		domain.QuoteCommittedEvent{RFQId: 1, Maker: "maker1"},
	)
	require.NoError(t, err)

	records, err := repo.ListEventsAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, uint64(1), records[0].Seq)
	require.Equal(t, uint64(3), records[2].Seq)

	records, err = repo.ListEventsAfter(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, uint64(2), records[0].Seq)
	require.Equal(t, domain.EventTypeRFQRevealed, records[0].Type)
}

func newRFQ(t *testing.T) *domain.RFQ {
	rfq, err := domain.NewRFQ(
		"alice", "WETH", "USDC", time.Now().Add(time.Hour).Unix(), testCommitment(),
	)
	require.NoError(t, err)
	return rfq
}

func testCommitment() domain.Commitment {
	var c domain.Commitment
	c[31] = 0x01
	return c
}
