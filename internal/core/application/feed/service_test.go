package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/infrastructure/storage/db/inmemory"
)

func TestPull(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(func() { repoManager.Close() })

	svc, err := feed.NewService(repoManager)
	require.NoError(t, err)

	ctx := context.Background()
	events := []domain.Event{
		domain.RFQCommittedEvent{Id: 1, Owner: "alice"},
		domain.RFQRevealedEvent{Id: 1},
		domain.QuoteCommittedEvent{RFQId: 1, Maker: "maker1"},
	}
	err = repoManager.RunTransaction(ctx, false, func(ctx context.Context) error {
		return repoManager.EventRepository().AppendEvents(ctx, 1700000000, events...)
	})
	require.NoError(t, err)

	entries, cursor, err := svc.Pull(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, uint64(3), cursor)
	require.Equal(t, uint64(1), entries[0].Seq)
	require.IsType(t, domain.RFQCommittedEvent{}, entries[0].Event)
	require.IsType(t, domain.RFQRevealedEvent{}, entries[1].Event)
	require.IsType(t, domain.QuoteCommittedEvent{}, entries[2].Event)

	// Resuming from the returned cursor must skip everything already seen.
	entries, next, err := svc.Pull(ctx, cursor)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, cursor, next)

	t.Run("resume_mid_log", func(t *testing.T) {
		entries, cursor, err := svc.Pull(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, uint64(3), cursor)
		require.Equal(t, uint64(2), entries[0].Seq)
	})
}
