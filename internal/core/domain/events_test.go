package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

func TestEventRecordRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event domain.Event
	}{
		{
			name: "rfq_committed",
			event: domain.RFQCommittedEvent{
				Id: 1, Owner: "alice", TokenIn: "WETH", TokenOut: "USDC",
				Status: domain.RFQStatusCodeCommitted, Expiry: 1700000000,
			},
		},
		{
			name: "quote_revealed",
			event: domain.QuoteRevealedEvent{
				RFQId: 1, Maker: "maker1", QuoteOut: amount(95),
			},
		},
		{
			name: "fill_committed",
			event: domain.FillCommittedEvent{
				RFQId: 1, Taker: "alice", Maker: "maker1",
				AmountIn: amount(100), QuoteOut: amount(95),
			},
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record, err := domain.NewEventRecord(tt.event, 1700000000)
			require.NoError(t, err)
			require.Equal(t, tt.event.EventType(), record.Type)
			require.Equal(t, int64(1700000000), record.Timestamp)

			decoded, err := domain.DecodeEvent(record)
			require.NoError(t, err)
			require.Equal(t, tt.event, decoded)
		})
	}

	t.Run("unknown_type", func(t *testing.T) {
		t.Parallel()

		_, err := domain.DecodeEvent(&domain.EventRecord{Type: "BOGUS"})
		require.Error(t, err)
	})
}
