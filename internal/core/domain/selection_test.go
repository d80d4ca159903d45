package domain_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

func TestValidQuotes(t *testing.T) {
	t.Parallel()

	refPrice := amount(100)

	quotes := []*domain.Quote{
		newRevealedQuote("maker1", amount(80), 0),  // 2000 bps off
		newRevealedQuote("maker2", amount(97), 1),  // exactly on the bound
		newRevealedQuote("maker3", amount(103), 2), // exactly on the bound
		newRevealedQuote("maker4", amount(99), 3),
		{RFQId: 1, Maker: "maker5", Index: 4}, // sealed, never considered
	}

	valid := domain.ValidQuotes(quotes, refPrice, 300)
	require.Len(t, valid, 3)
	// Commit order must be preserved through the filter.
	require.Equal(t, "maker2", valid[0].Maker)
	require.Equal(t, "maker3", valid[1].Maker)
	require.Equal(t, "maker4", valid[2].Maker)
}

func TestSelectWinner(t *testing.T) {
	t.Parallel()

	refPrice := amount(100)
	snapshot := domain.PriceSnapshot{SnapshotID: 7, Price: refPrice, Decimals: 18}

	quotes := []*domain.Quote{
		newRevealedQuote("maker1", amount(95), 0),
		newRevealedQuote("maker2", amount(95), 1),
	}

	tests := []struct {
		name          string
		rngValue      *uint256.Int
		expectedMaker string
		expectedIndex int
	}{
		{
			name:          "draw_first",
			rngValue:      uint256.NewInt(0),
			expectedMaker: "maker1",
			expectedIndex: 0,
		},
		{
			name:          "draw_second",
			rngValue:      uint256.NewInt(1),
			expectedMaker: "maker2",
			expectedIndex: 1,
		},
		{
			name:          "draw_wraps_modulo_count",
			rngValue:      uint256.NewInt(7),
			expectedMaker: "maker2",
			expectedIndex: 1,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rng := domain.RandomDraw{Value: tt.rngValue, IsSecure: true}
			selection, err := domain.SelectWinner(1, quotes, rng, snapshot, 500)
			require.NoError(t, err)
			require.Equal(t, tt.expectedMaker, selection.Maker)
			require.Equal(t, tt.expectedIndex, selection.WinnerIndex)
			require.Equal(t, amount(95), selection.QuoteOut)
			require.Equal(t, uint64(7), selection.SnapshotID)
			require.Equal(t, refPrice, selection.RefPrice)
		})
	}

	t.Run("draw_within_valid_subset", func(t *testing.T) {
		t.Parallel()

		mixed := []*domain.Quote{
			newRevealedQuote("maker1", amount(80), 0),
			newRevealedQuote("maker2", amount(99), 1),
		}
		rng := domain.RandomDraw{Value: uint256.NewInt(0), IsSecure: true}

		selection, err := domain.SelectWinner(1, mixed, rng, snapshot, 300)
		require.NoError(t, err)
		// maker1 is filtered out, so position 0 of the draw is maker2.
		require.Equal(t, "maker2", selection.Maker)
		require.Equal(t, 0, selection.WinnerIndex)
	})
}

func TestFailingSelectWinner(t *testing.T) {
	t.Parallel()

	snapshot := domain.PriceSnapshot{SnapshotID: 7, Price: amount(100), Decimals: 18}
	secureRng := domain.RandomDraw{Value: uint256.NewInt(0), IsSecure: true}

	t.Run("insecure_randomness", func(t *testing.T) {
		t.Parallel()

		quotes := []*domain.Quote{newRevealedQuote("maker1", amount(99), 0)}
		rng := domain.RandomDraw{Value: uint256.NewInt(0), IsSecure: false}

		_, err := domain.SelectWinner(1, quotes, rng, snapshot, 300)
		require.EqualError(t, err, domain.ErrInsecureRandomness.Error())
	})

	t.Run("all_quotes_out_of_bound", func(t *testing.T) {
		t.Parallel()

		quotes := []*domain.Quote{newRevealedQuote("maker1", amount(80), 0)}

		_, err := domain.SelectWinner(1, quotes, secureRng, snapshot, 300)
		require.EqualError(t, err, domain.ErrNoValidQuotes.Error())
	})

	t.Run("zero_reference_price", func(t *testing.T) {
		t.Parallel()

		// x/0 is defined as 0 on 256-bit ints, so a zero reference would let
		// any revealed quote pass the deviation filter.
		quotes := []*domain.Quote{newRevealedQuote("maker1", amount(1000000), 0)}
		zeroRef := domain.PriceSnapshot{SnapshotID: 7, Price: uint256.NewInt(0), Decimals: 18}

		_, err := domain.SelectWinner(1, quotes, secureRng, zeroRef, 300)
		require.EqualError(t, err, domain.ErrInvalidRefPrice.Error())
	})

	t.Run("no_revealed_quotes", func(t *testing.T) {
		t.Parallel()

		quotes := []*domain.Quote{{RFQId: 1, Maker: "maker1"}}

		_, err := domain.SelectWinner(1, quotes, secureRng, snapshot, 300)
		require.EqualError(t, err, domain.ErrNoValidQuotes.Error())
	})
}

func newRevealedQuote(maker string, quoteOut *uint256.Int, index int) *domain.Quote {
	return &domain.Quote{
		RFQId:    1,
		Maker:    maker,
		QuoteOut: quoteOut,
		Revealed: true,
		Index:    index,
	}
}

func amount(units uint64) *uint256.Int {
	return uint256.NewInt(0).Mul(uint256.NewInt(units), e18())
}
