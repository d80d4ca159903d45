package maker_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/application/maker"
)

func TestPricingEngine(t *testing.T) {
	t.Parallel()

	pricing := maker.NewPricingEngine(100)
	require.False(t, pricing.HasRate("WETH", "USDC"))

	pricing.SetRate("WETH", "USDC", decimal.NewFromInt(2000))
	require.True(t, pricing.HasRate("WETH", "USDC"))

	// 10 in at rate 2000 with a 100 bps spread: 10 * 2000 * 0.99.
	quoteOut, err := pricing.QuoteOut("WETH", "USDC", uint256.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(19800), quoteOut)

	t.Run("unknown_pair", func(t *testing.T) {
		t.Parallel()

		_, err := pricing.QuoteOut("WETH", "DAI", uint256.NewInt(10))
		require.Error(t, err)
	})

	t.Run("fractional_rate_truncates", func(t *testing.T) {
		t.Parallel()

		pricing := maker.NewPricingEngine(0)
		pricing.SetRate("USDC", "WETH", decimal.NewFromFloat(0.0005))

		quoteOut, err := pricing.QuoteOut("USDC", "WETH", uint256.NewInt(2001))
		require.NoError(t, err)
		// 2001 * 0.0005 = 1.0005, truncated to an integer amount.
		require.Equal(t, uint256.NewInt(1), quoteOut)
	})

	t.Run("zero_output", func(t *testing.T) {
		t.Parallel()

		pricing := maker.NewPricingEngine(0)
		pricing.SetRate("USDC", "WETH", decimal.NewFromFloat(0.0005))

		_, err := pricing.QuoteOut("USDC", "WETH", uint256.NewInt(1))
		require.Error(t, err)
	})
}
