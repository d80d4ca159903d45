package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

func TestBalance(t *testing.T) {
	t.Parallel()

	balance := domain.NewBalance("alice", "USDC")
	require.True(t, balance.Amount.IsZero())

	balance.Add(amount(100))
	require.True(t, balance.Covers(amount(100)))
	require.False(t, balance.Covers(amount(101)))

	require.NoError(t, balance.Sub(amount(40)))
	require.Equal(t, amount(60), balance.Amount)

	err := balance.Sub(amount(61))
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
	// A failing debit must leave the balance untouched.
	require.Equal(t, amount(60), balance.Amount)
}
