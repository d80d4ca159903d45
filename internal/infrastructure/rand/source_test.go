package rand_test

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	randsource "github.com/rfq-network/rfqd/internal/infrastructure/rand"
)

func TestSecureSource(t *testing.T) {
	t.Parallel()

	source := randsource.NewSecureSource()

	draw, err := source.Draw(context.Background())
	require.NoError(t, err)
	require.True(t, draw.IsSecure)
	require.NotNil(t, draw.Value)
	require.NotZero(t, draw.EpochTimestamp)
}

func TestFixedSource(t *testing.T) {
	t.Parallel()

	source := randsource.NewFixedSource(uint256.NewInt(7), false)

	draw, err := source.Draw(context.Background())
	require.NoError(t, err)
	require.False(t, draw.IsSecure)
	require.Equal(t, uint256.NewInt(7), draw.Value)

	// The source serves clones, a caller mutating the draw must not affect
	// later draws.
	draw.Value.Add(draw.Value, uint256.NewInt(1))
	again, err := source.Draw(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(7), again.Value)
}
