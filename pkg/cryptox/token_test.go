package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateHexToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"reset token", ResetTokenSize},
		{"short token", 2},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateHexToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.size*2)

			_, err = hex.DecodeString(token)
			require.NoError(t, err, "token should be hex encoded")

			token2, err := GenerateHexToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateHexToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateHexToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestMustGenerateHexToken_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustGenerateHexToken(0)
	})
	require.Len(t, MustGenerateHexToken(ResetTokenSize), 64)
}

func TestRandomIntn(t *testing.T) {
	for range 200 {
		n, err := RandomIntn(9000)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 9000)
	}

	_, err := RandomIntn(0)
	require.Error(t, err)
}
