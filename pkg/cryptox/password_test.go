package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "पासवर्ड🔒"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			// bcrypt hashes are self-describing: algorithm, cost and salt
			// are all embedded in the encoded string.
			require.True(t, strings.HasPrefix(hash, "$2a$10$"),
				"hash should embed the fixed cost")

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2, "each hash should use a fresh salt")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		err := VerifyPassword("battery-staple", hash)
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("malformed hash surfaces as generic mismatch", func(t *testing.T) {
		err := VerifyPassword("correct-horse", "not-a-bcrypt-hash")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("empty hash", func(t *testing.T) {
		err := VerifyPassword("correct-horse", "")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{})
	for range 20 {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 12)
		seen[pw] = struct{}{}
	}
	require.Len(t, seen, 20, "generated passwords should not repeat")
}
