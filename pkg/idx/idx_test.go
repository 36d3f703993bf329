package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b)

	// Monotonic source keeps same-millisecond IDs ordered.
	require.Less(t, a.String(), b.String())
}

func TestNewAt(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a := NewAt(early)
	b := NewAt(late)

	require.Less(t, a.String(), b.String())
	require.Equal(t, early.UnixMilli(), a.Time().UnixMilli())
}

func TestParse(t *testing.T) {
	valid := New().String()

	t.Run("valid", func(t *testing.T) {
		id, err := Parse(valid)
		require.NoError(t, err)
		require.Equal(t, valid, id.String())
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		id, err := Parse("  " + valid + "  ")
		require.NoError(t, err)
		require.Equal(t, valid, id.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Parse("")
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Parse("not-a-ulid")
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestMustParsePanics(t *testing.T) {
	require.Panics(t, func() { MustParse("bad") })
}
