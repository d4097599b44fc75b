package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("rounds to cents", func(t *testing.T) {
		d, err := Parse("100.005")
		require.NoError(t, err)
		assert.Equal(t, "100.01", Format(d))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Parse("R$ 100")
		require.Error(t, err)
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100.00", Format(decimal.NewFromInt(100)))
	assert.Equal(t, "1500.50", Format(MustParse("1500.5")))
}

func TestPositive(t *testing.T) {
	assert.True(t, Positive(MustParse("0.01")))
	assert.False(t, Positive(decimal.Zero))
	assert.False(t, Positive(MustParse("-1")))
}

func TestCents(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"100", true},
		{"100.5", true},
		{"100.00", true},
		{"100.000", true},
		{"99.995", false},
		{"1500.004", false},
		{"-0.001", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Cents(decimal.RequireFromString(tc.in)))
		})
	}
}
