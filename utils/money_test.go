package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("10.5")
	require.NoError(t, err)
	assert.Equal(t, "10.50", amount.StringFixed(2))

	for _, in := range []string{"", "abc", "0", "-1", "1.005"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}
