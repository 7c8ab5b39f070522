package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateICAO(t *testing.T) {
	t.Run("trims and uppercases", func(t *testing.T) {
		code, err := ValidateICAO("kjfk ")
		require.NoError(t, err)
		assert.Equal(t, "KJFK", code)
	})

	t.Run("alphanumeric codes are accepted", func(t *testing.T) {
		code, err := ValidateICAO("\tk7r4\n")
		require.NoError(t, err)
		assert.Equal(t, "K7R4", code)
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, in := range []string{"cyyz", " EGLL", "Ksfo "} {
			once, err := ValidateICAO(in)
			require.NoError(t, err)
			twice, err := ValidateICAO(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		}
	})

	t.Run("wrong length fails", func(t *testing.T) {
		for _, in := range []string{"K", "JFK", "KJFKX", "  ab  ", "CYYZZ1"} {
			_, err := ValidateICAO(in)
			require.Error(t, err, in)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), in)
		}
	})

	t.Run("empty fails", func(t *testing.T) {
		_, err := ValidateICAO("   ")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("non-alphanumeric fails", func(t *testing.T) {
		for _, in := range []string{"KJ-K", "K JF", "KJF!", "ÄBCD"} {
			_, err := ValidateICAO(in)
			assert.Error(t, err, in)
		}
	})
}
