package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPassword_LengthBounds(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", 72))
	assert.NoError(t, err)
}

func TestCheckPassword_BadHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "whatever"))
}
