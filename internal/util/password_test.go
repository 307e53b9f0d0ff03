package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestPassword_HashesAreSalted(t *testing.T) {
	h1, err := HashPassword("secret")
	require.NoError(t, err)
	h2, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("secret", h1))
	assert.True(t, CheckPassword("secret", h2))
}
