package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGuestToken(t *testing.T) {
	a := NewGuestToken()
	b := NewGuestToken()

	assert.True(t, IsGuestKey(a))
	assert.True(t, IsGuestKey(b))
	assert.NotEqual(t, a, b)
}

func TestIsGuestKey(t *testing.T) {
	assert.True(t, IsGuestKey("guest-abc"))
	assert.False(t, IsGuestKey("42"))
	assert.False(t, IsGuestKey(""))
	assert.False(t, IsGuestKey("guestabc"))
}
