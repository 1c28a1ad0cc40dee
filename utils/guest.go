package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GuestKeyPrefix marks a cart key with no durable identity behind it.
const GuestKeyPrefix = "guest-"

func NewGuestToken() string {
	return GuestKeyPrefix + uuid.NewString()
}

func IsGuestKey(userKey string) bool {
	return strings.HasPrefix(userKey, GuestKeyPrefix)
}
