package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := &RefreshToken{UserID: "u1", Token: "r1", ExpiresAt: now}

	assert.True(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Second)))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}
