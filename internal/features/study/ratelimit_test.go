package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("u1"), "запрос %d", i)
	}
	assert.False(t, rl.Allow("u1"))

	// Лимиты независимы по пользователям
	assert.True(t, rl.Allow("u2"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("u1"))
}
