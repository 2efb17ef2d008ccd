package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	r := newRateLimiter(3)
	for i := 0; i < 3; i++ {
		assert.True(t, r.allow(), "call %d", i)
	}
	assert.False(t, r.allow())
}

func TestRateLimiterZeroLimitDisables(t *testing.T) {
	r := newRateLimiter(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, r.allow())
	}
}
