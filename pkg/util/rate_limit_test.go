package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNewValidRateLimiter(t *testing.T) {
	cases := []struct {
		name     string
		r        rate.Limit
		b        int
		hasError bool
	}{
		{"valid limiter", 0.1, 1, false},
		{"zero rate", 0, 1, true},
		{"zero burst", 0.1, 0, true},
		{"both zero", 0, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			limiter, err := NewValidLimiter(c.r, c.b)
			assert.Equal(t, c.hasError, err != nil)
			if !c.hasError {
				assert.NotNil(t, limiter)
			}
		})
	}
}

func TestParseRateLimitSyntax(t *testing.T) {
	cases := []struct {
		desc  string
		burst int
		limit rate.Limit
		err   bool
	}{
		{"5+1/1s", 5, rate.Every(time.Second), false},
		{"2+4/1m", 2, rate.Every(15 * time.Second), false},
		{"1/3m", 1, rate.Every(3 * time.Minute), false},
		{"3m", 1, rate.Every(3 * time.Minute), false},
		{"often", 0, 0, true},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			limiter, err := ParseRateLimitSyntax(c.desc)
			if c.err {
				assert.Error(t, err)
				return
			}

			if assert.NoError(t, err) {
				assert.Equal(t, c.burst, limiter.Burst())
				assert.InDelta(t, float64(c.limit), float64(limiter.Limit()), 1e-9)
			}
		})
	}

	limiter, err := ParseRateLimitSyntax("")
	assert.NoError(t, err)
	assert.Nil(t, limiter)
}
