package enrichment

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute is the provider's documented budget.
const DefaultRequestsPerMinute = 50

// NewSharedLimiter returns a limiter admitting perMinute requests per minute
// with no burst. Give the same limiter to every Runner in a process so
// concurrent bulk runs share one budget. Returns nil when perMinute <= 0.
func NewSharedLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
