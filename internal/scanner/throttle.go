package scanner

import (
	"context"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const minAdaptiveRate = rate.Limit(1)

// Throttler is the scan-wide rate limit shared by all workers. With a base
// rate of 0 it is unlimited unless adaptive mode slows it down. In adaptive
// mode 429/503 responses and repeated transport errors halve the rate and
// healthy responses gradually restore it.
type Throttler struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	baseRate rate.Limit
	adaptive bool
	// consecutive throttle signals
	consecutive int
	// rate to fall back from when the base is unlimited
	ceiling rate.Limit
}

// NewThrottler creates a throttler. perSecond <= 0 means no fixed limit.
func NewThrottler(perSecond int, adaptive bool) *Throttler {
	base := rate.Inf
	if perSecond > 0 {
		base = rate.Limit(perSecond)
	}
	burst := 1
	if base == rate.Inf {
		burst = 0
	}
	return &Throttler{
		limiter:  rate.NewLimiter(base, burst),
		baseRate: base,
		adaptive: adaptive,
		ceiling:  50,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (t *Throttler) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Limit returns the current rate in requests per second.
func (t *Throttler) Limit() rate.Limit {
	return t.limiter.Limit()
}

// RecordStatus updates the throttler based on a response status code.
func (t *Throttler) RecordStatus(statusCode int) {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable {
		t.consecutive++
		t.slowDown("rate limited", statusCode)
		return
	}
	if t.consecutive > 0 {
		t.consecutive = 0
		t.speedUp()
	}
}

// RecordError flags a transport failure as a possible rate limit signal.
// Three in a row slow the scan down.
func (t *Throttler) RecordError() {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 {
		t.slowDown("repeated errors", 0)
	}
}

// slowDown halves the current rate. Caller holds t.mu.
func (t *Throttler) slowDown(reason string, status int) {
	cur := t.limiter.Limit()
	if cur == rate.Inf {
		cur = t.ceiling
	}
	next := cur / 2
	if next < minAdaptiveRate {
		next = minAdaptiveRate
	}
	if next == t.limiter.Limit() {
		return
	}
	t.limiter.SetLimit(next)
	t.limiter.SetBurst(1)
	log.WithFields(log.Fields{"status": status, "rate": float64(next)}).Warnf("%s, backing off", reason)
}

// speedUp doubles the current rate up to the base rate. Caller holds t.mu.
func (t *Throttler) speedUp() {
	cur := t.limiter.Limit()
	if cur == t.baseRate {
		return
	}
	next := cur * 2
	if t.baseRate != rate.Inf && next >= t.baseRate {
		next = t.baseRate
	} else if t.baseRate == rate.Inf && next >= t.ceiling {
		next = rate.Inf
	}
	t.limiter.SetLimit(next)
	log.WithField("rate", float64(next)).Debug("recovering request rate")
}
