package runner

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"linkjd/internal/logging/types"
)

// domainPace tracks pacing and outcome counters for one host
type domainPace struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	failures int64
}

// Pacer spaces out navigations per host so a batch does not hammer the site
// through the operator's own session
type Pacer struct {
	perMinute float64
	domains   map[string]*domainPace
	mu        sync.Mutex
	logger    types.Logger
}

// NewPacer creates a pacer allowing perMinute navigations per host. Zero or
// less disables waiting.
func NewPacer(perMinute float64, logger types.Logger) *Pacer {
	return &Pacer{
		perMinute: perMinute,
		domains:   make(map[string]*domainPace),
		logger:    logger.WithField("component", "pacer"),
	}
}

// Wait blocks until a navigation to rawURL is allowed or ctx ends
func (p *Pacer) Wait(ctx context.Context, rawURL string) error {
	d := p.domain(domainOf(rawURL))
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	d.requests++
	d.lastSeen = time.Now()
	p.mu.Unlock()
	return nil
}

// RecordFailure counts a failed page for the host of rawURL
func (p *Pacer) RecordFailure(rawURL string) {
	d := p.domain(domainOf(rawURL))
	p.mu.Lock()
	d.failures++
	p.mu.Unlock()
}

// Stats returns request and failure counters per host
func (p *Pacer) Stats() map[string]map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]map[string]interface{}, len(p.domains))
	for domain, d := range p.domains {
		stats[domain] = map[string]interface{}{
			"requests":  d.requests,
			"failures":  d.failures,
			"last_seen": d.lastSeen,
		}
	}
	return stats
}

func (p *Pacer) domain(domain string) *domainPace {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d, ok := p.domains[domain]; ok {
		return d
	}

	limit := rate.Inf
	if p.perMinute > 0 {
		limit = rate.Limit(p.perMinute / 60.0)
	}
	d := &domainPace{limiter: rate.NewLimiter(limit, 1)}
	p.domains[domain] = d

	p.logger.Debug("Created domain pacer", map[string]interface{}{
		"domain":     domain,
		"per_minute": p.perMinute,
	})
	return d
}

// domainOf extracts the lower-cased host of a URL
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
