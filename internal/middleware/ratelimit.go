package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/majupersonalizados/briefing/internal/metrics"
)

// RateLimiter counts hits per client inside a sliding window.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewRateLimiter allows limit hits per client every window. The name labels
// rejections in the rate_limited_total metric.
func NewRateLimiter(name string, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		name:   name,
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow records a hit for client and reports whether it is within the limit.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	recent := slices.DeleteFunc(rl.hits[client], func(t time.Time) bool {
		return !t.After(cutoff)
	})

	if len(recent) >= rl.limit {
		rl.hits[client] = recent
		return false
	}

	rl.hits[client] = append(recent, now)
	return true
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup()
	}
}

// cleanup drops clients with no hits inside the window
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for client, hits := range rl.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.hits, client)
		}
	}
}

// ClientIP resolves the address a request is counted against. Forwarding
// headers are only read when the direct peer is one of the trusted proxies.
type ClientIP struct {
	trusted []netip.Prefix
}

func NewClientIP(trusted []netip.Prefix) *ClientIP {
	return &ClientIP{trusted: trusted}
}

// From returns the peer address, or with a trusted peer the rightmost
// X-Forwarded-For hop that is not a trusted proxy. X-Real-IP is ignored.
func (c *ClientIP) From(r *http.Request) string {
	peer := remoteIP(r)
	if len(c.trusted) == 0 || !c.isTrusted(peer) {
		return peer
	}

	hops := forwardedHops(r)
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(hops[i])
		if err != nil {
			// a proxy we trust wrote something unreadable
			return peer
		}
		if !c.isTrusted(addr.Unmap().String()) {
			return addr.Unmap().String()
		}
	}

	return peer
}

func (c *ClientIP) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// forwardedHops lists X-Forwarded-For entries across all header lines,
// leftmost first.
func forwardedHops(r *http.Request) []string {
	var hops []string
	for _, line := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(line, ",") {
			hop = strings.TrimSpace(hop)
			if hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	return hops
}

// remoteIP is the direct peer without its port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects clients over the limiter's budget with 429.
func RateLimit(limiter *RateLimiter, ips *ClientIP) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := ips.From(r)

			if !limiter.Allow(ip) {
				metrics.RateLimited.WithLabelValues(limiter.name).Inc()
				slog.Warn("rate limit exceeded",
					"limiter", limiter.name,
					"ip", ip,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
				http.Error(w, "Muitas tentativas. Tente novamente mais tarde.", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}
