// Package ratelimit throttles outbound geocoding lookups per club, per
// client IP and globally.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config holds rate limit configuration.
type Config struct {
	Cooldown       time.Duration // Minimum time between lookups for one club (default: 1s)
	GlobalCooldown time.Duration // Minimum time between any two lookups (default: 1s)
	MaxPerHour     int           // Max lookups per club per hour (default: 20)
	MaxIPPerHour   int           // Max lookups per client IP per hour (default: 60)

	// Clock for testing (nil uses real time)
	Clock clockwork.Clock
}

// DefaultConfig follows the public Nominatim usage policy.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:       time.Second,
		GlobalCooldown: time.Second,
		MaxPerHour:     20,
		MaxIPPerHour:   60,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts and timestamps.
type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

type Limiter struct {
	config *Config
	clock  clockwork.Clock
	mu     sync.RWMutex
	// Keyed by club id or hash of IP
	byKey  map[string]*entry
	byIP   map[string]*entry
	lastAt time.Time

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byKey:         make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Check reports whether a lookup for key from ip may run now. It does not
// record anything; call Record once the lookup is issued.
func (l *Limiter) Check(key, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.check(now, normalizeKey(key), hashKey("ip:", ip))
}

// Record counts one issued lookup.
func (l *Limiter) Record(key, ip string) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(now, normalizeKey(key), hashKey("ip:", ip))
}

// Allow checks and, when allowed, records under one lock so concurrent
// callers cannot both pass the global cooldown.
func (l *Limiter) Allow(key, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	k, ipKey := normalizeKey(key), hashKey("ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()
	result := l.check(now, k, ipKey)
	if result.Allowed {
		l.record(now, k, ipKey)
	}
	return result
}

// check and record expect l.mu to be held.
func (l *Limiter) check(now time.Time, key, ipKey string) LimitResult {
	if !l.lastAt.IsZero() {
		if elapsed := now.Sub(l.lastAt); elapsed < l.config.GlobalCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.GlobalCooldown - elapsed,
				Reason:     "global_cooldown",
			}
		}
	}

	if e := l.byKey[key]; e != nil {
		elapsed := now.Sub(e.lastAt)
		if elapsed < l.config.Cooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.Cooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.byIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

func (l *Limiter) record(now time.Time, key, ipKey string) {
	l.lastAt = now
	bump(l.byKey, key, now)
	bump(l.byIP, ipKey, now)
}

func bump(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := l.clock.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.Chan():
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byKey {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byKey, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

func (l *Limiter) size() (keys, ips int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byKey), len(l.byIP)
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP handles both IPv4 and IPv4-mapped IPv6 addresses.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LogRateLimitExceeded logs a throttled lookup.
func LogRateLimitExceeded(ctx context.Context, key, ip string, result LimitResult) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", "geocoding").
		Str("club_id", key).
		Str("ip", ip).
		Str("reason", result.Reason).
		Dur("retry_after", result.RetryAfter).
		Msg("Geocoding rate limit exceeded")
}
