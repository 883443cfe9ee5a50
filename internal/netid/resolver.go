package netid

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"infrautilx/internal/domain"
	"infrautilx/internal/logging"
)

// DefaultEndpoints are the address-lookup services queried in order. Only
// the first two are ever consulted: one primary and exactly one fallback.
var DefaultEndpoints = []string{
	"https://api.ipify.org",
	"https://ifconfig.me",
}

// Resolver determines the caller's current public network address. Every
// call re-queries the network; nothing is cached.
type Resolver struct {
	endpoints []string
	client    *http.Client
}

// NewResolver builds a resolver over the given endpoints, falling back to
// DefaultEndpoints when none are supplied.
func NewResolver(endpoints ...string) *Resolver {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Resolver{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ResolveCurrentAddress queries the primary endpoint and, on any failure,
// exactly one fallback. If both fail the returned error is a
// *domain.NetworkError.
func (r *Resolver) ResolveCurrentAddress(ctx context.Context) (string, error) {
	attempts := r.endpoints
	if len(attempts) > 2 {
		attempts = attempts[:2]
	}

	var lastErr error
	for _, endpoint := range attempts {
		ip, err := r.query(ctx, endpoint)
		if err == nil {
			return ip, nil
		}
		lastErr = err
		logging.LogDebug("Address lookup failed, trying next endpoint", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
	}

	return "", &domain.NetworkError{Endpoints: attempts, Err: lastErr}
}

func (r *Resolver) query(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("response from %s is not an IP address: %q", endpoint, ip)
	}
	return ip, nil
}

// ToCIDR formats an IP address as a CIDR block. The default suffix is /32
// (a single host).
func ToCIDR(ip string, suffix ...string) string {
	s := "/32"
	if len(suffix) > 0 {
		s = suffix[0]
	}
	return ip + s
}
