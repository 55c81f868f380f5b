package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the bucket rule for one route. Paths ending in "/" match
// by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // Requests per Window
	Window time.Duration
	// Burst defaults to Limit when 0.
	Burst int
}

// LoadConfig reads RATE_LIMIT_* variables. Unparseable values fall back to
// the defaults.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTimeout:     envOr("RATE_LIMIT_IDLE_TIMEOUT", time.Hour, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the candidate API rules.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Writes: one save per profile visit is the normal pace.
		{Path: "/api/candidates", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/candidates/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Existence checks run on every profile page load.
		{Path: "/api/candidates/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},

		// Listing is handled by the default limit; /health is unlimited.
	}
}

func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList splits a comma-separated address list into a set.
func parseIPList(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
