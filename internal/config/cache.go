package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware that sits
// in front of the connection list and CSV export.  When Enabled is false or
// no Redis client is configured, caching is disabled.  Methods lists the HTTP
// methods to cache.  TTL bounds the lifetime of an entry; entries also become
// unreachable as soon as the store changes because every key embeds the
// generation counter stored under GenerationKey.
type CacheConfig struct {
	Enabled       bool
	Methods       map[string]bool
	TTL           time.Duration
	KeyStrategy   string
	Prefix        string
	GenerationKey string
	MaxBodyBytes  int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
	prefix := getenv("CACHE_PREFIX", "connmon:cache")
	return CacheConfig{
		Enabled:       getenv("CACHE_ENABLED", "true") == "true",
		Methods:       parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:           parseDur(getenv("CACHE_TTL", "30s")),
		KeyStrategy:   getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:        prefix,
		GenerationKey: prefix + ":generation",
		MaxBodyBytes:  atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// Helper functions reused from redis.go and ratelimit.go
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
