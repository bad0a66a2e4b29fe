package config

import "time"

// CacheConfig defines settings for the public class list cache. When
// Enabled is false or no Redis client is configured, caching is
// disabled. A short TTL keeps the listed available_slots close to the
// live counter while absorbing read bursts.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads cache settings from the environment with
// defaults suitable for the class listing.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 10*time.Second),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}
