package service

import (
	"time"
)

// Config controls the evaluation windows. The dedup and expiry windows
// are independent constants with no derived relationship.
type Config struct {
	// FreshnessWindow is the maximum age of the latest reading; older
	// data skips the evaluation entirely.
	FreshnessWindow time.Duration
	// DedupWindow suppresses a candidate when an unacknowledged alert of
	// the same type already exists within it.
	DedupWindow time.Duration
	// ExpiryWindow sets expires_at on newly created alerts.
	ExpiryWindow time.Duration
	// Horizons are the projection horizons in minutes.
	Horizons []int
}

func DefaultConfig() Config {
	return Config{
		FreshnessWindow: 10 * time.Minute,
		DedupWindow:     30 * time.Minute,
		ExpiryWindow:    60 * time.Minute,
		Horizons:        DefaultHorizons,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.FreshnessWindow <= 0 {
		c.FreshnessWindow = defaults.FreshnessWindow
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = defaults.DedupWindow
	}
	if c.ExpiryWindow <= 0 {
		c.ExpiryWindow = defaults.ExpiryWindow
	}
	if len(c.Horizons) == 0 {
		c.Horizons = defaults.Horizons
	}
	return c
}
