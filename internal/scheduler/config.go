package scheduler

import "time"

// Config controls scheduler intervals and per-job timeouts.
type Config struct {
	RunInterval      time.Duration
	SyncTimeout      time.Duration
	RecurringTimeout time.Duration
	EnabledJobs      []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:      10 * time.Minute,
		SyncTimeout:      5 * time.Minute,
		RecurringTimeout: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.SyncTimeout <= 0 {
		c.SyncTimeout = defaults.SyncTimeout
	}
	if c.RecurringTimeout <= 0 {
		c.RecurringTimeout = defaults.RecurringTimeout
	}
	return c
}
