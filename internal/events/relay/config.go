package relay

import "time"

// Config controls the billing event relay loop. DrainTimeout bounds a whole
// RunOnce pass and must leave room for BatchSize sequential posts; when unset
// it is derived from BatchSize and PostTimeout.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	PostTimeout  time.Duration
	DrainTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    50,
		PollInterval: 2 * time.Second,
		PostTimeout:  5 * time.Second,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.PostTimeout <= 0 {
		c.PostTimeout = 5 * time.Second
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = time.Duration(c.BatchSize) * c.PostTimeout
	}
	return c
}
