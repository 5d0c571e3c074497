package schedule

import (
	"time"

	"tender-notifier/internal/common/errors"
)

// Config describes a fixed-interval job with a delayed first run.
type Config struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	FirstRun time.Duration `json:"first_run"`
}

func NewConfig(name string, interval, firstRun time.Duration) *Config {
	return &Config{
		Name:     name,
		Interval: interval,
		FirstRun: firstRun,
	}
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.ValidationError("schedule name is required")
	}
	// cron.Every rounds down to whole seconds.
	if c.Interval < time.Second {
		return errors.ValidationError("schedule interval must be at least 1s")
	}
	if c.FirstRun < 0 {
		return errors.ValidationError("schedule first run delay cannot be negative")
	}
	return nil
}
