package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	for _, id := range c.Telegram.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("telegram.admin_ids must be positive (got %d)", id)
		}
	}

	if c.Database.PrimaryEnabled() && c.Database.OpTimeout <= 0 {
		return fmt.Errorf("database.op_timeout must be > 0 (got %v)", c.Database.OpTimeout)
	}

	if strings.TrimSpace(c.Fallback.Dir) == "" {
		return fmt.Errorf("fallback.dir must not be empty")
	}

	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.Wizard.validate(); err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	if c.Geo.ResolveTimeout <= 0 {
		return fmt.Errorf("geo.resolve_timeout must be > 0 (got %v)", c.Geo.ResolveTimeout)
	}
	if c.Geo.MaxRedirects < 0 {
		return fmt.Errorf("geo.max_redirects must be >= 0 (got %d)", c.Geo.MaxRedirects)
	}

	if c.Media.Enabled() && c.Media.MaxBytes <= 0 {
		return fmt.Errorf("media.max_bytes must be > 0 (got %d)", c.Media.MaxBytes)
	}
	if c.Media.Enabled() && c.Media.FetchTimeout <= 0 {
		return fmt.Errorf("media.fetch_timeout must be > 0 (got %v)", c.Media.FetchTimeout)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

// ValidateServe adds the checks only the long-running bot needs.
func (c *Config) ValidateServe() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("telegram.poll_timeout must be > 0 (got %d)", c.Telegram.PollTimeout)
	}
	return nil
}

func (s *SyncConfig) validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be > 0 (got %v)", s.Interval)
	}
	if s.Debounce <= 0 {
		return fmt.Errorf("debounce must be > 0 (got %v)", s.Debounce)
	}
	if s.Debounce > s.Interval {
		return fmt.Errorf("debounce (%v) must not exceed interval (%v)", s.Debounce, s.Interval)
	}
	if s.BackfillTimeout <= 0 {
		return fmt.Errorf("backfill_timeout must be > 0 (got %v)", s.BackfillTimeout)
	}
	return nil
}

func (w *WizardConfig) validate() error {
	if w.StateTTL <= 0 {
		return fmt.Errorf("state_ttl must be > 0 (got %v)", w.StateTTL)
	}
	if w.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0 (got %v)", w.SweepInterval)
	}
	if w.StateTTL < w.SweepInterval {
		return fmt.Errorf("state_ttl (%v) must be >= sweep_interval (%v)", w.StateTTL, w.SweepInterval)
	}
	if w.WorkerIdle <= 0 {
		return fmt.Errorf("worker_idle must be > 0 (got %v)", w.WorkerIdle)
	}
	if w.QueueSize < 1 {
		return fmt.Errorf("queue_size must be >= 1 (got %d)", w.QueueSize)
	}
	return nil
}
