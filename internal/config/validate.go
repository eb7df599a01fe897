package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Review.validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	if err := c.Notify.validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if c.Storage.LookupTimeout <= 0 {
		return fmt.Errorf("storage.lookup_timeout must be > 0 (got %v)", c.Storage.LookupTimeout)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit: requests_per_second and burst must be > 0 when enabled")
	}

	return nil
}

func (r *ReviewConfig) validate() error {
	if r.MaxDocumentAttempts < 1 {
		return fmt.Errorf("max_document_attempts must be >= 1 (got %d)", r.MaxDocumentAttempts)
	}
	if r.MaxPaymentAttempts < 1 {
		return fmt.Errorf("max_payment_attempts must be >= 1 (got %d)", r.MaxPaymentAttempts)
	}
	if r.WarningThreshold < 1 || r.WarningThreshold >= r.MaxDocumentAttempts {
		return fmt.Errorf("warning_threshold must be in [1, max_document_attempts) (got %d)", r.WarningThreshold)
	}
	if r.GracePeriodHours < 0 {
		return fmt.Errorf("grace_period_hours must be >= 0 (got %d)", r.GracePeriodHours)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.BatchWindow < 0 {
		return fmt.Errorf("batch_window must be >= 0 (got %v)", n.BatchWindow)
	}
	if n.FlushLimit <= 0 {
		return fmt.Errorf("flush_limit must be > 0 (got %d)", n.FlushLimit)
	}
	if _, err := cron.ParseStandard(n.FlushSchedule); err != nil {
		return fmt.Errorf("flush_schedule %q: %w", n.FlushSchedule, err)
	}
	return nil
}
