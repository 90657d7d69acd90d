package config

import "time"

// NotifyConfig controls the status change webhook sink. An empty
// WebhookURL disables notification entirely.
type NotifyConfig struct {
	WebhookURL   string        `env:"WEBHOOK_URL"   envDefault:""`
	WebhookToken string        `env:"WEBHOOK_TOKEN" envDefault:""`
	Timeout      time.Duration `env:"TIMEOUT"       envDefault:"5s"`
	RetryLimit   int           `env:"RETRY_LIMIT"   envDefault:"2"`
}

// Enabled reports whether a webhook sink should be wired.
func (c NotifyConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// Sanitize applies guardrails to notify configuration values.
func (c *NotifyConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
}
