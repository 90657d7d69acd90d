package config

import "time"

// SessionConfig controls the Redis-backed session store.
type SessionConfig struct {
	// TTL is how long a session lives without renewal.
	TTL time.Duration `env:"TTL" envDefault:"12h"`
	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"dispatch:session:"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = 12 * time.Hour
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "dispatch:session:"
	}
}
