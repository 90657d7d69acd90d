package config

import "time"

// Store backend selection values.
const (
	// StoreBackendAuto picks the remote store when it is configured and
	// reachable, otherwise falls back to the local in-memory store.
	StoreBackendAuto = "auto"
	// StoreBackendRemote requires the remote store; startup fails when it
	// is unreachable.
	StoreBackendRemote = "remote"
	// StoreBackendLocal forces the in-memory fallback.
	StoreBackendLocal = "local"
)

// StoreConfig controls the persistence gateway. The backend is selected
// once at startup; there is no per-operation failover.
type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"auto"`

	// OperationTimeout bounds every store call.
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"5s"`

	// ReadRetryDelay is the pause before the single retry of a read that
	// failed with an availability error.
	ReadRetryDelay time.Duration `env:"READ_RETRY_DELAY" envDefault:"250ms"`
}

// Sanitize applies guardrails to store configuration values.
func (c *StoreConfig) Sanitize() {
	switch c.Backend {
	case StoreBackendAuto, StoreBackendRemote, StoreBackendLocal:
	default:
		c.Backend = StoreBackendAuto
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 5 * time.Second
	}
	if c.ReadRetryDelay < 0 {
		c.ReadRetryDelay = 0
	}
}
