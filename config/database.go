package config

// DBConfig contains PostgreSQL database configuration for the remote
// multi-tenant store. An empty Host means no remote store is configured
// and the local fallback is used.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:""`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"dispatch"`
	Password string `env:"PASSWORD" envDefault:"dispatch"`
	Name     string `env:"NAME"     envDefault:"dispatch"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically
	// applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Configured reports whether a remote database has been pointed at.
func (c DBConfig) Configured() bool {
	return c.Host != ""
}

// RedisConfig contains Redis configuration for the session store.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
