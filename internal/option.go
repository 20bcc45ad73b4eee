package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	once        bool
	dryRun      bool
	forceResync bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOnce runs a single sync cycle and exits instead of watching.
func WithOnce() Option {
	return func(a *application) {
		a.once = true
	}
}

// WithDryRun reports planned actions without writing files or state.
func WithDryRun() Option {
	return func(a *application) {
		a.dryRun = true
	}
}

// WithForceResync clears sync state before the first cycle so every
// note is rewritten.
func WithForceResync() Option {
	return func(a *application) {
		a.forceResync = true
	}
}
