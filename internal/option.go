package internal

import "github.com/starford/ehwaz/internal/publish"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	notifier publish.Notifier
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithNotifier sets the notifier that receives publish-cycle progress.
func WithNotifier(n publish.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}
