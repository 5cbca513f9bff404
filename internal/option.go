package internal

import "github.com/starford/raido/internal/remote"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	project *Project
	client  remote.Client
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithProject sets the discovered workspace.
func WithProject(p *Project) Option {
	return func(a *application) {
		a.project = p
	}
}

// WithClient overrides the remote client (used by tests).
func WithClient(c remote.Client) Option {
	return func(a *application) {
		a.client = c
	}
}
