package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/pathgen"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Remote    RemoteConfig      `yaml:"remote"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the local HTTP surface configuration used by serve mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RemoteConfig holds the Metadata API connection settings. Token is usually
// supplied through environment expansion, e.g. token: ${RAIDO_TOKEN}.
type RemoteConfig struct {
	BaseURL     string `yaml:"base_url"`
	WorkspaceID int64  `yaml:"workspace_id"`
	Branch      string `yaml:"branch"`
	Token       string `yaml:"token"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.WorkspaceID, validation.Required, validation.Min(1)),
		validation.Field(&c.Token, validation.Required),
	)
}

// WorkspaceConfig holds the local workspace layout: the naming mode for
// generated files and optional overrides for the type directories.
type WorkspaceConfig struct {
	Naming    string `yaml:"naming"`
	Functions string `yaml:"functions_dir"`
	APIs      string `yaml:"apis_dir"`
	Tables    string `yaml:"tables_dir"`
	Tasks     string `yaml:"tasks_dir"`
}

// Validate validates the workspace configuration. An empty naming mode
// defaults to clean.
func (c *WorkspaceConfig) Validate() error {
	if c.Naming == "" {
		c.Naming = string(pathgen.NamingClean)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Naming, validation.In(
			string(pathgen.NamingClean), string(pathgen.NamingLegacy))),
	)
}

// PathOptions converts the workspace configuration into path generation
// options.
func (c *WorkspaceConfig) PathOptions() pathgen.Options {
	return pathgen.Options{
		Mode: pathgen.NamingMode(orClean(c.Naming)),
		Dirs: pathgen.Dirs{
			Functions: c.Functions,
			APIs:      c.APIs,
			Tables:    c.Tables,
			Tasks:     c.Tasks,
		},
	}
}

func orClean(mode string) string {
	if mode == "" {
		return string(pathgen.NamingClean)
	}
	return mode
}

// AuthConfig holds authentication for the local HTTP surface.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 7411,
			},
		},
		Remote: RemoteConfig{
			Branch: "live",
		},
		Workspace: WorkspaceConfig{
			Naming: string(pathgen.NamingClean),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
