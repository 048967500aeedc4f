package internal

import (
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
	"github.com/starford/ansuz/internal/trigger"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Calendar providers.
const (
	CalendarNone   = "none"
	CalendarGoogle = "google"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig    `yaml:"app"`
	Vault    VaultConfig          `yaml:"vault"`
	SQLite   SQLiteConfig         `yaml:"sqlite"`
	Auth     AuthConfig           `yaml:"auth"`
	Capture  CaptureConfig        `yaml:"capture"`
	Triggers trigger.Config       `yaml:"triggers"`
	Action   routing.ActionConfig `yaml:"action_detection"`
	Rules    RulesConfig          `yaml:"rules"`
	AI       AIConfig             `yaml:"ai"`
	Calendar CalendarConfig       `yaml:"calendar"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Capture.Validate(); err != nil {
		return err
	}
	return c.Calendar.Validate()
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

// HTTPConfig holds HTTP server configuration.
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

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration for the entity index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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

// CaptureConfig holds the capture defaults, formatting tokens, and the
// daily-note location.
type CaptureConfig struct {
	DefaultDestination models.Destination `yaml:"default_destination"`
	DefaultFormat      models.Format      `yaml:"default_format"`
	DefaultAddDueDate  bool               `yaml:"default_add_due_date"`
	DueDateOffsetDays  int                `yaml:"due_date_offset_days"`

	TaskPrefix    string `yaml:"task_prefix"`
	DueDateMarker string `yaml:"due_date_marker"`
	TimeFormat    string `yaml:"time_format"`

	DailyDir    string `yaml:"daily_dir"`
	DailyLayout string `yaml:"daily_layout"`

	ThoughtsHeading   string `yaml:"thoughts_heading"`
	ResearchHeading   string `yaml:"research_heading"`
	ReferencesHeading string `yaml:"references_heading"`
}

// Validate validates the capture configuration.
func (c *CaptureConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDestination, validation.Required,
			validation.In(models.DestMeetingFollowup, models.DestDailyThoughts, models.DestDailyEnd)),
		validation.Field(&c.DefaultFormat, validation.Required,
			validation.In(models.FormatAuto, models.FormatTask, models.FormatThought)),
		validation.Field(&c.DueDateOffsetDays, validation.Min(0)),
		validation.Field(&c.TaskPrefix, validation.Required),
		validation.Field(&c.TimeFormat, validation.Required),
		validation.Field(&c.DailyDir, validation.Required),
		validation.Field(&c.DailyLayout, validation.Required),
		validation.Field(&c.ThoughtsHeading, validation.Required),
	)
}

// RulesConfig points at the routing rules file.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// AIConfig holds the optional AI fallback and research enrichment settings.
// An empty Model disables both regardless of the flags.
type AIConfig struct {
	FallbackEnabled bool   `yaml:"fallback_enabled"`
	ResearchEnabled bool   `yaml:"research_enabled"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
}

// CalendarConfig holds the meeting-context provider settings. TokenEnv names
// the environment variable carrying the OAuth access token.
type CalendarConfig struct {
	Provider  string   `yaml:"provider"`
	TokenEnv  string   `yaml:"token_env"`
	Calendars []string `yaml:"calendars"`
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = CalendarNone
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(CalendarNone, CalendarGoogle)),
	); err != nil {
		return err
	}
	if c.Provider == CalendarGoogle && c.TokenEnv == "" {
		return fmt.Errorf("calendar: provider is %q but token_env is empty", CalendarGoogle)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Capture: CaptureConfig{
			DefaultDestination: models.DestDailyThoughts,
			DefaultFormat:      models.FormatAuto,
			DefaultAddDueDate:  true,
			DueDateOffsetDays:  1,
			TaskPrefix:         "- [ ]",
			DueDateMarker:      "📅",
			TimeFormat:         "15:04",
			DailyDir:           "daily",
			DailyLayout:        "2006-01-02",
			ThoughtsHeading:    "## Thoughts",
			ResearchHeading:    "## Research",
			ReferencesHeading:  "## References",
		},
		Triggers: trigger.Config{
			CheckboxPrefix: "- [ ]",
			Reference:      trigger.PhraseSet{Enabled: true, Phrases: []string{"read later", "reference", "save this"}},
			Followup:       trigger.PhraseSet{Enabled: true, Phrases: []string{"follow up", "followup", "remind me"}},
			Research:       trigger.PhraseSet{Enabled: true, Phrases: []string{"research", "look up", "look into"}},
		},
		Action: routing.ActionConfig{
			Enabled:                  true,
			MatchMode:                routing.MatchStartsWith,
			Verbs:                    []string{"call", "email", "send", "book", "schedule", "buy", "fix", "review", "write", "ask"},
			IncludeImperativePattern: true,
			IncludeShortContent:      true,
			ShortContentMaxChars:     100,
		},
		Rules: RulesConfig{
			Path: "config/rules.yaml",
		},
		Calendar: CalendarConfig{
			Provider: CalendarNone,
		},
	}
}

// LoadConfig loads configuration from a YAML file with environment variable
// expansion, on top of whatever values cfg already carries.
func LoadConfig(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}
