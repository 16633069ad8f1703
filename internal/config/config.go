// Package config provides application configuration with multi-source priority.
//
// Sources, highest to lowest:
//  1. Environment variables (runtime override)
//  2. Config file (~/.crossref/config.yaml, then ./config.yaml)
//  3. Default values
//
// Categories:
//   - OpenAI: completion model, temperature, API key
//   - Agent: iteration budget, bridge process command
//   - Notion / GitHub: capability-surface credentials and endpoints
//   - Telemetry: optional OTLP trace export
//   - Log: level and format
//
// Sensitive fields (API keys, tokens) are masked by MarshalJSON and String;
// never log a Config through anything else. Validation lives in validation.go
// and returns sentinel errors checkable with errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the completion-service API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModel indicates the completion model name is invalid.
	ErrInvalidModel = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the sampling temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxIterations indicates the iteration budget is out of range.
	ErrInvalidMaxIterations = errors.New("invalid max iterations")

	// ErrMissingNotionToken indicates the Notion integration token is missing.
	ErrMissingNotionToken = errors.New("missing Notion token")

	// ErrMissingGitHubToken indicates the GitHub token is missing.
	ErrMissingGitHubToken = errors.New("missing GitHub token")

	// ErrInvalidRepo indicates the repository is not in "owner/name" form.
	ErrInvalidRepo = errors.New("invalid repository")

	// ErrInvalidBaseURL indicates a capability-surface base URL is empty.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidLogLevel indicates the log level string is unknown.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-4o"

	// DefaultMaxIterations bounds the reasoning loop when unconfigured.
	DefaultMaxIterations = 15

	// MaxAllowedIterations is the absolute budget ceiling.
	MaxAllowedIterations = 100

	// NotionAPIVersion is the Notion-Version header value the client pins.
	NotionAPIVersion = "2022-06-28"
)

// Config stores application configuration.
// SECURITY: sensitive fields are masked by the nested MarshalJSON methods.
// When adding a secret field, extend the owning section's MarshalJSON.
type Config struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai" json:"openai"`
	Agent     AgentConfig     `mapstructure:"agent" json:"agent"`
	Notion    NotionConfig    `mapstructure:"notion" json:"notion"`
	GitHub    GitHubConfig    `mapstructure:"github" json:"github"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry"`
	Log       LogConfig       `mapstructure:"log" json:"log"`
}

// OpenAIConfig configures the completion service.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON
	Model       string  `mapstructure:"model" json:"model"`
	BaseURL     string  `mapstructure:"base_url" json:"base_url"` // empty = SDK default endpoint
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
}

// AgentConfig configures the reasoning loop.
type AgentConfig struct {
	// MaxIterations caps completion calls per run.
	MaxIterations int `mapstructure:"max_iterations" json:"max_iterations"`

	// BridgeCommand spawns the tool server as a subprocess when set
	// (e.g. "crossref mcp"). Empty runs the bridge in-process.
	BridgeCommand string `mapstructure:"bridge_command" json:"bridge_command"`
}

// NotionConfig configures the knowledge-base surface.
type NotionConfig struct {
	Token   string `mapstructure:"token" json:"token"` // SENSITIVE: masked in MarshalJSON
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	Version string `mapstructure:"version" json:"version"`
}

// GitHubConfig configures the repository surface.
type GitHubConfig struct {
	Token   string `mapstructure:"token" json:"token"` // SENSITIVE: masked in MarshalJSON
	Repo    string `mapstructure:"repo" json:"repo"`   // "owner/name"
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// TelemetryConfig configures optional OTLP trace export.
type TelemetryConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"` // empty = tracing disabled
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	JSON  bool   `mapstructure:"json" json:"json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".crossref")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("openai.model", DefaultModel)
	viper.SetDefault("openai.temperature", 0.3)

	viper.SetDefault("agent.max_iterations", DefaultMaxIterations)
	viper.SetDefault("agent.bridge_command", "")

	viper.SetDefault("notion.base_url", "https://api.notion.com")
	viper.SetDefault("notion.version", NotionAPIVersion)

	viper.SetDefault("github.base_url", "https://api.github.com")

	viper.SetDefault("telemetry.service_name", "crossref")
	viper.SetDefault("telemetry.environment", "dev")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)
}

// bindEnvVariables binds environment variables explicitly. Secrets are only
// ever read from the environment or the config file, never from flags.
func bindEnvVariables() {
	// Bind errors on hardcoded keys are programming bugs, not runtime errors.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("openai.api_key", "OPENAI_API_KEY")
	mustBind("openai.model", "OPENAI_MODEL")
	mustBind("openai.base_url", "OPENAI_BASE_URL")

	mustBind("notion.token", "NOTION_TOKEN")

	mustBind("github.token", "GITHUB_TOKEN")
	mustBind("github.repo", "GITHUB_REPO")

	mustBind("agent.bridge_command", "CROSSREF_BRIDGE_COMMAND")
	mustBind("agent.max_iterations", "CROSSREF_MAX_ITERATIONS")

	mustBind("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	mustBind("log.level", "CROSSREF_LOG_LEVEL")
}

// maskedValue replaces masked secret bytes. Full-width blocks avoid the
// substring-leak problem plain "*" or "[REDACTED]" placeholders have when a
// secret itself contains those characters.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Secrets of 8 bytes or fewer
// are masked entirely; longer ones keep the first and last two bytes for
// debug utility. This guards against accidental logging, nothing more; if
// logs leak, rotate the secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON masks the API key.
func (c OpenAIConfig) MarshalJSON() ([]byte, error) {
	type alias OpenAIConfig
	a := alias(c)
	a.APIKey = maskSecret(a.APIKey)
	return json.Marshal(a)
}

// MarshalJSON masks the integration token.
func (c NotionConfig) MarshalJSON() ([]byte, error) {
	type alias NotionConfig
	a := alias(c)
	a.Token = maskSecret(a.Token)
	return json.Marshal(a)
}

// MarshalJSON masks the access token.
func (c GitHubConfig) MarshalJSON() ([]byte, error) {
	type alias GitHubConfig
	a := alias(c)
	a.Token = maskSecret(a.Token)
	return json.Marshal(a)
}

// MarshalJSON implements json.Marshaler; secret masking happens in the
// nested section marshalers.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	data, err := json.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer so accidental printing never leaks secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
