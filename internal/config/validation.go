package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks values every run mode needs.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.OpenAI.Model == "" {
		return fmt.Errorf("%w: openai.model cannot be empty", ErrInvalidModel)
	}

	// Temperature range follows the chat-completions API: 0.0 to 2.0.
	if c.OpenAI.Temperature < 0.0 || c.OpenAI.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f",
			ErrInvalidTemperature, c.OpenAI.Temperature)
	}

	if c.Agent.MaxIterations < 1 || c.Agent.MaxIterations > MaxAllowedIterations {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidMaxIterations, MaxAllowedIterations, c.Agent.MaxIterations)
	}

	if c.Notion.BaseURL == "" {
		return fmt.Errorf("%w: notion.base_url cannot be empty", ErrInvalidBaseURL)
	}
	if c.Notion.Version == "" {
		return fmt.Errorf("%w: notion.version cannot be empty", ErrInvalidBaseURL)
	}
	if c.GitHub.BaseURL == "" {
		return fmt.Errorf("%w: github.base_url cannot be empty", ErrInvalidBaseURL)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: %q (want debug, info, warn, or error)",
			ErrInvalidLogLevel, c.Log.Level)
	}

	return nil
}

// ValidateAsk checks the requirements of the ask command: completion-service
// credentials, plus bridge credentials when the bridge runs in-process. When
// agent.bridge_command is set the subprocess validates its own credentials.
func (c *Config) ValidateAsk() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY or openai.api_key in config.yaml",
			ErrMissingAPIKey)
	}

	if c.Agent.BridgeCommand == "" {
		return c.ValidateBridge()
	}
	return nil
}

// ValidateBridge checks the requirements of the tool execution server:
// credentials for both capability surfaces and a well-formed repository.
func (c *Config) ValidateBridge() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Notion.Token == "" {
		return fmt.Errorf("%w: set NOTION_TOKEN or notion.token in config.yaml",
			ErrMissingNotionToken)
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("%w: set GITHUB_TOKEN or github.token in config.yaml",
			ErrMissingGitHubToken)
	}
	return ValidateRepo(c.GitHub.Repo)
}

// ValidateRepo checks that repo is in "owner/name" form: exactly one slash,
// both halves non-empty, no whitespace.
func ValidateRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("%w: set GITHUB_REPO or github.repo in config.yaml", ErrInvalidRepo)
	}

	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q is not in owner/name form", ErrInvalidRepo, repo)
	}
	if strings.ContainsAny(repo, " \t\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidRepo, repo)
	}

	return nil
}
