package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes every validation tier.
func validConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:      "sk-test-key",
			Model:       DefaultModel,
			Temperature: 0.3,
		},
		Agent: AgentConfig{MaxIterations: DefaultMaxIterations},
		Notion: NotionConfig{
			Token:   "ntn-test-token",
			BaseURL: "https://api.notion.com",
			Version: NotionAPIVersion,
		},
		GitHub: GitHubConfig{
			Token:   "ghp-test-token",
			Repo:    "owner/name",
			BaseURL: "https://api.github.com",
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.OpenAI.Model = "" },
			wantErr: ErrInvalidModel,
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.OpenAI.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "temperature negative",
			mutate:  func(c *Config) { c.OpenAI.Temperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "zero iterations",
			mutate:  func(c *Config) { c.Agent.MaxIterations = 0 },
			wantErr: ErrInvalidMaxIterations,
		},
		{
			name:    "iterations above ceiling",
			mutate:  func(c *Config) { c.Agent.MaxIterations = MaxAllowedIterations + 1 },
			wantErr: ErrInvalidMaxIterations,
		},
		{
			name:    "empty notion base URL",
			mutate:  func(c *Config) { c.Notion.BaseURL = "" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "empty notion version",
			mutate:  func(c *Config) { c.Notion.Version = "" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestValidateAsk(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.OpenAI.APIKey = ""
		if err := cfg.ValidateAsk(); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("ValidateAsk() = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("in-process bridge needs bridge credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Notion.Token = ""
		if err := cfg.ValidateAsk(); !errors.Is(err, ErrMissingNotionToken) {
			t.Errorf("ValidateAsk() = %v, want ErrMissingNotionToken", err)
		}
	})

	t.Run("subprocess bridge validates its own credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Agent.BridgeCommand = "crossref mcp"
		cfg.Notion.Token = ""
		cfg.GitHub.Token = ""
		if err := cfg.ValidateAsk(); err != nil {
			t.Errorf("ValidateAsk() = %v, want nil when bridge is external", err)
		}
	})
}

func TestValidateBridge(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validConfig().ValidateBridge(); err != nil {
			t.Fatalf("ValidateBridge() = %v, want nil", err)
		}
	})

	t.Run("missing notion token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Notion.Token = ""
		if err := cfg.ValidateBridge(); !errors.Is(err, ErrMissingNotionToken) {
			t.Errorf("ValidateBridge() = %v, want ErrMissingNotionToken", err)
		}
	})

	t.Run("missing github token", func(t *testing.T) {
		cfg := validConfig()
		cfg.GitHub.Token = ""
		if err := cfg.ValidateBridge(); !errors.Is(err, ErrMissingGitHubToken) {
			t.Errorf("ValidateBridge() = %v, want ErrMissingGitHubToken", err)
		}
	})

	t.Run("malformed repo", func(t *testing.T) {
		cfg := validConfig()
		cfg.GitHub.Repo = "just-a-name"
		if err := cfg.ValidateBridge(); !errors.Is(err, ErrInvalidRepo) {
			t.Errorf("ValidateBridge() = %v, want ErrInvalidRepo", err)
		}
	})
}

func TestValidateRepo(t *testing.T) {
	tests := []struct {
		repo    string
		wantErr bool
	}{
		{repo: "owner/name"},
		{repo: "koopa0/crossref"},
		{repo: "", wantErr: true},
		{repo: "no-slash", wantErr: true},
		{repo: "a/b/c", wantErr: true},
		{repo: "owner/", wantErr: true},
		{repo: "/name", wantErr: true},
		{repo: "ow ner/name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			err := ValidateRepo(tt.repo)
			if tt.wantErr && !errors.Is(err, ErrInvalidRepo) {
				t.Errorf("ValidateRepo(%q) = %v, want ErrInvalidRepo", tt.repo, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateRepo(%q) = %v, want nil", tt.repo, err)
			}
		})
	}
}
