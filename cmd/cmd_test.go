package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/config"
	"github.com/koopa0/crossref/internal/log"
)

// captureStdout redirects os.Stdout around fn and returns what it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out)
}

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = args
	t.Cleanup(func() { os.Args = old })
}

func TestExecute_UnknownCommand(t *testing.T) {
	setArgs(t, "crossref", "bogus")

	err := Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown command: bogus") {
		t.Errorf("error = %v", err)
	}
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	setArgs(t, "crossref")

	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Errorf("Execute failed: %v", err)
		}
	})

	for _, want := range []string{"Usage:", "crossref ask", "crossref mcp", "GITHUB_REPO"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRunVersion(t *testing.T) {
	out := captureStdout(t, runVersion)

	for _, want := range []string{"crossref " + AppVersion, "Build Time:", "Git Commit:"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q", want)
		}
	}
}

func TestRunAsk_RequiresQuestion(t *testing.T) {
	err := runAsk(nil)
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Errorf("error = %v", err)
	}

	err = runAsk([]string{"  ", ""})
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Errorf("error = %v", err)
	}
}

func TestRunAsk_MaxItersOutOfRange(t *testing.T) {
	// Both reject before any config or network work happens.
	for _, n := range []string{"-3", "101"} {
		err := runAsk([]string{"--max-iters", n, "question"})
		if err == nil || !strings.Contains(err.Error(), "--max-iters must be between") {
			t.Errorf("--max-iters %s: error = %v", n, err)
		}
	}
}

func TestParseAskArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantQuestion string
		wantIters    int
		wantErr      bool
	}{
		{
			name:         "plain question",
			args:         []string{"does", "the", "code", "match?"},
			wantQuestion: "does the code match?",
		},
		{
			name:         "with iteration override",
			args:         []string{"--max-iters", "30", "is", "auth", "done?"},
			wantQuestion: "is auth done?",
			wantIters:    30,
		},
		{
			name:    "unknown flag",
			args:    []string{"--verbose", "question"},
			wantErr: true,
		},
		{
			name:    "non-numeric value",
			args:    []string{"--max-iters", "lots", "question"},
			wantErr: true,
		},
		{
			name:         "empty",
			args:         nil,
			wantQuestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question, iters, err := parseAskArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAskArgs failed: %v", err)
			}
			if question != tt.wantQuestion {
				t.Errorf("question = %q, want %q", question, tt.wantQuestion)
			}
			if iters != tt.wantIters {
				t.Errorf("iters = %d, want %d", iters, tt.wantIters)
			}
		})
	}
}

func TestRenderMarkdown_PassthroughWhenPiped(t *testing.T) {
	input := "# Title\n\nSome **answer** text."

	captureStdout(t, func() {
		// Inside the capture, stdout is a pipe, so rendering must be skipped.
		if rendered := renderMarkdown(input); rendered != input {
			t.Errorf("rendered = %q, want passthrough", rendered)
		}
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Notion: config.NotionConfig{Token: "tok", BaseURL: "https://api.notion.com", Version: "2022-06-28"},
		GitHub: config.GitHubConfig{Token: "tok", Repo: "acme/widgets", BaseURL: "https://api.github.com"},
	}
}

func TestBridgeTransport_Subprocess(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.BridgeCommand = "crossref mcp"

	transport, cleanup, err := bridgeTransport(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("bridgeTransport failed: %v", err)
	}
	defer cleanup()

	if _, ok := transport.(*mcpSdk.CommandTransport); !ok {
		t.Errorf("transport = %T, want a command transport", transport)
	}
}

func TestBridgeTransport_InProcess(t *testing.T) {
	transport, cleanup, err := bridgeTransport(context.Background(), testConfig(), log.NewNop())
	if err != nil {
		t.Fatalf("bridgeTransport failed: %v", err)
	}
	defer cleanup()

	if transport == nil {
		t.Fatal("expected a live transport")
	}
}
