// Package cmd provides CLI commands for crossref.
//
// Commands:
//   - ask: one-shot question answered by cross-referencing the Notion
//     workspace and the GitHub repository
//   - mcp: Model Context Protocol bridge server on stdio, exposing both
//     capability surfaces as tools
//
// Signal handling and graceful shutdown are implemented for both commands
// via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the crossref CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "ask":
		return runAsk(os.Args[2:])
	case "mcp":
		return runMCP()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("crossref - Cross-reference a Notion workspace against a GitHub repo")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  crossref ask [--max-iters N] <question>")
	fmt.Println("                           Ask a question; the agent checks docs against code")
	fmt.Println("  crossref mcp             Start the tool bridge as an MCP server on stdio")
	fmt.Println("  crossref --version       Show version information")
	fmt.Println("  crossref --help          Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  crossref ask \"Is the login flow from the design doc actually implemented?\"")
	fmt.Println("  crossref ask --max-iters 30 \"Which tasks in the database have no matching code?\"")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENAI_API_KEY               Required for ask: completion service API key")
	fmt.Println("  NOTION_TOKEN                 Required: Notion integration token")
	fmt.Println("  GITHUB_TOKEN                 Required: GitHub access token")
	fmt.Println("  GITHUB_REPO                  Required: target repository (owner/name)")
	fmt.Println("  OPENAI_MODEL                 Optional: completion model (default: gpt-4o)")
	fmt.Println("  CROSSREF_MAX_ITERATIONS      Optional: reasoning budget per run (default: 15)")
	fmt.Println("  CROSSREF_BRIDGE_COMMAND      Optional: run tools as a subprocess (e.g. \"crossref mcp\")")
	fmt.Println("  OTEL_EXPORTER_OTLP_ENDPOINT  Optional: OTLP trace collector endpoint")
	fmt.Println("  DEBUG                        Optional: enable debug logging")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/koopa0/crossref")
}
