package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderWidth is the word-wrap column for rendered answers.
const renderWidth = 100

// renderMarkdown converts a Markdown answer to styled terminal output.
// Piped output and rendering failures fall back to the original text, so
// `crossref ask ... > notes.md` stays clean Markdown.
func renderMarkdown(markdown string) string {
	if !stdoutIsTerminal() {
		return markdown
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Detect light/dark terminal
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		return markdown
	}

	// Trim trailing newlines added by glamour
	return strings.TrimSuffix(rendered, "\n")
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
