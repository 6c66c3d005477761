// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
)

// =============================================================================
// HELP TEXT
// =============================================================================

// HelpMarkdown returns the help document shown by /help.
func HelpMarkdown(keys KeyMap) string {
	var b strings.Builder

	b.WriteString("# Voxa AI\n\n")
	b.WriteString("Chat with a model running on your local Ollama server. ")
	b.WriteString("Replies stream in as they are generated; headings, **bold**, ")
	b.WriteString("*italic* and fenced code blocks are formatted as they arrive.\n\n")

	b.WriteString("## Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, k := range keys.Bindings() {
		h := k.Help()
		b.WriteString("| " + h.Key + " | " + h.Desc + " |\n")
	}

	b.WriteString("\n## Commands\n\n")
	b.WriteString("| Command | Action |\n|---|---|\n")
	for _, c := range commandHelp {
		b.WriteString("| `" + c.Usage + "` | " + c.Desc + " |\n")
	}

	b.WriteString("\n## Configuration\n\n")
	b.WriteString("Settings live in `~/.voxa/config.toml` and are reloaded when the file changes. ")
	b.WriteString("`voxa config show` prints the current values.\n")
	return b.String()
}

// =============================================================================
// HELPERS
// =============================================================================

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
