// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the Voxa terminal client.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - assistant name and large headings
  - Cyan - brand color and user highlights
  - Emerald - success and idle indicator
  - Amber - warnings and streaming indicator
  - Rose - errors and failed replies

# Theme System (theme.go)

A Theme bundles the styles used by the chat screen, the renderer and the
CLI. The name selects the background handling:

	theme, err := styles.NewThemeNamed("dark")
	if err != nil {
		return err
	}
	header := theme.HeaderTitle.Render("Voxa AI")

"auto" asks the terminal; "dark" and "light" force it.
*/
package styles
