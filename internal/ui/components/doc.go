// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual pieces of the Voxa chat screen.

Components are plain structs with a View method and setters; the chat model
owns them and calls View from its own View. They take a *styles.Theme for
all styling.

# Components

Header (header.go) - Title bar with the product name, model and server state.
MessageBubble (message.go) - One conversation message. Assistant content goes
through a *render.Renderer so headings, emphasis and code blocks are styled.
StatusBar (statusbar.go) - Status, message count, last reply stats and key
hints, laid out for the terminal width.

# Usage

	theme := styles.NewTheme()
	header := components.NewHeader(theme)
	header.SetWidth(80)
	header.SetModel("qwen2.5:0.5b")
	view := header.View()

	r := render.NewRenderer(render.StylesFromTheme(theme), hl)
	bubble := components.NewMessageBubble(msg, theme, r)
	bubble.SetWidth(80)
	view = bubble.View()
*/
package components
