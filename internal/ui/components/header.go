// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maanis/voxa/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Connection is the last known state of the model server.
type Connection int

const (
	ConnUnknown Connection = iota
	ConnOnline
	ConnOffline
)

// String returns the display string for the connection state
func (c Connection) String() string {
	switch c {
	case ConnOnline:
		return "online"
	case ConnOffline:
		return "offline"
	default:
		return "connecting"
	}
}

// Header is the title bar: product name, model and server state.
type Header struct {
	Title      string
	ModelName  string
	Connection Connection
	Width      int
	theme      *styles.Theme
}

// NewHeader creates a new Header component with default values
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "Voxa AI",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the current model name
func (h *Header) SetModel(model string) {
	h.ModelName = model
}

// SetConnection updates the server state indicator
func (h *Header) SetConnection(c Connection) {
	h.Connection = c
}

// View renders the header. Narrow terminals get the single-line form.
func (h *Header) View() string {
	if h.Width < 60 {
		return h.ViewCompact()
	}

	innerWidth := h.Width - h.theme.Header.GetHorizontalFrameSize()

	brand := h.theme.HeaderTitle.Render(h.Title)
	subtitle := strings.Join(h.subtitleParts(), h.theme.Muted.Render("  |  "))

	brandLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Render(brand)
	subtitleLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, brandLine, subtitleLine)
	return h.theme.Header.Width(h.Width - h.theme.Header.GetHorizontalBorderSize()).Render(content)
}

// ViewCompact renders a compact single-line header for narrow terminals
func (h *Header) ViewCompact() string {
	parts := append([]string{h.theme.HeaderTitle.Render(h.Title)}, h.subtitleParts()...)
	line := strings.Join(parts, h.theme.Muted.Render(" | "))
	return lipgloss.NewStyle().MaxWidth(h.Width).Render(line)
}

func (h *Header) subtitleParts() []string {
	var parts []string
	if h.ModelName != "" {
		parts = append(parts, h.theme.HeaderSubtitle.Render(h.ModelName))
	}
	parts = append(parts, h.connectionBadge())
	return parts
}

func (h *Header) connectionBadge() string {
	switch h.Connection {
	case ConnOnline:
		return h.theme.SuccessStyle.Render(styles.StatusIndicators.Success + " " + h.Connection.String())
	case ConnOffline:
		return h.theme.ErrorStyle.Render(styles.StatusIndicators.Error + " " + h.Connection.String())
	default:
		return h.theme.Muted.Render(h.Connection.String())
	}
}
