// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewThemeNamed(t *testing.T) {
	tests := []struct {
		name     string
		wantDark bool
	}{
		{ThemeDark, true},
		{ThemeLight, false},
	}

	for _, tt := range tests {
		theme, err := NewThemeNamed(tt.name)
		if err != nil {
			t.Fatalf("NewThemeNamed(%q) error: %v", tt.name, err)
		}
		if theme.IsDark != tt.wantDark {
			t.Errorf("NewThemeNamed(%q).IsDark = %v, want %v", tt.name, theme.IsDark, tt.wantDark)
		}
		if theme.Name != tt.name {
			t.Errorf("Name = %q, want %q", theme.Name, tt.name)
		}
	}
}

func TestNewThemeNamed_Unknown(t *testing.T) {
	if _, err := NewThemeNamed("solarized"); err == nil {
		t.Error("NewThemeNamed(solarized) should fail")
	}
}

func TestNewThemeNamed_EmptyIsAuto(t *testing.T) {
	theme, err := NewThemeNamed("")
	if err != nil {
		t.Fatalf("NewThemeNamed(\"\") error: %v", err)
	}
	if theme.Name != ThemeAuto {
		t.Errorf("Name = %q, want %q", theme.Name, ThemeAuto)
	}
}

func TestIsKnownTheme(t *testing.T) {
	for _, name := range KnownThemes {
		if !IsKnownTheme(name) {
			t.Errorf("IsKnownTheme(%q) = false", name)
		}
	}
	if IsKnownTheme("neon") {
		t.Error("IsKnownTheme(neon) = true")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme, _ := NewThemeNamed(ThemeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"CodeBlock", theme.CodeBlock},
		{"InputContainer", theme.InputContainer},
	}

	for _, s := range styles {
		// Bordered styles always add lines around the content.
		rendered := s.style.Render("test")
		if !strings.Contains(rendered, "test") || rendered == "test" {
			t.Errorf("%s style should be initialized, got %q", s.name, rendered)
		}
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}

// =============================================================================
// STATUS RENDER TESTS
// =============================================================================

func TestRenderStatusIndicators(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tt := range tests {
		got := tt.fn("done")
		if !strings.Contains(got, tt.want) || !strings.Contains(got, "done") {
			t.Errorf("%s: %q should contain %q and the message", tt.name, got, tt.want)
		}
	}
}
