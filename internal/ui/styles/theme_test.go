// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeModes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("dark theme should report IsDark")
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("light theme should not report IsDark")
	}

	// auto must not panic outside a terminal
	_ = NewTheme("auto")
}

func TestStatusRenderers(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		marker string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("message")
			if !strings.Contains(out, tt.marker) {
				t.Errorf("missing %q indicator in %q", tt.marker, out)
			}
			if !strings.Contains(out, "message") {
				t.Errorf("missing message text in %q", out)
			}
		})
	}
}
