package validation

import (
	"strings"
	"testing"
)

func TestResolveOutput(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		display   string
		expected  string
		expectErr string
	}{
		{name: "Pretty", format: "pretty", display: "RON", expected: "pretty"},
		{name: "CSV in upper case", format: " CSV ", display: "EUR", expected: "csv"},
		{name: "Empty format defaults to pretty", format: "", display: "RON", expected: "pretty"},
		{name: "Unsupported format", format: "json", display: "RON", expectErr: "output format"},
		{name: "Display currency not ISO", format: "csv", display: "LEI", expectErr: "display currency"},
		{name: "Missing display currency", format: "csv", display: "", expectErr: "display currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutput(tt.format, tt.display)
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("ResolveOutput(%q, %q) error = %v, expected mention of %q", tt.format, tt.display, err, tt.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOutput(%q, %q) unexpected error = %v", tt.format, tt.display, err)
			}
			if got != tt.expected {
				t.Errorf("ResolveOutput(%q, %q) = %q, expected %q", tt.format, tt.display, got, tt.expected)
			}
		})
	}
}
