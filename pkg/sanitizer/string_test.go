package sanitizer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"basic trim", "  hello  ", "hello"},
		{"multiple spaces", "hello    world", "hello world"},
		{"tabs and newlines", "hello\t\nworld", "hello world"},
		{"full-width space", "王　小明", "王 小明"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeDisplayName(t *testing.T) {
	if got := SanitizeDisplayName("  小美  🌸 "); got != "小美 🌸" {
		t.Errorf("SanitizeDisplayName = %q", got)
	}

	long := strings.Repeat("美", MaxNameLength+20)
	if got := SanitizeDisplayName(long); utf8.RuneCountInString(got) != MaxNameLength {
		t.Errorf("expected truncation to %d runes, got %d", MaxNameLength, utf8.RuneCountInString(got))
	}
}

func TestTrimIDs_KeepsDuplicates(t *testing.T) {
	got := TrimIDs([]string{" a ", "a", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "a" || got[2] != "b" {
		t.Errorf("TrimIDs = %v", got)
	}
}
