package ui

import "testing"

// SanitizeString only rewrites output on non-Unicode terminals, so
// these tests exercise the rune classification directly.
func TestIsSafeForLegacy(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want bool
	}{
		{"ascii letter", 'a', true},
		{"latin-1 accent", 'é', true},
		{"latin extended", 'ū', true},
		{"emoji", '✅', false},
		{"block element", '█', false},
		{"braille", '⠋', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSafeForLegacy(tt.r); got != tt.want {
				t.Errorf("isSafeForLegacy(%q) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestIsVariationSelector(t *testing.T) {
	if !isVariationSelector(0xFE0F) {
		t.Error("U+FE0F should be a variation selector")
	}
	if isVariationSelector('a') {
		t.Error("'a' is not a variation selector")
	}
}

func TestSeverityColorKnownLevels(t *testing.T) {
	seen := make(map[string]bool)
	for _, sev := range []string{"critical", "high", "medium", "low", "info"} {
		c := SeverityColor(sev)
		if c == Muted {
			t.Errorf("SeverityColor(%q) fell through to Muted", sev)
		}
		if seen[string(c)] {
			t.Errorf("SeverityColor(%q) reuses color %s", sev, string(c))
		}
		seen[string(c)] = true
	}
	if SeverityColor("bogus") != Muted {
		t.Error("SeverityColor(bogus) should be Muted")
	}
}

func TestSilentModeToggle(t *testing.T) {
	SetSilent(true)
	if !IsSilent() {
		t.Error("IsSilent() = false after SetSilent(true)")
	}
	SetSilent(false)
	if IsSilent() {
		t.Error("IsSilent() = true after SetSilent(false)")
	}
}
