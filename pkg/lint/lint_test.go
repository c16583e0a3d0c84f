package lint

import (
	"strings"
	"testing"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
)

func validClass(id string) catalog.Class {
	return catalog.Class{
		ID:          id,
		Name:        "Some Defect",
		Severity:    finding.High,
		Description: "An explanation.",
		Remediation: "A fix.",
		Example:     catalog.Example{Language: "rust", Caption: "c", Source: "fn main() {}"},
		CWE:         []int{190},
		References:  []string{"https://example.com"},
	}
}

func TestRunCleanCatalog(t *testing.T) {
	t.Parallel()

	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	result := Run(cat.Classes(), nil)
	if !result.Valid {
		t.Errorf("embedded catalog should lint clean, got errors: %v %v %v %v %v %v",
			result.Errors, result.DuplicateIDs, result.MissingFields,
			result.InvalidSeverities, result.UnclosedFences, result.RenderIssues)
	}
	if result.TotalClasses != cat.Len() {
		t.Errorf("TotalClasses = %d, want %d", result.TotalClasses, cat.Len())
	}
}

func TestRunMissingFields(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.Description = "   "
	c.Remediation = ""
	result := Run([]catalog.Class{c}, nil)
	if result.Valid {
		t.Fatal("Valid = true with missing description and remediation")
	}
	if len(result.MissingFields) != 2 {
		t.Errorf("MissingFields = %v, want 2 entries", result.MissingFields)
	}
}

func TestRunDuplicateIDs(t *testing.T) {
	t.Parallel()

	result := Run([]catalog.Class{validClass("dup"), validClass("dup")}, nil)
	if result.Valid {
		t.Fatal("Valid = true with duplicate ids")
	}
	if len(result.DuplicateIDs) != 1 {
		t.Errorf("DuplicateIDs = %v, want 1 entry", result.DuplicateIDs)
	}
}

func TestRunInvalidSeverity(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.Severity = "severe"
	result := Run([]catalog.Class{c}, nil)
	if len(result.InvalidSeverities) != 1 {
		t.Fatalf("InvalidSeverities = %v, want 1 entry", result.InvalidSeverities)
	}
	if !strings.Contains(result.InvalidSeverities[0], "severe") {
		t.Errorf("message %q does not name the bad severity", result.InvalidSeverities[0])
	}
}

func TestRunIDChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{"whitespace inside", "bad id"},
		{"leading space", " bad"},
		{"tab", "bad\tid"},
		{"too long", strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := Run([]catalog.Class{validClass(tt.id)}, nil)
			if len(result.Errors) == 0 {
				t.Errorf("id %q produced no error", tt.id)
			}
		})
	}
}

func TestRunUnbalancedFence(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.Description = "Look at this:\n```rust\nlet a = 1;\n"
	result := Run([]catalog.Class{c}, nil)
	if len(result.UnclosedFences) != 1 {
		t.Fatalf("UnclosedFences = %v, want 1 entry", result.UnclosedFences)
	}

	// Balanced fences are fine.
	c.Description = "Look:\n```rust\nlet a = 1;\n```\ndone"
	result = Run([]catalog.Class{c}, nil)
	if len(result.UnclosedFences) != 0 {
		t.Errorf("balanced fence flagged: %v", result.UnclosedFences)
	}
}

func TestRunFenceInExampleSource(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.Example.Source = "let s = \"```\";"
	result := Run([]catalog.Class{c}, nil)
	if len(result.UnclosedFences) != 1 {
		t.Errorf("fence marker inside example source not flagged: %v", result.UnclosedFences)
	}
}

func TestRunRenderedHeadingLeak(t *testing.T) {
	t.Parallel()

	// A second-level heading inside prose splits the class apart in the
	// rendered document.
	c := validClass("x")
	c.Description = "Bad things.\n\n## Not A Class\n\nMore text."
	result := Run([]catalog.Class{c}, nil)
	if len(result.RenderIssues) != 1 {
		t.Fatalf("RenderIssues = %v, want 1 entry", result.RenderIssues)
	}
	if !strings.Contains(result.RenderIssues[0], "second-level headings") {
		t.Errorf("message %q does not mention headings", result.RenderIssues[0])
	}
	if result.Valid {
		t.Error("Valid = true with a heading leaking from prose")
	}
}

func TestRunRenderedCleanClass(t *testing.T) {
	t.Parallel()

	// Balanced fences in prose survive the whole-document check.
	c := validClass("x")
	c.Description = "Look:\n```rust\nlet a = 1;\n```\ndone"
	result := Run([]catalog.Class{c}, nil)
	if len(result.RenderIssues) != 0 {
		t.Errorf("RenderIssues = %v, want none", result.RenderIssues)
	}
}

func TestRunWarningsAreNotErrors(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.CWE = nil
	c.References = nil
	c.Example.Caption = ""
	result := Run([]catalog.Class{c}, nil)
	if !result.Valid {
		t.Errorf("warnings should not invalidate: %v", result)
	}
	if len(result.Warnings) != 3 {
		t.Errorf("Warnings = %v, want 3 entries", result.Warnings)
	}
}

func TestRunUnknownLanguageWarns(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.Example.Language = "cobol"
	result := Run([]catalog.Class{c}, nil)
	if !result.Valid {
		t.Error("unrecognized language should warn, not error")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "cobol") {
			found = true
		}
	}
	if !found {
		t.Errorf("no warning for unrecognized language: %v", result.Warnings)
	}
}

func TestRunUnknownCWEWarns(t *testing.T) {
	t.Parallel()

	c := validClass("x")
	c.CWE = []int{99999}
	result := Run([]catalog.Class{c}, nil)
	if !result.Valid {
		t.Error("unknown CWE should warn, not error")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "CWE-99999") {
			found = true
		}
	}
	if !found {
		t.Errorf("no warning for unknown CWE: %v", result.Warnings)
	}
}

func TestErrorCount(t *testing.T) {
	t.Parallel()

	c := validClass("bad id")
	c.Severity = "nope"
	c.Remediation = ""
	result := Run([]catalog.Class{c}, nil)
	want := len(result.Errors) + len(result.DuplicateIDs) + len(result.MissingFields) +
		len(result.InvalidSeverities) + len(result.UnclosedFences) + len(result.RenderIssues)
	if result.ErrorCount() != want {
		t.Errorf("ErrorCount() = %d, want %d", result.ErrorCount(), want)
	}
	if result.ErrorCount() == 0 {
		t.Error("ErrorCount() = 0 for a class with three defects")
	}
}
