package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solaudit/solaudit/pkg/finding"
)

// The shipped knowledge base. Loader tests assert against these ids so
// a renamed or dropped class file fails loudly.
var builtinIDs = []string{
	"integer-overflow",
	"missing-owner-check",
	"missing-signer-check",
	"arithmetic-precision-loss",
	"arbitrary-cpi",
	"account-type-confusion",
	"unhandled-error",
}

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	if cat.Len() != len(builtinIDs) {
		t.Errorf("Len() = %d, want %d", cat.Len(), len(builtinIDs))
	}
	for _, id := range builtinIDs {
		if !cat.Has(id) {
			t.Errorf("catalog missing builtin class %q", id)
		}
	}
}

func TestLoadEmbeddedClassesAreComplete(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	for _, c := range cat.Classes() {
		if c.Name == "" {
			t.Errorf("class %s: empty name", c.ID)
		}
		if strings.TrimSpace(c.Description) == "" {
			t.Errorf("class %s: empty description", c.ID)
		}
		if strings.TrimSpace(c.Remediation) == "" {
			t.Errorf("class %s: empty remediation", c.ID)
		}
		if c.Example.Source == "" {
			t.Errorf("class %s: empty example source", c.ID)
		}
		if c.Example.Language != "rust" {
			t.Errorf("class %s: example language = %q, want rust", c.ID, c.Example.Language)
		}
		if !c.Severity.IsValid() {
			t.Errorf("class %s: invalid severity %q", c.ID, c.Severity)
		}
		if len(c.CWE) == 0 {
			t.Errorf("class %s: no CWE mapping", c.ID)
		}
	}
}

func TestLoadOrdersBySeverityThenID(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	classes := cat.Classes()
	for i := 1; i < len(classes); i++ {
		prev, cur := classes[i-1], classes[i]
		if prev.Severity.Score() < cur.Severity.Score() {
			t.Errorf("classes out of order: %s (%s) before %s (%s)",
				prev.ID, prev.Severity, cur.ID, cur.Severity)
		}
		if prev.Severity.Score() == cur.Severity.Score() && prev.ID > cur.ID {
			t.Errorf("classes with equal severity not sorted by id: %s before %s", prev.ID, cur.ID)
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}

	class, err := cat.Get("integer-overflow")
	if err != nil {
		t.Fatalf("Get(integer-overflow) error = %v", err)
	}
	if class.Name != "Integer Overflow" {
		t.Errorf("Name = %q, want %q", class.Name, "Integer Overflow")
	}

	_, err = cat.Get("no-such-class")
	if !errors.Is(err, finding.ErrUnknownClass) {
		t.Errorf("Get(no-such-class) error = %v, want ErrUnknownClass", err)
	}
}

func TestLoadDirOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClass(t, dir, "custom.yaml", `
id: custom-check
name: Custom Check
severity: low
description: A locally maintained class.
remediation: Do the thing.
example:
  source: "fn main() {}"
`)

	cat, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cat.Len())
	}
	class, err := cat.Get("custom-check")
	if err != nil {
		t.Fatalf("Get(custom-check) error = %v", err)
	}
	// Language defaults to rust when a source is given without one.
	if class.Example.Language != "rust" {
		t.Errorf("Example.Language = %q, want rust default", class.Example.Language)
	}
}

func TestLoadDirDuplicateID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClass(t, dir, "a.yaml", "id: dup\nname: A\nseverity: low\ndescription: x\nremediation: y\n")
	writeClass(t, dir, "b.yaml", "id: dup\nname: B\nseverity: low\ndescription: x\nremediation: y\n")

	_, err := NewLoader(dir).Load()
	if !errors.Is(err, finding.ErrDuplicateClass) {
		t.Errorf("Load() error = %v, want ErrDuplicateClass", err)
	}
}

func TestLoadDirEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(t.TempDir()).Load()
	if !errors.Is(err, finding.ErrEmptyCatalog) {
		t.Errorf("Load() error = %v, want ErrEmptyCatalog", err)
	}
}

func TestLoadDirMissingID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClass(t, dir, "broken.yaml", "name: No ID\nseverity: low\n")

	_, err := NewLoader(dir).Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error for missing id")
	}
	if !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("error %q does not name the offending file", err)
	}
}

func TestLoadDirInvalidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClass(t, dir, "bad.yaml", "id: [unterminated")

	_, err := NewLoader(dir).Load()
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoadDirSkipsNonYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeClass(t, dir, "ok.yaml", "id: ok\nname: OK\nseverity: info\ndescription: x\nremediation: y\n")
	writeClass(t, dir, "README.md", "# not a class")
	writeClass(t, dir, "notes.txt", "scratch")

	cat, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cat.Len())
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	classes := []Class{
		{ID: "a", Severity: finding.Critical, Tags: []string{"accounts"}},
		{ID: "b", Severity: finding.High, Tags: []string{"arithmetic"}},
		{ID: "c", Severity: finding.Medium, Tags: []string{"accounts", "cpi"}},
		{ID: "d", Severity: finding.Info},
	}

	tests := []struct {
		name     string
		severity string
		tag      string
		wantIDs  []string
	}{
		{"no filters", "", "", []string{"a", "b", "c", "d"}},
		{"min severity high", "high", "", []string{"a", "b"}},
		{"severity case-insensitive", "High", "", []string{"a", "b"}},
		{"invalid severity yields none", "extreme", "", nil},
		{"tag only", "", "accounts", []string{"a", "c"}},
		{"tag case-insensitive", "", "ACCOUNTS", []string{"a", "c"}},
		{"severity and tag", "medium", "accounts", []string{"a", "c"}},
		{"tag matches nothing", "", "wasm", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(classes, tt.severity, tt.tag)
			var gotIDs []string
			for _, c := range got {
				gotIDs = append(gotIDs, c.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("Filter() ids = %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range tt.wantIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("Filter() ids = %v, want %v", gotIDs, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestFilterNilClasses(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Filter panicked on nil input: %v", r)
		}
	}()

	if got := Filter(nil, "high", "accounts"); len(got) != 0 {
		t.Errorf("Filter(nil, ...) = %d classes, want 0", len(got))
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	stats := GetStats(cat.Classes())
	if stats.TotalClasses != cat.Len() {
		t.Errorf("TotalClasses = %d, want %d", stats.TotalClasses, cat.Len())
	}
	if stats.BySeverity[finding.Critical] != 3 {
		t.Errorf("BySeverity[critical] = %d, want 3", stats.BySeverity[finding.Critical])
	}
	if stats.BySeverity[finding.High] != 2 {
		t.Errorf("BySeverity[high] = %d, want 2", stats.BySeverity[finding.High])
	}
	if stats.BySeverity[finding.Medium] != 2 {
		t.Errorf("BySeverity[medium] = %d, want 2", stats.BySeverity[finding.Medium])
	}
	if stats.TagsUsed == 0 {
		t.Error("TagsUsed = 0, want > 0")
	}
}

func TestClassesReturnsCopy(t *testing.T) {
	t.Parallel()

	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	first := cat.Classes()
	first[0].Name = "mutated"
	second := cat.Classes()
	if second[0].Name == "mutated" {
		t.Error("Classes() exposes internal slice, catalog is not immutable")
	}
}

func writeClass(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
