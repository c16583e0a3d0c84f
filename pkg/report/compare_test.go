package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solaudit/solaudit/pkg/finding"
)

func buildReport(t *testing.T, findings ...*finding.Finding) *Report {
	t.Helper()
	b := NewBuilder(testCatalog(t), Config{Now: fixedNow})
	if err := b.AddAll(findings); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	return b.Build()
}

func TestCompare(t *testing.T) {
	t.Parallel()

	shared := testFinding("integer-overflow", "deposit.rs", 20)
	fixed := testFinding("missing-signer-check", "admin.rs", 30)
	introduced := testFinding("arbitrary-cpi", "withdraw.rs", 88)

	baseline := buildReport(t, shared, fixed)
	current := buildReport(t, shared, introduced)

	cmp := Compare(baseline, current)
	if len(cmp.NewFindings) != 1 || cmp.NewFindings[0].Finding.ClassID != "arbitrary-cpi" {
		t.Errorf("NewFindings = %+v, want one arbitrary-cpi", cmp.NewFindings)
	}
	if len(cmp.FixedFindings) != 1 || cmp.FixedFindings[0].Finding.ClassID != "missing-signer-check" {
		t.Errorf("FixedFindings = %+v, want one missing-signer-check", cmp.FixedFindings)
	}
	if len(cmp.Unchanged) != 1 {
		t.Errorf("Unchanged = %d entries, want 1", len(cmp.Unchanged))
	}
	if !strings.Contains(cmp.Summary, "1 new") {
		t.Errorf("Summary = %q", cmp.Summary)
	}
}

func TestCompareTrendWeighsSeverity(t *testing.T) {
	t.Parallel()

	// Fixed two mediums, introduced one critical: counts say improving,
	// severity says degrading.
	baseline := buildReport(t,
		testFinding("unhandled-error", "a.rs", 1),
		testFinding("arithmetic-precision-loss", "b.rs", 2),
	)
	current := buildReport(t, testFinding("missing-owner-check", "c.rs", 3))

	cmp := Compare(baseline, current)
	if cmp.RiskTrend != "improving" {
		t.Errorf("RiskTrend = %s, want improving (fixed weight 6 vs new weight 5)", cmp.RiskTrend)
	}
}

func TestCompareEditedNotesDoNotChurn(t *testing.T) {
	t.Parallel()

	before := testFinding("integer-overflow", "deposit.rs", 20)
	after := testFinding("integer-overflow", "deposit.rs", 20)
	after.Notes = "retested on devnet, still reproduces"
	after.Status = finding.StatusAcknowledged

	cmp := Compare(buildReport(t, before), buildReport(t, after))
	if len(cmp.NewFindings) != 0 || len(cmp.FixedFindings) != 0 {
		t.Errorf("edited finding counted as churn: new=%d fixed=%d",
			len(cmp.NewFindings), len(cmp.FixedFindings))
	}
}

func TestFingerprintStability(t *testing.T) {
	t.Parallel()

	a := testFinding("integer-overflow", "deposit.rs", 20)
	b := testFinding("integer-overflow", "deposit.rs", 20)
	b.Notes = "different notes"
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint changed with notes")
	}

	c := testFinding("integer-overflow", "deposit.rs", 21)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint identical across different lines")
	}

	// Field boundaries matter: ("ab","c") must not collide with ("a","bc").
	x := &finding.Finding{ClassID: "ab", Program: "c", File: "f", Line: 1}
	y := &finding.Finding{ClassID: "a", Program: "bc", File: "f", Line: 1}
	if x.Fingerprint() == y.Fingerprint() {
		t.Error("fingerprint collides across field boundaries")
	}
}

func TestLoadSaveFindingsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "findings.json")
	in := []*finding.Finding{
		testFinding("integer-overflow", "deposit.rs", 20),
		testFinding("arbitrary-cpi", "withdraw.rs", 88),
	}
	if err := SaveFindings(path, in); err != nil {
		t.Fatalf("SaveFindings() error = %v", err)
	}

	out, err := LoadFindings(path)
	if err != nil {
		t.Fatalf("LoadFindings() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d findings, want 2", len(out))
	}
	if out[0].ClassID != "integer-overflow" || out[1].Line != 88 {
		t.Errorf("round trip mangled findings: %+v", out)
	}
}

func TestLoadFindingsFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "findings.json")
	raw := `[{"class_id": "integer-overflow", "file": "lib.rs", "line": 7}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	findings, err := LoadFindings(path)
	if err != nil {
		t.Fatalf("LoadFindings() error = %v", err)
	}
	f := findings[0]
	if f.ID == "" {
		t.Error("ID not defaulted")
	}
	if f.Status != finding.StatusOpen {
		t.Errorf("Status = %q, want open", f.Status)
	}
	if f.FoundAt.IsZero() {
		t.Error("FoundAt not defaulted")
	}
}

func TestLoadFindingsRejectsInvalidStatus(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "findings.json")
	raw := `[{"class_id": "integer-overflow", "status": "wontfix"}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFindings(path); err == nil {
		t.Error("LoadFindings() error = nil for invalid status")
	}
}

func TestLoadFindingsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadFindings(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadFindings() error = nil for missing file")
	}
}
