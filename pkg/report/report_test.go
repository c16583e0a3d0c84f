package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	return cat
}

func testFinding(classID, file string, line int) *finding.Finding {
	return &finding.Finding{
		ID:      "f-" + classID,
		ClassID: classID,
		Program: "vault",
		File:    file,
		Line:    line,
		Status:  finding.StatusOpen,
		FoundAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
}

func TestBuilderAddRejectsUnknownClass(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{})
	err := b.Add(testFinding("no-such-class", "lib.rs", 1))
	if !errors.Is(err, finding.ErrUnknownClass) {
		t.Errorf("Add() error = %v, want ErrUnknownClass", err)
	}
}

func TestBuildOrdersBySeverity(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Now: fixedNow})
	if err := b.AddAll([]*finding.Finding{
		testFinding("unhandled-error", "claim.rs", 10),
		testFinding("missing-signer-check", "admin.rs", 30),
		testFinding("integer-overflow", "deposit.rs", 20),
	}); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}

	rpt := b.Build()
	if len(rpt.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(rpt.Entries))
	}
	wantOrder := []string{"missing-signer-check", "integer-overflow", "unhandled-error"}
	for i, want := range wantOrder {
		if rpt.Entries[i].Finding.ClassID != want {
			t.Errorf("entry[%d] = %s, want %s", i, rpt.Entries[i].Finding.ClassID, want)
		}
	}
}

func TestBuildSeverityOverride(t *testing.T) {
	t.Parallel()

	f := testFinding("unhandled-error", "claim.rs", 10)
	f.Severity = finding.Critical // auditor escalated this instance

	b := NewBuilder(testCatalog(t), Config{Now: fixedNow})
	if err := b.Add(f); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	rpt := b.Build()
	if rpt.Entries[0].Severity != finding.Critical {
		t.Errorf("Severity = %s, want critical override", rpt.Entries[0].Severity)
	}
	if rpt.Executive.OverallRisk != "Critical" {
		t.Errorf("OverallRisk = %s, want Critical", rpt.Executive.OverallRisk)
	}
}

func TestCalculateOverallRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		byRisk    map[finding.Severity]int
		wantRisk  string
		wantScore float64
	}{
		{"empty", map[finding.Severity]int{}, "Low", 0},
		{"one critical", map[finding.Severity]int{finding.Critical: 1}, "Critical", 40},
		{"one high", map[finding.Severity]int{finding.High: 1}, "High", 20},
		{"two medium", map[finding.Severity]int{finding.Medium: 2}, "Medium", 20},
		{"three low", map[finding.Severity]int{finding.Low: 3}, "Low", 15},
		{"score caps at 100", map[finding.Severity]int{finding.Critical: 5}, "Critical", 100},
		{"info carries no weight", map[finding.Severity]int{finding.Info: 10}, "Low", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			risk, score := calculateOverallRisk(tt.byRisk)
			if risk != tt.wantRisk {
				t.Errorf("risk = %s, want %s", risk, tt.wantRisk)
			}
			if score != tt.wantScore {
				t.Errorf("score = %.0f, want %.0f", score, tt.wantScore)
			}
		})
	}
}

func TestBuildRecommendationsComeFromCatalog(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Now: fixedNow})
	if err := b.Add(testFinding("integer-overflow", "deposit.rs", 20)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	rpt := b.Build()
	found := false
	for _, rec := range rpt.Executive.Recommendations {
		if strings.Contains(rec, "checked arithmetic") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations %v missing catalog remediation", rpt.Executive.Recommendations)
	}
}

func TestBuildStatistics(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Now: fixedNow})
	if err := b.AddAll([]*finding.Finding{
		testFinding("integer-overflow", "a.rs", 1),
		testFinding("integer-overflow", "b.rs", 2),
		testFinding("arbitrary-cpi", "c.rs", 3),
	}); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	stats := b.Build().Statistics
	if stats.ByClass["integer-overflow"] != 2 {
		t.Errorf("ByClass[integer-overflow] = %d, want 2", stats.ByClass["integer-overflow"])
	}
	if stats.ClassesHit != 2 {
		t.Errorf("ClassesHit = %d, want 2", stats.ClassesHit)
	}
	if stats.ClassesTotal != 7 {
		t.Errorf("ClassesTotal = %d, want 7", stats.ClassesTotal)
	}
}

func TestGenerateJSON(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Format: FormatJSON, Now: fixedNow})
	if err := b.Add(testFinding("arbitrary-cpi", "withdraw.rs", 88)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	rpt := b.Build()

	var buf bytes.Buffer
	if err := NewGenerator().Generate(rpt, &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !jsonutil.Valid(buf.Bytes()) {
		t.Fatal("JSON output is not valid JSON")
	}
	var decoded Report
	if err := jsonutil.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Executive.TotalFindings != 1 {
		t.Errorf("TotalFindings = %d, want 1", decoded.Executive.TotalFindings)
	}
}

func TestGenerateMarkdown(t *testing.T) {
	t.Parallel()

	f := testFinding("missing-owner-check", "state.rs", 14)
	f.Excerpt = "let config = PoolConfig::try_from_slice(&info.data.borrow())?;"
	b := NewBuilder(testCatalog(t), Config{Format: FormatMarkdown, Program: "vault", Now: fixedNow})
	if err := b.Add(f); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	out, err := NewGenerator().GenerateToString(b.Build())
	if err != nil {
		t.Fatalf("GenerateToString() error = %v", err)
	}
	for _, want := range []string{
		"## Executive Summary",
		"Missing Account Ownership Verification at state.rs:14",
		"```rust",
		"**Program:** vault",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestGenerateText(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Format: FormatText, Now: fixedNow})
	if err := b.Add(testFinding("account-type-confusion", "types.rs", 5)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	out, err := NewGenerator().GenerateToString(b.Build())
	if err != nil {
		t.Fatalf("GenerateToString() error = %v", err)
	}
	if !strings.Contains(out, "[HIGH] Account Type Confusion") {
		t.Errorf("text output missing finding line:\n%s", out)
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	t.Parallel()

	rpt := &Report{Format: "pdf"}
	if err := NewGenerator().Generate(rpt, &bytes.Buffer{}); err == nil {
		t.Error("Generate() error = nil for unsupported format")
	}
}

func TestFirstSentence(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Fix it. Then test it.", "Fix it."},
		{"Use\nchecked\nmath everywhere.", "Use checked math everywhere."},
		{"No terminal period", "No terminal period"},
		{"Pin to spl_token::ID (v3.1.0). More text.", "Pin to spl_token::ID (v3.1.0)."},
	}
	for _, tt := range tests {
		if got := firstSentence(tt.in); got != tt.want {
			t.Errorf("firstSentence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testCatalog(t), Config{Format: FormatHTML, Program: "vault", Now: fixedNow})
	f := testFinding("integer-overflow", "state.rs", 14)
	f.Notes = `balance wraps when amount > u64::MAX - total <script>alert(1)</script>`
	if err := b.Add(f); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var buf bytes.Buffer
	if err := NewGenerator().Generate(b.Build(), &buf); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("missing doctype")
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("auditor notes not HTML-escaped")
	}
	if !strings.Contains(out, `class="badge high"`) {
		t.Errorf("severity badge missing:\n%s", out)
	}
	if !strings.Contains(out, "Integer Overflow at state.rs:14") {
		t.Error("finding heading missing")
	}
}
