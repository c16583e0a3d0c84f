// Package report builds audit reports from recorded findings and the
// defect class catalog: an executive summary with a weighted risk
// score, per-class technical detail, and remediation guidance pulled
// from the catalog.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// Format defines report output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Entry is a finding joined with its catalog class for rendering.
type Entry struct {
	Finding  *finding.Finding `json:"finding"`
	Class    catalog.Class    `json:"class"`
	Severity finding.Severity `json:"severity"`
}

// ExecutiveSummary contains the high-level view of an audit.
type ExecutiveSummary struct {
	Title           string                   `json:"title"`
	Program         string                   `json:"program"`
	ReportDate      time.Time                `json:"report_date"`
	Auditors        []string                 `json:"auditors,omitempty"`
	OverallRisk     string                   `json:"overall_risk"`
	RiskScore       float64                  `json:"risk_score"`
	TotalFindings   int                      `json:"total_findings"`
	OpenFindings    int                      `json:"open_findings"`
	FindingsByRisk  map[finding.Severity]int `json:"findings_by_risk"`
	KeyFindings     []string                 `json:"key_findings"`
	Recommendations []string                 `json:"recommendations"`
	Conclusion      string                   `json:"conclusion"`
}

// Statistics summarizes the audit's findings.
type Statistics struct {
	TotalFindings int            `json:"total_findings"`
	ByClass       map[string]int `json:"by_class"`
	ByProgram     map[string]int `json:"by_program"`
	ByStatus      map[string]int `json:"by_status"`
	ClassesHit    int            `json:"classes_hit"`
	ClassesTotal  int            `json:"classes_total"`
}

// Report is a complete audit report.
type Report struct {
	ID          string           `json:"id"`
	Version     string           `json:"version"`
	GeneratedAt time.Time        `json:"generated_at"`
	Executive   ExecutiveSummary `json:"executive"`
	Entries     []Entry          `json:"entries"`
	Statistics  Statistics       `json:"statistics"`
	Format      Format           `json:"format"`
}

// Config configures report generation.
type Config struct {
	Title   string `json:"title"`
	Program string `json:"program"`
	Format  Format `json:"format"`

	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time `json:"-"`
}

// Builder accumulates findings and builds a report against a catalog.
type Builder struct {
	findings []*finding.Finding
	catalog  *catalog.Catalog
	config   Config
}

// NewBuilder creates a report builder.
func NewBuilder(cat *catalog.Catalog, config Config) *Builder {
	return &Builder{
		findings: make([]*finding.Finding, 0),
		catalog:  cat,
		config:   config,
	}
}

// Add records a finding. Findings referencing unknown classes are
// rejected so a report never carries an entry it cannot explain.
func (b *Builder) Add(f *finding.Finding) error {
	if !b.catalog.Has(f.ClassID) {
		return fmt.Errorf("finding %s: class %q: %w", f.ID, f.ClassID, finding.ErrUnknownClass)
	}
	b.findings = append(b.findings, f)
	return nil
}

// AddAll records multiple findings, stopping at the first rejection.
func (b *Builder) AddAll(findings []*finding.Finding) error {
	for _, f := range findings {
		if err := b.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// Build assembles the report. Entries are ordered by descending
// effective severity, then by file and line.
func (b *Builder) Build() *Report {
	now := time.Now
	if b.config.Now != nil {
		now = b.config.Now
	}

	entries := make([]Entry, 0, len(b.findings))
	for _, f := range b.findings {
		class, _ := b.catalog.Get(f.ClassID)
		entries = append(entries, Entry{
			Finding:  f,
			Class:    class,
			Severity: f.EffectiveSeverity(class.Severity),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Severity.Score() != entries[j].Severity.Score() {
			return entries[i].Severity.Score() > entries[j].Severity.Score()
		}
		if entries[i].Finding.File != entries[j].Finding.File {
			return entries[i].Finding.File < entries[j].Finding.File
		}
		return entries[i].Finding.Line < entries[j].Finding.Line
	})

	report := &Report{
		ID:          "RPT-" + uuid.NewString(),
		Version:     defaults.Version,
		GeneratedAt: now(),
		Entries:     entries,
		Statistics:  b.buildStatistics(entries),
		Format:      b.config.Format,
	}
	report.Executive = b.buildExecutiveSummary(entries, now())
	return report
}

func (b *Builder) buildExecutiveSummary(entries []Entry, now time.Time) ExecutiveSummary {
	title := b.config.Title
	if title == "" {
		title = fmt.Sprintf("%s Audit Report", defaults.ToolNameDisplay)
	}
	summary := ExecutiveSummary{
		Title:          title,
		Program:        b.config.Program,
		ReportDate:     now,
		TotalFindings:  len(entries),
		FindingsByRisk: make(map[finding.Severity]int),
	}

	auditors := make(map[string]bool)
	for _, e := range entries {
		summary.FindingsByRisk[e.Severity]++
		if e.Finding.Status == finding.StatusOpen {
			summary.OpenFindings++
		}
		if e.Finding.Auditor != "" && !auditors[e.Finding.Auditor] {
			auditors[e.Finding.Auditor] = true
			summary.Auditors = append(summary.Auditors, e.Finding.Auditor)
		}
	}
	sort.Strings(summary.Auditors)

	summary.OverallRisk, summary.RiskScore = calculateOverallRisk(summary.FindingsByRisk)

	// Key findings (top 5 critical/high)
	for _, e := range entries {
		if len(summary.KeyFindings) >= 5 {
			break
		}
		if e.Severity == finding.Critical || e.Severity == finding.High {
			summary.KeyFindings = append(summary.KeyFindings,
				fmt.Sprintf("%s in %s:%d", e.Class.Name, e.Finding.File, e.Finding.Line))
		}
	}

	summary.Recommendations = b.generateRecommendations(entries)
	summary.Conclusion = generateConclusion(summary.OverallRisk, summary.TotalFindings)
	return summary
}

func (b *Builder) buildStatistics(entries []Entry) Statistics {
	stats := Statistics{
		TotalFindings: len(entries),
		ByClass:       make(map[string]int),
		ByProgram:     make(map[string]int),
		ByStatus:      make(map[string]int),
		ClassesTotal:  b.catalog.Len(),
	}
	for _, e := range entries {
		stats.ByClass[e.Finding.ClassID]++
		stats.ByProgram[e.Finding.Program]++
		stats.ByStatus[string(e.Finding.Status)]++
	}
	stats.ClassesHit = len(stats.ByClass)
	return stats
}

// calculateOverallRisk computes the weighted risk score, normalized to
// 0-100, and the corresponding risk label.
func calculateOverallRisk(byRisk map[finding.Severity]int) (string, float64) {
	criticalCount := byRisk[finding.Critical]
	highCount := byRisk[finding.High]
	mediumCount := byRisk[finding.Medium]
	lowCount := byRisk[finding.Low]

	score := float64(criticalCount*defaults.RiskWeightCritical +
		highCount*defaults.RiskWeightHigh +
		mediumCount*defaults.RiskWeightMedium +
		lowCount*defaults.RiskWeightLow)
	if score > 100 {
		score = 100
	}

	var risk string
	switch {
	case criticalCount > 0 || score >= 80:
		risk = "Critical"
	case highCount > 0 || score >= 60:
		risk = "High"
	case mediumCount > 0 || score >= 30:
		risk = "Medium"
	default:
		risk = "Low"
	}
	return risk, score
}

// generateRecommendations pulls the first remediation sentence of each
// distinct class hit by the audit, highest severity first.
func (b *Builder) generateRecommendations(entries []Entry) []string {
	recommendations := make([]string, 0)
	seen := make(map[string]bool)

	for _, e := range entries {
		if seen[e.Finding.ClassID] {
			continue
		}
		seen[e.Finding.ClassID] = true
		if rec := firstSentence(e.Class.Remediation); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}

	recommendations = append(recommendations,
		"Re-audit after fixes land; a remediation commit can introduce a fresh instance of the same class")
	return recommendations
}

// firstSentence returns the text up to and including the first period
// that ends a sentence, with newlines collapsed.
func firstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && (i+1 == len(s) || s[i+1] == ' ') {
			return s[:i+1]
		}
	}
	return s
}

func generateConclusion(risk string, total int) string {
	switch risk {
	case "Critical":
		return fmt.Sprintf("The audit recorded %d findings including critical severity issues. These allow direct loss of funds or takeover of program authority and must be fixed before deployment.", total)
	case "High":
		return fmt.Sprintf("The audit recorded %d findings including high severity issues. No critical defects were found, but the high severity findings should be fixed before the next release.", total)
	case "Medium":
		return fmt.Sprintf("The audit recorded %d findings of medium or lower severity. The program's account validation is broadly sound; address the noted issues in normal development.", total)
	default:
		return fmt.Sprintf("The audit recorded %d findings of low severity. The program demonstrates disciplined account and arithmetic handling. Continue periodic review.", total)
	}
}

// Generator renders reports in the supported formats.
type Generator struct {
	templates map[Format]*template.Template
}

// NewGenerator creates a generator with the default templates parsed.
func NewGenerator() *Generator {
	g := &Generator{templates: make(map[Format]*template.Template)}
	g.templates[FormatMarkdown] = template.Must(template.New("markdown").Parse(markdownReportTmpl))
	return g
}

// Generate writes the report to w in its configured format.
func (g *Generator) Generate(report *Report, w io.Writer) error {
	switch report.Format {
	case FormatJSON, "":
		return g.generateJSON(report, w)
	case FormatMarkdown:
		return g.templates[FormatMarkdown].Execute(w, report)
	case FormatHTML:
		return g.generateHTML(report, w)
	case FormatText:
		return g.generateText(report, w)
	default:
		return fmt.Errorf("unsupported report format: %s", report.Format)
	}
}

// GenerateToString renders the report to a string.
func (g *Generator) GenerateToString(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := g.Generate(report, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Generator) generateJSON(report *Report, w io.Writer) error {
	enc := jsonutil.NewStreamEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (g *Generator) generateText(report *Report, w io.Writer) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 60) + "\n")
	buf.WriteString(fmt.Sprintf("  %s\n", report.Executive.Title))
	buf.WriteString(strings.Repeat("=", 60) + "\n\n")

	if report.Executive.Program != "" {
		buf.WriteString(fmt.Sprintf("Program: %s\n", report.Executive.Program))
	}
	buf.WriteString(fmt.Sprintf("Date: %s\n\n", report.Executive.ReportDate.Format("January 2, 2006")))

	buf.WriteString("EXECUTIVE SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 40) + "\n")
	buf.WriteString(fmt.Sprintf("Risk Score: %.0f\n", report.Executive.RiskScore))
	buf.WriteString(fmt.Sprintf("Overall Risk: %s\n", report.Executive.OverallRisk))
	buf.WriteString(fmt.Sprintf("Total Findings: %d (%d open)\n\n",
		report.Executive.TotalFindings, report.Executive.OpenFindings))

	buf.WriteString("FINDINGS\n")
	buf.WriteString(strings.Repeat("-", 40) + "\n")
	for _, e := range report.Entries {
		buf.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(e.Severity.String()), e.Class.Name))
		buf.WriteString(fmt.Sprintf("  Location: %s:%d\n", e.Finding.File, e.Finding.Line))
		if e.Finding.Notes != "" {
			buf.WriteString(fmt.Sprintf("  %s\n", e.Finding.Notes))
		}
		buf.WriteString("\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

const markdownReportTmpl = `# {{ .Executive.Title }}

{{ if .Executive.Program }}**Program:** {{ .Executive.Program }}
{{ end }}**Date:** {{ .Executive.ReportDate.Format "January 2, 2006" }}
**Report:** {{ .ID }}

---

## Executive Summary

| Metric | Value |
|--------|-------|
| Risk Score | {{ printf "%.0f" .Executive.RiskScore }} |
| Overall Risk | {{ .Executive.OverallRisk }} |
| Total Findings | {{ .Executive.TotalFindings }} |
| Open Findings | {{ .Executive.OpenFindings }} |

### Key Findings

{{ range .Executive.KeyFindings }}- {{ . }}
{{ end }}
### Recommendations

{{ range .Executive.Recommendations }}- {{ . }}
{{ end }}
### Conclusion

{{ .Executive.Conclusion }}

---

## Findings

{{ range .Entries }}
### {{ .Class.Name }} at {{ .Finding.File }}:{{ .Finding.Line }}

**Severity:** {{ .Severity }} | **Class:** {{ .Finding.ClassID }} | **Status:** {{ .Finding.Status }}

{{ if .Finding.Notes }}{{ .Finding.Notes }}

{{ end }}{{ if .Finding.Excerpt }}` + "```rust\n{{ .Finding.Excerpt }}\n```" + `

{{ end }}**Remediation:** {{ .Class.Remediation }}
---
{{ end }}`
