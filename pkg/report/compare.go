package report

import (
	"fmt"
	"time"

	"github.com/solaudit/solaudit/pkg/finding"
)

// ComparisonReport compares findings between two audits of the same
// program. Findings are matched by fingerprint, so edits to notes or
// status do not register as new findings.
type ComparisonReport struct {
	BaselineDate  time.Time `json:"baseline_date"`
	CurrentDate   time.Time `json:"current_date"`
	NewFindings   []Entry   `json:"new_findings"`
	FixedFindings []Entry   `json:"fixed_findings"`
	Unchanged     []Entry   `json:"unchanged"`
	RiskTrend     string    `json:"risk_trend"` // improving, degrading, stable
	Summary       string    `json:"summary"`
}

// Compare generates a comparison between a baseline and current report.
func Compare(baseline, current *Report) *ComparisonReport {
	comparison := &ComparisonReport{
		BaselineDate:  baseline.GeneratedAt,
		CurrentDate:   current.GeneratedAt,
		NewFindings:   make([]Entry, 0),
		FixedFindings: make([]Entry, 0),
		Unchanged:     make([]Entry, 0),
	}

	baselineByPrint := make(map[string]Entry, len(baseline.Entries))
	for _, e := range baseline.Entries {
		baselineByPrint[e.Finding.Fingerprint()] = e
	}
	currentPrints := make(map[string]bool, len(current.Entries))

	for _, e := range current.Entries {
		fp := e.Finding.Fingerprint()
		currentPrints[fp] = true
		if _, exists := baselineByPrint[fp]; exists {
			comparison.Unchanged = append(comparison.Unchanged, e)
		} else {
			comparison.NewFindings = append(comparison.NewFindings, e)
		}
	}
	for fp, e := range baselineByPrint {
		if !currentPrints[fp] {
			comparison.FixedFindings = append(comparison.FixedFindings, e)
		}
	}

	// Weigh by severity, not raw counts: one new critical outweighs
	// two fixed lows.
	switch delta := severityDelta(comparison.FixedFindings, comparison.NewFindings); {
	case delta < 0:
		comparison.RiskTrend = "improving"
	case delta > 0:
		comparison.RiskTrend = "degrading"
	default:
		comparison.RiskTrend = "stable"
	}

	comparison.Summary = fmt.Sprintf(
		"Comparison shows %d new findings, %d fixed, and %d unchanged. Risk trend: %s",
		len(comparison.NewFindings),
		len(comparison.FixedFindings),
		len(comparison.Unchanged),
		comparison.RiskTrend,
	)
	return comparison
}

// severityDelta reports the difference in summed severity scores,
// positive when current carries more risk than baseline.
func severityDelta(baseline, current []Entry) int {
	score := func(entries []Entry) int {
		total := 0
		for _, e := range entries {
			total += e.Severity.Score()
		}
		return total
	}
	return score(current) - score(baseline)
}

// FilterByStatus returns the entries whose finding has the given status.
func FilterByStatus(entries []Entry, status finding.Status) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Finding.Status == status {
			out = append(out, e)
		}
	}
	return out
}
