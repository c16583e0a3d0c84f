package finding

import "time"

// Status tracks the review lifecycle of a recorded finding.
type Status string

const (
	StatusOpen          Status = "open"
	StatusAcknowledged  Status = "acknowledged"
	StatusFixed         Status = "fixed"
	StatusFalsePositive Status = "false-positive"
)

// IsValid reports whether st is a recognized finding status.
func (st Status) IsValid() bool {
	switch st {
	case StatusOpen, StatusAcknowledged, StatusFixed, StatusFalsePositive:
		return true
	}
	return false
}

// Finding is one recorded occurrence of a catalog defect class in a
// reviewed Solana program. Findings are written by auditors into a
// findings JSON file; the report and export packages consume them.
//
// Severity is optional: when empty, the class severity from the
// catalog applies.
type Finding struct {
	ID       string    `json:"id"`
	ClassID  string    `json:"class_id"`
	Program  string    `json:"program,omitempty"`
	File     string    `json:"file"`
	Line     int       `json:"line,omitempty"`
	Excerpt  string    `json:"excerpt,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Auditor  string    `json:"auditor,omitempty"`
	Severity Severity  `json:"severity,omitempty"`
	Status   Status    `json:"status,omitempty"`
	FoundAt  time.Time `json:"found_at,omitempty"`
}

// EffectiveSeverity returns the finding's own severity when set,
// otherwise the fallback (normally the class severity).
func (f *Finding) EffectiveSeverity(fallback Severity) Severity {
	if f.Severity.IsValid() {
		return f.Severity
	}
	return fallback
}
