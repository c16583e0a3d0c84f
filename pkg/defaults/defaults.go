// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for tool identity, exit codes, and the
// CWE reference data used by exporters and the renderer.
//
// Usage:
//
//	opts.ToolName = defaults.ToolName
//	os.Exit(defaults.ExitLintError)
//
// DO NOT hardcode the tool name or version anywhere else.
package defaults

import "fmt"

// Version is the current solaudit version.
const Version = "1.2.0"

const (
	// ToolName is the machine-facing tool identifier (binary name,
	// SARIF driver name, user agents).
	ToolName = "solaudit"

	// ToolNameDisplay is the human-facing tool name.
	ToolNameDisplay = "SolAudit"

	// ToolURI is the canonical project URL.
	ToolURI = "https://github.com/solaudit/solaudit"
)

// UserAgent returns the solaudit user agent with optional context.
func UserAgent(context string) string {
	if context == "" {
		return fmt.Sprintf("%s/%s", ToolName, Version)
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}

// ============================================================================
// DOCUMENT LIMITS
// ============================================================================
//
// Use these for catalog lint thresholds and rendering truncation.
// ============================================================================

const (
	// MaxClassIDLength bounds defect class ids (slugs).
	MaxClassIDLength = 64

	// MaxExcerptDisplay truncates evidence excerpts in tables and
	// exporter messages.
	MaxExcerptDisplay = 200

	// MaxExampleLines warns when an illustrative excerpt grows beyond
	// what renders readably in the knowledge-base document.
	MaxExampleLines = 80
)

// ============================================================================
// REPORT SCORING
// ============================================================================
//
// Weighted risk-score contribution per severity, normalized to 0-100
// by the report builder.
// ============================================================================

const (
	RiskWeightCritical = 40
	RiskWeightHigh     = 20
	RiskWeightMedium   = 10
	RiskWeightLow      = 5
)
