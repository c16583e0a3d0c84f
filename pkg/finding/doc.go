// Package finding provides the shared severity taxonomy and the
// recorded-finding type used across solaudit packages.
//
// The catalog, lint, report, and export packages all speak in terms of
// these types so severity ordering and format mappings (SARIF,
// SonarQube, GitLab) stay in one place.
//
// Usage:
//
//	f := finding.Finding{ClassID: "missing-signer-check", File: "src/lib.rs", Line: 42}
//	level := finding.Critical.ToSARIF() // "error"
package finding
