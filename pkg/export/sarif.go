package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// Compile-time interface check.
var _ Writer = (*SARIFWriter)(nil)

// SARIFWriter writes findings in SARIF 2.1.0 format.
// SARIF (Static Analysis Results Interchange Format) is the standard
// for GitHub Security tab, GitLab SAST, and Azure DevOps integration.
// Results are buffered and written as a complete SARIF document on
// Close. Rules are emitted per defect class, built from the catalog.
//
// The output follows GitHub-certified patterns:
//   - matchBasedId/v1 fingerprints for result deduplication
//   - security-severity scores for GitHub Advanced Security
//   - Rich markdown help carrying the class remediation
//   - CWE tagging for vulnerability classification
type SARIFWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    SARIFOptions
	catalog *catalog.Catalog
	results []sarifResult
	rules   map[string]sarifRule
}

// SARIFOptions configures the SARIF writer.
type SARIFOptions struct {
	// ToolName is the name of the tool (default: solaudit).
	ToolName string

	// ToolVersion is the version of the tool.
	ToolVersion string

	// ToolURI is the information URI for the tool.
	ToolURI string

	// Organization is the organization that produces the tool.
	Organization string
}

// SARIF 2.1.0 structures.

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool     `json:"tool"`
	Results    []sarifResult `json:"results"`
	ColumnKind string        `json:"columnKind,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Organization    string      `json:"organization,omitempty"`
	Rules           []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name,omitempty"`
	ShortDescription *sarifMessage       `json:"shortDescription,omitempty"`
	FullDescription  *sarifMessage       `json:"fullDescription,omitempty"`
	DefaultConfig    *sarifConfiguration `json:"defaultConfiguration,omitempty"`
	Help             *sarifHelp          `json:"help,omitempty"`
	HelpURI          string              `json:"helpUri,omitempty"`
	Properties       map[string]any      `json:"properties,omitempty"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifHelp struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

type sarifResult struct {
	RuleID       string             `json:"ruleId"`
	Level        string             `json:"level"`
	Message      sarifMessage       `json:"message"`
	Locations    []sarifLocation    `json:"locations,omitempty"`
	Fingerprints map[string]string  `json:"fingerprints,omitempty"`
	Suppressions []sarifSuppression `json:"suppressions,omitempty"`
	Properties   map[string]any     `json:"properties,omitempty"`
}

type sarifSuppression struct {
	Kind          string `json:"kind"`
	Justification string `json:"justification,omitempty"`
}

type sarifMessage struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

// NewSARIFWriter creates a SARIF 2.1.0 writer. The writer buffers all
// results and writes a complete SARIF document on Close. Safe for
// concurrent use.
func NewSARIFWriter(w io.Writer, cat *catalog.Catalog, opts SARIFOptions) *SARIFWriter {
	if opts.ToolName == "" {
		opts.ToolName = defaults.ToolName
	}
	if opts.ToolVersion == "" {
		opts.ToolVersion = defaults.Version
	}
	if opts.ToolURI == "" {
		opts.ToolURI = defaults.ToolURI
	}
	if opts.Organization == "" {
		opts.Organization = defaults.ToolNameDisplay
	}
	return &SARIFWriter{
		w:       w,
		opts:    opts,
		catalog: cat,
		results: make([]sarifResult, 0),
		rules:   make(map[string]sarifRule),
	}
}

// generateFingerprint creates a matchBasedId/v1 fingerprint for result
// deduplication: a SHA256 hash of rule id, file path, line and excerpt.
func generateFingerprint(ruleID, filePath string, line int, excerpt string) string {
	h := sha256.New()
	h.Write([]byte(fmt.Sprintf("%s:%s:%d:%s", ruleID, filePath, line, excerpt)))
	return hex.EncodeToString(h.Sum(nil))
}

// buildTags creates the tags array for a rule including CWE and class tags.
func buildTags(class catalog.Class) []string {
	tags := []string{"security", "external/cwe"}
	for _, cwe := range class.CWE {
		tags = append(tags, fmt.Sprintf("CWE-%d", cwe))
	}
	tags = append(tags, class.Tags...)
	tags = append(tags, "solana")
	return tags
}

// buildHelp creates rich help content with markdown for IDE display,
// carrying the class description and remediation.
func buildHelp(class catalog.Class) *sarifHelp {
	var cweLinks strings.Builder
	for _, cwe := range class.CWE {
		cweLinks.WriteString(fmt.Sprintf("- [CWE-%d: %s](%s)\n", cwe, defaults.CWEName(cwe), defaults.CWEURL(cwe)))
	}
	var refLinks strings.Builder
	for _, ref := range class.References {
		refLinks.WriteString(fmt.Sprintf("- <%s>\n", ref))
	}

	markdown := fmt.Sprintf(`## %s

### Description

%s
### Remediation

%s
### References

%s%s`, class.Name, class.Description, class.Remediation, cweLinks.String(), refLinks.String())

	return &sarifHelp{
		Text:     strings.TrimSpace(class.Description),
		Markdown: markdown,
	}
}

// Write converts a finding to a SARIF result, registering the class
// rule on first sight. Findings for unknown classes are rejected.
func (sw *SARIFWriter) Write(f *finding.Finding) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	class, err := sw.catalog.Get(f.ClassID)
	if err != nil {
		return err
	}
	severity := f.EffectiveSeverity(class.Severity)

	if _, exists := sw.rules[class.ID]; !exists {
		sw.rules[class.ID] = sarifRule{
			ID:   class.ID,
			Name: class.Name,
			ShortDescription: &sarifMessage{
				Text: class.Name,
			},
			FullDescription: &sarifMessage{
				Text: strings.TrimSpace(class.Description),
			},
			DefaultConfig: &sarifConfiguration{
				Level: class.Severity.ToSARIF(),
			},
			Help:    buildHelp(class),
			HelpURI: fmt.Sprintf("%s/classes/%s", defaults.ToolURI, class.ID),
			Properties: map[string]any{
				"precision":         "high",
				"tags":              buildTags(class),
				"security-severity": class.Severity.ToSARIFScore(),
			},
		}
	}

	msgText := fmt.Sprintf("%s in %s", class.Name, f.Program)
	if f.Program == "" {
		msgText = class.Name
	}
	msgMarkdown := fmt.Sprintf(
		"**%s**\n\n"+
			"| Property | Value |\n"+
			"|----------|-------|\n"+
			"| Class | %s |\n"+
			"| Severity | %s |\n"+
			"| Status | %s |",
		class.Name, class.ID, severity, f.Status)
	if f.Excerpt != "" {
		msgMarkdown += fmt.Sprintf("\n| Excerpt | `%s` |", truncateExcerpt(f.Excerpt))
	}

	result := sarifResult{
		RuleID: class.ID,
		Level:  severity.ToSARIF(),
		Message: sarifMessage{
			Text:     msgText,
			Markdown: msgMarkdown,
		},
		Fingerprints: map[string]string{
			"matchBasedId/v1": generateFingerprint(class.ID, f.File, f.Line, f.Excerpt),
			"solauditId/v1":   f.Fingerprint(),
		},
		Properties: map[string]any{
			"class":    class.ID,
			"severity": severity.String(),
			"status":   string(f.Status),
			"program":  f.Program,
		},
	}

	if f.File != "" {
		result.Locations = []sarifLocation{{
			PhysicalLocation: &sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: f.File},
				Region:           &sarifRegion{StartLine: max(f.Line, 1)},
			},
		}}
	}

	// False positives stay in the document but suppressed, so
	// dashboards show the triage decision instead of reopening them.
	if f.Status == finding.StatusFalsePositive {
		result.Suppressions = []sarifSuppression{{
			Kind:          "external",
			Justification: f.Notes,
		}}
	}

	sw.results = append(sw.results, result)
	return nil
}

// truncateExcerpt caps excerpt display length for result messages.
func truncateExcerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= defaults.MaxExcerptDisplay {
		return s
	}
	return string(runes[:defaults.MaxExcerptDisplay]) + "..."
}

// Flush is a no-op for the SARIF writer.
// All results are written as a single document on Close.
func (sw *SARIFWriter) Flush() error { return nil }

// Close writes all buffered results as a complete SARIF 2.1.0 document.
// If the underlying writer implements io.Closer, it will be closed.
func (sw *SARIFWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	// Sort rules by ID for deterministic output.
	rules := make([]sarifRule, 0, len(sw.rules))
	for _, rule := range sw.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})

	// Results must encode as [] not null per the SARIF schema.
	results := sw.results
	if results == nil {
		results = make([]sarifResult, 0)
	}

	doc := sarifDocument{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:            sw.opts.ToolName,
						Version:         sw.opts.ToolVersion,
						SemanticVersion: sw.opts.ToolVersion,
						InformationURI:  sw.opts.ToolURI,
						Organization:    sw.opts.Organization,
						Rules:           rules,
					},
				},
				Results:    results,
				ColumnKind: "utf16CodeUnits",
			},
		},
	}

	encoder := jsonutil.NewStreamEncoder(sw.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("sarif: encode: %w", err)
	}

	if closer, ok := sw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
