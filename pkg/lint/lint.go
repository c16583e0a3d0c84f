// Package lint checks defect class definitions for structural
// problems before they ship in a catalog: missing fields, invalid
// severities, duplicate ids, and Markdown that will not render.
package lint

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/render"
)

// Result holds the outcome of a catalog lint run
type Result struct {
	TotalClasses      int      `json:"total_classes"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	DuplicateIDs      []string `json:"duplicate_ids"`
	MissingFields     []string `json:"missing_fields"`
	InvalidSeverities []string `json:"invalid_severities"`
	UnclosedFences    []string `json:"unclosed_fences"`
	RenderIssues      []string `json:"render_issues"`
	Valid             bool     `json:"valid"`
}

// ErrorCount returns the total number of hard failures.
func (r *Result) ErrorCount() int {
	return len(r.Errors) + len(r.DuplicateIDs) + len(r.MissingFields) +
		len(r.InvalidSeverities) + len(r.UnclosedFences) + len(r.RenderIssues)
}

// requiredFields lists the class fields a catalog entry cannot ship
// without.
var requiredFields = []struct {
	name string
	get  func(*catalog.Class) string
}{
	{"id", func(c *catalog.Class) string { return c.ID }},
	{"name", func(c *catalog.Class) string { return c.Name }},
	{"description", func(c *catalog.Class) string { return c.Description }},
	{"remediation", func(c *catalog.Class) string { return c.Remediation }},
	{"example.source", func(c *catalog.Class) string { return c.Example.Source }},
}

// Run lints a set of classes. Scripted rules, if any, run after the
// built-in checks; their failures land in Errors.
func Run(classes []catalog.Class, rules []*ScriptRule) *Result {
	result := &Result{
		TotalClasses: len(classes),
		Valid:        true,
	}

	seen := make(map[string]bool, len(classes))
	for i := range classes {
		c := &classes[i]
		label := c.ID
		if label == "" {
			label = fmt.Sprintf("class[%d]", i)
		}

		for _, f := range requiredFields {
			if strings.TrimSpace(f.get(c)) == "" {
				result.MissingFields = append(result.MissingFields,
					fmt.Sprintf("%s: missing required field '%s'", label, f.name))
				result.Valid = false
			}
		}

		if c.ID != "" {
			if strings.TrimSpace(c.ID) != c.ID || strings.ContainsAny(c.ID, " \t\n\r") {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: id contains whitespace", label))
				result.Valid = false
			}
			if len(c.ID) > defaults.MaxClassIDLength {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: id too long (%d chars, max %d)", label, len(c.ID), defaults.MaxClassIDLength))
				result.Valid = false
			}
			if seen[c.ID] {
				result.DuplicateIDs = append(result.DuplicateIDs,
					fmt.Sprintf("duplicate id '%s'", c.ID))
				result.Valid = false
			}
			seen[c.ID] = true
		}

		if !c.Severity.IsValid() {
			result.InvalidSeverities = append(result.InvalidSeverities,
				fmt.Sprintf("%s: invalid severity '%s' (expected: %s)",
					label, c.Severity, strings.Join(severityNames(), ", ")))
			result.Valid = false
		}

		// A stray ``` in prose swallows everything after it when the
		// catalog renders to Markdown.
		for _, field := range []struct{ name, text string }{
			{"description", c.Description},
			{"remediation", c.Remediation},
		} {
			if strings.Count(field.text, "```")%2 != 0 {
				result.UnclosedFences = append(result.UnclosedFences,
					fmt.Sprintf("%s: unbalanced code fence in %s", label, field.name))
				result.Valid = false
			}
		}
		if strings.Contains(c.Example.Source, "```") {
			result.UnclosedFences = append(result.UnclosedFences,
				fmt.Sprintf("%s: example source contains a fence marker", label))
			result.Valid = false
		}

		lintWarnings(c, label, result)
	}

	checkRendered(classes, result)

	for _, rule := range rules {
		for i := range classes {
			c := &classes[i]
			msg, err := rule.Check(c)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: rule %s: %v", c.ID, rule.Name(), err))
				result.Valid = false
				continue
			}
			if msg != "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: rule %s: %s", c.ID, rule.Name(), msg))
				result.Valid = false
			}
		}
	}

	return result
}

// checkRendered renders the classes with the built-in Markdown template
// and verifies the finished document: fence markers pair up across the
// whole file, and the second-level heading count matches one per class
// plus the contents section. Per-field checks catch fence problems at
// the source; this catches headings leaking out of prose fields.
func checkRendered(classes []catalog.Class, result *Result) {
	r, err := render.New(render.Config{Format: render.FormatMarkdown})
	if err != nil {
		result.RenderIssues = append(result.RenderIssues,
			fmt.Sprintf("render check: %v", err))
		result.Valid = false
		return
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, classes); err != nil {
		result.RenderIssues = append(result.RenderIssues,
			fmt.Sprintf("render check: %v", err))
		result.Valid = false
		return
	}
	doc := buf.String()

	if strings.Count(doc, "```")%2 != 0 {
		result.RenderIssues = append(result.RenderIssues,
			"rendered document has an unbalanced code fence")
		result.Valid = false
	}

	headings := 0
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "## ") {
			headings++
		}
	}
	if want := len(classes) + 1; headings != want {
		result.RenderIssues = append(result.RenderIssues,
			fmt.Sprintf("rendered document has %d second-level headings, want %d (one per class plus contents)",
				headings, want))
		result.Valid = false
	}
}

// knownLanguages lists the fence languages renderers can highlight.
var knownLanguages = map[string]bool{
	"rust": true,
	"toml": true,
	"json": true,
	"text": true,
	"":     true, // loader defaults empty to rust
}

// lintWarnings collects non-fatal advice for a class.
func lintWarnings(c *catalog.Class, label string, result *Result) {
	if !knownLanguages[c.Example.Language] {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: unrecognized example language '%s'", label, c.Example.Language))
	}
	if len(c.CWE) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: no CWE mapping", label))
	}
	for _, id := range c.CWE {
		if defaults.CWEName(id) == "Unknown" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: CWE-%d is not in the bundled reference table", label, id))
		}
	}
	if len(c.References) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: no references", label))
	}
	if c.Example.Source != "" {
		if lines := strings.Count(c.Example.Source, "\n"); lines > defaults.MaxExampleLines {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: example is %d lines (max %d before it stops reading as an excerpt)",
					label, lines, defaults.MaxExampleLines))
		}
	}
	if c.Example.Caption == "" && c.Example.Source != "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: example has no caption", label))
	}
}

func severityNames() []string {
	sevs := finding.Severities()
	names := make([]string, len(sevs))
	for i, s := range sevs {
		names[i] = s.String()
	}
	return names
}
