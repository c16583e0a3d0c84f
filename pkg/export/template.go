package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// Compile-time interface check.
var _ Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer.
type TemplateConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template string (alternative to TemplatePath).
	TemplateString string

	// BuiltIn is the name of a built-in template: "asff", "text-summary".
	BuiltIn string
}

// builtInTemplates contains pre-defined templates for common consumers.
var builtInTemplates = map[string]string{
	// AWS Security Hub Finding Format.
	"asff": `{
  "SchemaVersion": "2018-10-08",
  "Id": "{{ .ReportID }}/solaudit",
  "GeneratorId": "solaudit",
  "Types": ["Software and Configuration Checks/Vulnerabilities"],
  "CreatedAt": "{{ .Timestamp }}",
  "UpdatedAt": "{{ .Timestamp }}",
  "Severity": {
    "Label": "{{ .HighestSeverity | upper }}"
  },
  "Title": "Solana program audit findings",
  "Description": "{{ .TotalFindings }} findings recorded, {{ .OpenFindings }} open",
  "Findings": [
{{- $last := sub (len .Entries) 1 }}
{{- range $i, $e := .Entries }}
    {
      "Id": "{{ $.ReportID }}/{{ $e.Finding.ID }}",
      "Severity": "{{ $e.Severity | toString | upper }}",
      "Title": "{{ $e.Class.Name }}",
      "Description": "{{ $e.Class.ID }} in {{ $e.Finding.File }}:{{ $e.Finding.Line }}"
    }{{ if lt $i $last }},{{ end }}
{{- end }}
  ]
}`,

	"text-summary": `Solana Audit Findings
=====================
Generated: {{ .Timestamp }}
Tool: {{ .ToolName }} v{{ .ToolVersion }}

Findings:
  Total: {{ .TotalFindings }}
  Open: {{ .OpenFindings }}
{{ if gt .TotalFindings 0 }}
By Severity:
{{- range $sev, $count := .SeverityCounts }}
  {{ severityIcon $sev }} {{ $sev | title }}: {{ $count }}
{{- end }}

By Class:
{{- range $class, $count := .ClassCounts }}
  {{ $class }}: {{ $count }}
{{- end }}
{{ end }}`,
}

// TemplateWriter renders findings through a Go template. It buffers
// all findings in memory and renders the template on Close. Sprig
// functions and catalog-specific functions are available in templates.
type TemplateWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  TemplateConfig
	tmpl    *template.Template
	catalog *catalog.Catalog
	entries []tmplEntry
	now     func() time.Time
}

// tmplEntry is a finding joined with its class for template access.
type tmplEntry struct {
	Finding  *finding.Finding
	Class    catalog.Class
	Severity finding.Severity
}

// tmplData holds all data available to export templates.
type tmplData struct {
	ReportID    string
	ToolName    string
	ToolVersion string
	Timestamp   string

	Entries []tmplEntry

	TotalFindings   int
	OpenFindings    int
	SeverityCounts  map[string]int
	ClassCounts     map[string]int
	HighestSeverity string
}

// NewTemplateWriter creates a template writer. The template is parsed
// immediately so invalid templates fail before any findings are read.
func NewTemplateWriter(w io.Writer, cat *catalog.Catalog, config TemplateConfig) (*TemplateWriter, error) {
	tw := &TemplateWriter{
		w:       w,
		config:  config,
		catalog: cat,
		entries: make([]tmplEntry, 0),
		now:     time.Now,
	}
	if err := tw.parseTemplate(); err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return tw, nil
}

func (tw *TemplateWriter) parseTemplate() error {
	var templateContent string

	switch {
	case tw.config.TemplatePath != "":
		content, err := os.ReadFile(tw.config.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		templateContent = string(content)

	case tw.config.TemplateString != "":
		templateContent = tw.config.TemplateString

	case tw.config.BuiltIn != "":
		content, ok := builtInTemplates[tw.config.BuiltIn]
		if !ok {
			return fmt.Errorf("unknown built-in template: %s (available: asff, text-summary)", tw.config.BuiltIn)
		}
		templateContent = content

	default:
		return fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["severityIcon"] = tmplSeverityIcon
	funcMap["cweLink"] = defaults.CWEURL
	funcMap["cweName"] = defaults.CWEName
	funcMap["json"] = tmplToJSON

	tmpl, err := template.New("export").Funcs(funcMap).Parse(templateContent)
	if err != nil {
		return fmt.Errorf("parse export template: %w", err)
	}
	tw.tmpl = tmpl
	return nil
}

// Write buffers a finding for rendering on Close.
func (tw *TemplateWriter) Write(f *finding.Finding) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	class, err := tw.catalog.Get(f.ClassID)
	if err != nil {
		return err
	}
	tw.entries = append(tw.entries, tmplEntry{
		Finding:  f,
		Class:    class,
		Severity: f.EffectiveSeverity(class.Severity),
	})
	return nil
}

// Flush is a no-op; the document is rendered on Close.
func (tw *TemplateWriter) Flush() error { return nil }

// Close renders the template over all buffered findings. The output is
// buffered so a failed render leaves the writer untouched.
func (tw *TemplateWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data := tw.buildTemplateData()

	var buf bytes.Buffer
	if err := tw.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := tw.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (tw *TemplateWriter) buildTemplateData() *tmplData {
	data := &tmplData{
		ReportID:       "EXP-" + tw.now().UTC().Format("20060102-150405"),
		ToolName:       defaults.ToolName,
		ToolVersion:    defaults.Version,
		Timestamp:      tw.now().UTC().Format(time.RFC3339),
		Entries:        tw.entries,
		TotalFindings:  len(tw.entries),
		SeverityCounts: make(map[string]int),
		ClassCounts:    make(map[string]int),
	}

	highest := finding.Severity("")
	for _, e := range tw.entries {
		data.SeverityCounts[string(e.Severity)]++
		data.ClassCounts[e.Class.ID]++
		if e.Finding.Status == finding.StatusOpen {
			data.OpenFindings++
		}
		if e.Severity.Score() > highest.Score() {
			highest = e.Severity
		}
	}
	data.HighestSeverity = string(highest)
	return data
}

// tmplSeverityIcon returns an emoji icon for a severity level.
func tmplSeverityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	case "info":
		return "🔵"
	default:
		return "⚪"
	}
}

// tmplToJSON converts a value to a JSON string.
func tmplToJSON(v any) string {
	b, err := jsonutil.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
