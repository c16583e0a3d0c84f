// Package render turns a defect class catalog into a publishable
// document. Built-in templates cover Markdown, HTML and plain text;
// a custom template file can replace any of them.
package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/templates"
)

// Format selects a built-in output template.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// DefaultTitle is the document title used when none is configured.
const DefaultTitle = "Common Defect Classes in Solana Smart Contracts"

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown render format %q (available: markdown, html, text)", s)
	}
}

// Config configures a Renderer.
type Config struct {
	// Format picks the built-in template. Ignored when TemplatePath is set.
	Format Format

	// TemplatePath points at a custom template file.
	TemplatePath string

	// Title overrides the document title.
	Title string

	// Now supplies the generation timestamp; defaults to time.Now.
	Now func() time.Time
}

// Document is the data object templates render.
type Document struct {
	Title       string
	Version     string
	GeneratedAt string
	Classes     []catalog.Class
	Stats       catalog.LoadStats
}

// Renderer executes a parsed output template over catalog classes.
type Renderer struct {
	tmpl *template.Template
	cfg  Config
}

// New parses the configured template and returns a ready renderer.
func New(cfg Config) (*Renderer, error) {
	var content string
	switch {
	case cfg.TemplatePath != "":
		data, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		content = string(data)
	default:
		if cfg.Format == "" {
			cfg.Format = FormatMarkdown
		}
		data, err := templates.FS.ReadFile(fmt.Sprintf("output/%s.tmpl", cfg.Format))
		if err != nil {
			return nil, fmt.Errorf("unknown render format %q: %w", cfg.Format, err)
		}
		content = string(data)
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["anchor"] = tmplAnchor
	funcMap["severityIcon"] = tmplSeverityIcon
	funcMap["cweLink"] = defaults.CWEURL
	funcMap["cweName"] = defaults.CWEName
	funcMap["htmlEscape"] = html.EscapeString

	tmpl, err := template.New("solaudit").Funcs(funcMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse output template: %w", err)
	}

	return &Renderer{tmpl: tmpl, cfg: cfg}, nil
}

// Render writes the document for the given classes to w. The template
// executes into a buffer first so a failed render leaves w untouched.
func (r *Renderer) Render(w io.Writer, classes []catalog.Class) error {
	now := time.Now
	if r.cfg.Now != nil {
		now = r.cfg.Now
	}
	title := r.cfg.Title
	if title == "" {
		title = DefaultTitle
	}

	doc := &Document{
		Title:       title,
		Version:     defaults.Version,
		GeneratedAt: now().UTC().Format("2006-01-02"),
		Classes:     classes,
		Stats:       catalog.GetStats(classes),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// tmplAnchor converts a heading into a GitHub-style anchor fragment.
func tmplAnchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return b.String()
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
