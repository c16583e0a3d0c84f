package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"sync"
)

// The HTML template is parsed lazily and once. html/template escapes
// all finding content (notes and excerpts are auditor-supplied).
var (
	htmlTmplOnce sync.Once
	htmlTmpl     *htmltemplate.Template
	htmlTmplErr  error
)

func (g *Generator) generateHTML(report *Report, w io.Writer) error {
	htmlTmplOnce.Do(func() {
		htmlTmpl, htmlTmplErr = htmltemplate.New("html").Parse(htmlReportTmpl)
	})
	if htmlTmplErr != nil {
		return fmt.Errorf("parse html report template: %w", htmlTmplErr)
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, report); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

const htmlReportTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Executive.Title }}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
  h1 { border-bottom: 3px solid #9945FF; padding-bottom: .4rem; }
  table { border-collapse: collapse; margin: 1rem 0; }
  th, td { border: 1px solid #ddd; padding: .4rem .8rem; text-align: left; }
  th { background: #f5f3ff; }
  .badge { display: inline-block; padding: .1rem .5rem; border-radius: 3px; color: #fff; font-size: .8rem; text-transform: uppercase; }
  .badge.critical { background: #d63031; }
  .badge.high { background: #e17055; }
  .badge.medium { background: #fdcb6e; color: #1a1a2e; }
  .badge.low { background: #00b894; }
  .badge.info { background: #0984e3; }
  pre { background: #f6f8fa; padding: .8rem; overflow-x: auto; border-radius: 4px; }
  .finding { border-left: 4px solid #9945FF; padding-left: 1rem; margin: 1.5rem 0; }
</style>
</head>
<body>
<h1>{{ .Executive.Title }}</h1>
{{ if .Executive.Program }}<p><strong>Program:</strong> {{ .Executive.Program }}</p>
{{ end }}<p><strong>Date:</strong> {{ .Executive.ReportDate.Format "January 2, 2006" }} &middot; <strong>Report:</strong> {{ .ID }}</p>

<h2>Executive Summary</h2>
<table>
  <tr><th>Risk Score</th><td>{{ printf "%.0f" .Executive.RiskScore }}</td></tr>
  <tr><th>Overall Risk</th><td>{{ .Executive.OverallRisk }}</td></tr>
  <tr><th>Total Findings</th><td>{{ .Executive.TotalFindings }}</td></tr>
  <tr><th>Open Findings</th><td>{{ .Executive.OpenFindings }}</td></tr>
</table>

{{ if .Executive.KeyFindings }}<h3>Key Findings</h3>
<ul>
{{ range .Executive.KeyFindings }}  <li>{{ . }}</li>
{{ end }}</ul>
{{ end }}{{ if .Executive.Recommendations }}<h3>Recommendations</h3>
<ul>
{{ range .Executive.Recommendations }}  <li>{{ . }}</li>
{{ end }}</ul>
{{ end }}<h3>Conclusion</h3>
<p>{{ .Executive.Conclusion }}</p>

<h2>Findings</h2>
{{ range .Entries }}<div class="finding">
<h3>{{ .Class.Name }} at {{ .Finding.File }}:{{ .Finding.Line }}</h3>
<p><span class="badge {{ .Severity }}">{{ .Severity }}</span> &middot; {{ .Finding.ClassID }} &middot; {{ .Finding.Status }}</p>
{{ if .Finding.Notes }}<p>{{ .Finding.Notes }}</p>
{{ end }}{{ if .Finding.Excerpt }}<pre><code>{{ .Finding.Excerpt }}</code></pre>
{{ end }}<p><strong>Remediation:</strong> {{ .Class.Remediation }}</p>
</div>
{{ end }}
</body>
</html>
`
