package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/config"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/export"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
	"github.com/solaudit/solaudit/pkg/lint"
	"github.com/solaudit/solaudit/pkg/mcpserver"
	"github.com/solaudit/solaudit/pkg/render"
	"github.com/solaudit/solaudit/pkg/report"
	"github.com/solaudit/solaudit/pkg/ui"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(defaults.ExitUserError)
	}

	cmd := os.Args[1]
	switch cmd {
	case "-h", "--help", "help":
		printUsage()
		os.Exit(defaults.ExitSuccess)
	case "-v", "--version", "version":
		ui.PrintMiniBanner()
		os.Exit(defaults.ExitSuccess)
	}

	cfg, err := config.ParseCommand(cmd, os.Args[2:], os.Stderr)
	if err != nil {
		ui.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, config.ErrInvalidConfig) && strings.Contains(err.Error(), "unknown command") {
			printUsage()
		}
		os.Exit(defaults.ExitUserError)
	}

	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)

	switch cmd {
	case "list":
		os.Exit(runList(cfg))
	case "show":
		os.Exit(runShow(cfg))
	case "render":
		os.Exit(runRender(cfg))
	case "lint":
		os.Exit(runLint(cfg))
	case "report":
		os.Exit(runReport(cfg))
	case "export":
		os.Exit(runExport(cfg))
	case "mcp":
		os.Exit(runMCP(cfg))
	}
}

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("SOLANA AUDIT KNOWLEDGE BASE"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("The Audit Workflow:"))
	fmt.Println()
	fmt.Printf("    %s  Browse the defect class catalog\n", ui.ConfigValueStyle.Render("1. list  "))
	fmt.Printf("    %s  Read one class in depth before reviewing code\n", ui.ConfigValueStyle.Render("2. show  "))
	fmt.Printf("    %s  Record findings, then build the audit report\n", ui.ConfigValueStyle.Render("3. report"))
	fmt.Printf("    %s  Push findings to CI dashboards (SARIF, CSV)\n", ui.ConfigValueStyle.Render("4. export"))
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("Quick Example:"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("solaudit list -severity critical"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("solaudit show integer-overflow"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("solaudit report findings.json -o report.md"))
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("list   "), "List defect classes (filter by -severity, -tag)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("show   "), "Show one class: description, example, remediation")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("render "), "Render the catalog as markdown, html, or text")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("lint   "), "Validate catalog files (fields, severities, code fences)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("report "), "Build an audit report from a findings JSON file")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("export "), "Export findings as SARIF, CSV, JSONL, or a custom template")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("mcp    "), "Serve the catalog over MCP (stdio) for AI assistants")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version"), "Print version")
	fmt.Println()
	fmt.Println("  Run 'solaudit <command> -h' for command flags.")
}

// fail prints err and picks the exit code for its category.
func fail(err error) int {
	ui.Fprintf(os.Stderr, "%s %v\n", ui.FailStyle.Render("ERROR"), err)
	switch {
	case errors.Is(err, finding.ErrUnknownClass),
		errors.Is(err, finding.ErrInvalidSeverity):
		return defaults.ExitUserError
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return defaults.ExitIOError
	default:
		return defaults.ExitInternalError
	}
}

// outputWriter opens the configured output file, or stdout when unset.
func outputWriter(cfg *config.Config) (*os.File, func(), error) {
	if cfg.OutputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", cfg.OutputFile, err)
	}
	return f, func() { f.Close() }, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.NewLoader(cfg.CatalogDir).Load()
}

// ---------------------------------------------------------------------------
// list
// ---------------------------------------------------------------------------

func runList(cfg *config.Config) int {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return fail(err)
	}

	classes := catalog.Filter(cat.Classes(), cfg.Severity, cfg.Tag)

	if cfg.Format == "json" {
		return listJSON(classes)
	}
	if cfg.Format != "text" {
		ui.Fprintf(os.Stderr, "unknown list format %q (available: text, json)\n", cfg.Format)
		return defaults.ExitUserError
	}

	if len(classes) == 0 {
		ui.Printf("no classes match the filter\n")
		return defaults.ExitSuccess
	}

	for _, c := range classes {
		badge := ui.SeverityStyle(string(c.Severity)).Render(strings.ToUpper(string(c.Severity)))
		id := ui.ClassIDStyle.Render(c.ID)
		ui.Printf("%s  %s  %s\n", badge, id, c.Name)
		if cfg.Verbose {
			ui.Printf("        tags: %s\n", strings.Join(c.Tags, ", "))
		}
	}

	stats := catalog.GetStats(classes)
	ui.Printf("\n%d classes", stats.TotalClasses)
	var parts []string
	for _, sev := range finding.Severities() {
		if n := stats.BySeverity[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	ui.Printf(" (%s)\n", strings.Join(parts, ", "))
	return defaults.ExitSuccess
}

// listJSON emits the filtered classes as a JSON document for scripting.
func listJSON(classes []catalog.Class) int {
	stats := catalog.GetStats(classes)
	doc := struct {
		Total      int                      `json:"total"`
		BySeverity map[finding.Severity]int `json:"by_severity"`
		Classes    []catalog.Class          `json:"classes"`
	}{stats.TotalClasses, stats.BySeverity, classes}

	data, err := jsonutil.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(os.Stdout, "%s\n", data)
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// show
// ---------------------------------------------------------------------------

func runShow(cfg *config.Config) int {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return fail(err)
	}

	class, err := cat.Get(cfg.ClassID)
	if err != nil {
		ui.Fprintf(os.Stderr, "%v\navailable: %s\n", err, strings.Join(cat.IDs(), ", "))
		return defaults.ExitUserError
	}

	r, err := render.New(render.Config{Format: render.FormatText, Title: class.Name})
	if err != nil {
		return fail(err)
	}
	if err := r.Render(os.Stdout, []catalog.Class{class}); err != nil {
		return fail(err)
	}
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func runRender(cfg *config.Config) int {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		ui.Fprintf(os.Stderr, "%v\n", err)
		return defaults.ExitUserError
	}

	ui.PrintConfigBanner(map[string]string{
		"Catalog":      cfg.CatalogDir,
		"Min Severity": cfg.Severity,
		"Tag":          cfg.Tag,
		"Output":       cfg.OutputFile,
		"Format":       cfg.Format,
	})

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fail(err)
	}
	classes := catalog.Filter(cat.Classes(), cfg.Severity, cfg.Tag)

	r, err := render.New(render.Config{
		Format:       format,
		TemplatePath: cfg.TemplatePath,
		Title:        cfg.Title,
	})
	if err != nil {
		return fail(err)
	}

	w, done, err := outputWriter(cfg)
	if err != nil {
		return fail(err)
	}
	defer done()

	if err := r.Render(w, classes); err != nil {
		return fail(err)
	}
	if cfg.OutputFile != "" {
		ui.Printf("wrote %d classes to %s\n", len(classes), cfg.OutputFile)
	}
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// lint
// ---------------------------------------------------------------------------

func runLint(cfg *config.Config) int {
	ui.PrintConfigBanner(map[string]string{
		"Catalog":   cfg.CatalogDir,
		"Rules Dir": cfg.RulesDir,
	})

	classes, err := catalog.NewLoader(cfg.CatalogDir).LoadRaw()
	if err != nil {
		return fail(err)
	}

	var rules []*lint.ScriptRule
	var loadErrs []error
	if cfg.RulesDir != "" {
		rules, loadErrs = lint.LoadScriptDir(cfg.RulesDir)
	}

	result := lint.Run(classes, rules)
	// A rule file that fails to load never blocks the other rules, but
	// a lint run with missing rules cannot pass.
	for _, e := range loadErrs {
		result.Errors = append(result.Errors, e.Error())
		result.Valid = false
	}
	lint.PrintSummary(result, cfg.Verbose)
	if !result.Valid {
		return defaults.ExitLintError
	}
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// report
// ---------------------------------------------------------------------------

func runReport(cfg *config.Config) int {
	format := report.Format(cfg.Format)
	switch format {
	case report.FormatMarkdown, report.FormatJSON, report.FormatHTML, report.FormatText:
	default:
		ui.Fprintf(os.Stderr, "unknown report format %q (available: markdown, json, html, text)\n", cfg.Format)
		return defaults.ExitUserError
	}

	ui.PrintConfigBanner(map[string]string{
		"Catalog":  cfg.CatalogDir,
		"Findings": cfg.FindingsFile,
		"Output":   cfg.OutputFile,
		"Format":   cfg.Format,
		"Fail On":  cfg.FailOn,
	})

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fail(err)
	}

	findings, err := report.LoadFindings(cfg.FindingsFile)
	if err != nil {
		return fail(err)
	}

	builder := report.NewBuilder(cat, report.Config{
		Title:   cfg.Title,
		Program: cfg.Program,
		Format:  format,
	})
	if err := builder.AddAll(findings); err != nil {
		return fail(err)
	}
	rpt := builder.Build()

	w, done, err := outputWriter(cfg)
	if err != nil {
		return fail(err)
	}
	defer done()

	if err := report.NewGenerator().Generate(rpt, w); err != nil {
		return fail(err)
	}

	if cfg.BaselineFile != "" {
		if code := printComparison(cfg, cat, rpt); code != defaults.ExitSuccess {
			return code
		}
	}

	if threshold := cfg.FailOnSeverity(); threshold != "" {
		for _, e := range rpt.Entries {
			if e.Finding.Status == finding.StatusOpen && e.Severity.Score() >= threshold.Score() {
				ui.Fprintf(os.Stderr, "open %s finding %s at/above fail-on threshold %s\n",
					e.Severity, e.Finding.ID, threshold)
				return defaults.ExitLintError
			}
		}
	}
	return defaults.ExitSuccess
}

// printComparison builds a report from the baseline findings file and
// prints the drift summary to stderr so it never pollutes piped output.
func printComparison(cfg *config.Config, cat *catalog.Catalog, current *report.Report) int {
	baselineFindings, err := report.LoadFindings(cfg.BaselineFile)
	if err != nil {
		return fail(err)
	}
	builder := report.NewBuilder(cat, report.Config{Program: cfg.Program})
	if err := builder.AddAll(baselineFindings); err != nil {
		return fail(err)
	}
	cmp := report.Compare(builder.Build(), current)
	ui.Fprintf(os.Stderr, "%s\n", cmp.Summary)
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func runExport(cfg *config.Config) int {
	ui.PrintConfigBanner(map[string]string{
		"Catalog":  cfg.CatalogDir,
		"Findings": cfg.FindingsFile,
		"Output":   cfg.OutputFile,
		"Format":   cfg.Format,
	})

	cat, err := loadCatalog(cfg)
	if err != nil {
		return fail(err)
	}

	findings, err := report.LoadFindings(cfg.FindingsFile)
	if err != nil {
		return fail(err)
	}

	w, done, err := outputWriter(cfg)
	if err != nil {
		return fail(err)
	}
	defer done()

	var ew export.Writer
	if cfg.Format == "template" {
		ew, err = export.NewTemplateWriter(w, cat, export.TemplateConfig{
			TemplatePath: cfg.TemplatePath,
			BuiltIn:      cfg.BuiltinTemplate,
		})
	} else {
		ew, err = export.New(cfg.Format, w, cat)
	}
	if err != nil {
		ui.Fprintf(os.Stderr, "%v\n", err)
		return defaults.ExitUserError
	}
	// WriteAll flushes and closes the export writer.
	if err := export.WriteAll(ew, findings); err != nil {
		return fail(err)
	}
	if cfg.OutputFile != "" {
		ui.Printf("exported %d findings to %s\n", len(findings), cfg.OutputFile)
	}
	return defaults.ExitSuccess
}

// ---------------------------------------------------------------------------
// mcp
// ---------------------------------------------------------------------------

func runMCP(cfg *config.Config) int {
	// The banner goes to stderr; stdout carries the MCP protocol.
	ui.PrintMiniBanner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(&mcpserver.Config{
		CatalogDir: cfg.CatalogDir,
		RulesDir:   cfg.RulesDir,
	})
	if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fail(err)
	}
	return defaults.ExitSuccess
}
