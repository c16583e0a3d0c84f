package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/solaudit/solaudit/pkg/finding"
)

// Config holds all CLI configuration options. One flat struct serves
// every subcommand; each command registers only the flags it uses.
type Config struct {
	// Catalog settings
	CatalogDir string // Directory with class YAML files (empty = embedded)
	ClassID    string // Single class to show
	Severity   string // Filter by minimum severity (empty = all)
	Tag        string // Filter by tag (empty = all)

	// Lint settings
	RulesDir string // Directory with Tengo lint rule scripts

	// Render settings
	Format          string // Output format (command-dependent)
	TemplatePath    string // Custom template file (empty = built-in)
	BuiltinTemplate string // Named built-in export template
	Title           string // Document title override

	// Report settings
	FindingsFile string // Findings JSON file
	BaselineFile string // Previous findings file for comparison
	Program      string // Program name shown in the report
	FailOn       string // Exit non-zero when findings at/above this severity exist

	// Output settings
	OutputFile string // Output file path (empty = stdout)
	Verbose    bool   // Verbose output
	Silent     bool   // Silent mode (no banner)
	NoColor    bool   // Disable colored output
}

// defaultFormats maps each subcommand to its default output format.
var defaultFormats = map[string]string{
	"list":   "text",
	"render": "markdown",
	"report": "markdown",
	"export": "sarif",
}

// ParseCommand parses the arguments of one subcommand into a Config.
// Unknown commands and bad flag values return an error instead of
// calling os.Exit, so the caller owns the exit code.
func ParseCommand(cmd string, args []string, usageOut io.Writer) (*Config, error) {
	cfg := &Config{Format: defaultFormats[cmd]}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(usageOut)

	registerCommon := func() {
		fs.StringVar(&cfg.CatalogDir, "catalog", "", "Class catalog directory (default: embedded)")
		fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
		fs.BoolVar(&cfg.Verbose, "v", false, "Verbose (alias)")
		fs.BoolVar(&cfg.Silent, "silent", false, "Silent mode - no banner")
		fs.BoolVar(&cfg.Silent, "s", false, "Silent (alias)")
		fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
		fs.BoolVar(&cfg.NoColor, "nc", false, "No color (alias)")
	}
	registerFilters := func() {
		fs.StringVar(&cfg.Severity, "severity", "", "Filter by min severity (Critical,High,Medium,Low,Info)")
		fs.StringVar(&cfg.Tag, "tag", "", "Filter by tag")
	}
	registerOutput := func(formats string) {
		fs.StringVar(&cfg.OutputFile, "output", "", "Output file path")
		fs.StringVar(&cfg.OutputFile, "o", "", "Output file (alias)")
		fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: "+formats)
		fs.StringVar(&cfg.Format, "f", cfg.Format, "Output format (alias)")
	}

	switch cmd {
	case "list":
		registerCommon()
		registerFilters()
		fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: text,json")
		fs.StringVar(&cfg.Format, "f", cfg.Format, "Output format (alias)")
	case "show":
		registerCommon()
		fs.StringVar(&cfg.ClassID, "class", "", "Class ID to show")
	case "render":
		registerCommon()
		registerFilters()
		registerOutput("markdown,html,text")
		fs.StringVar(&cfg.TemplatePath, "template", "", "Custom template file")
		fs.StringVar(&cfg.Title, "title", "", "Document title")
	case "lint":
		registerCommon()
		fs.StringVar(&cfg.RulesDir, "rules", "", "Directory with Tengo lint rules")
	case "report":
		registerCommon()
		registerOutput("markdown,json,html,text")
		fs.StringVar(&cfg.FindingsFile, "findings", "", "Findings JSON file")
		fs.StringVar(&cfg.Program, "program", "", "Program name for the report")
		fs.StringVar(&cfg.Title, "title", "", "Report title")
		fs.StringVar(&cfg.BaselineFile, "baseline", "", "Previous findings file to compare against")
		fs.StringVar(&cfg.FailOn, "fail-on", "", "Exit non-zero on findings at/above severity")
	case "export":
		registerCommon()
		registerOutput("sarif,csv,jsonl,template")
		fs.StringVar(&cfg.FindingsFile, "findings", "", "Findings JSON file")
		fs.StringVar(&cfg.TemplatePath, "template", "", "Custom Go template file (format=template)")
		fs.StringVar(&cfg.BuiltinTemplate, "builtin", "", "Built-in template: asff, text-summary (format=template)")
	case "mcp":
		registerCommon()
		fs.StringVar(&cfg.RulesDir, "rules", "", "Directory with Tengo lint rules")
	case "version":
		// No flags.
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidConfig, cmd)
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Positional shortcuts: "show <class>" and "report <findings.json>".
	if rest := fs.Args(); len(rest) > 0 {
		switch cmd {
		case "show":
			if cfg.ClassID == "" {
				cfg.ClassID = rest[0]
			}
		case "report", "export":
			if cfg.FindingsFile == "" {
				cfg.FindingsFile = rest[0]
			}
		}
	}

	if err := cfg.validate(cmd); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(cmd string) error {
	if c.Severity != "" {
		if _, err := finding.Parse(c.Severity); err != nil {
			return fmt.Errorf("%w: severity %q (want one of %s)",
				ErrInvalidConfig, c.Severity, strings.Join(finding.TitleCaseStrings(), ", "))
		}
	}
	if c.FailOn != "" {
		if _, err := finding.Parse(c.FailOn); err != nil {
			return fmt.Errorf("%w: fail-on %q (want one of %s)",
				ErrInvalidConfig, c.FailOn, strings.Join(finding.TitleCaseStrings(), ", "))
		}
	}

	switch cmd {
	case "show":
		if c.ClassID == "" {
			return fmt.Errorf("%w: class required: use -class or a positional argument", ErrMissingRequired)
		}
	case "report", "export":
		if c.FindingsFile == "" {
			return fmt.Errorf("%w: findings file required: use -findings or a positional argument", ErrMissingRequired)
		}
		if cmd == "export" && c.Format == "template" && c.TemplatePath == "" && c.BuiltinTemplate == "" {
			return fmt.Errorf("%w: format=template needs -template or -builtin", ErrMissingRequired)
		}
	}
	return nil
}

// MinSeverity returns the parsed severity filter, or "" when unset.
// validate already rejected bad values, so parse errors cannot happen
// here.
func (c *Config) MinSeverity() finding.Severity {
	if c.Severity == "" {
		return ""
	}
	s, _ := finding.Parse(c.Severity)
	return s
}

// FailOnSeverity returns the parsed fail-on threshold, or "" when unset.
func (c *Config) FailOnSeverity() finding.Severity {
	if c.FailOn == "" {
		return ""
	}
	s, _ := finding.Parse(c.FailOn)
	return s
}
