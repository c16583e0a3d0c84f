package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/lint"
	"github.com/solaudit/solaudit/pkg/render"
)

// registerTools adds all catalog tools to the MCP server.
func (s *Server) registerTools() {
	s.addListClassesTool()
	s.addGetClassTool()
	s.addLintCatalogTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// list_classes — Browse the defect class catalog
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addListClassesTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "list_classes",
			Title: "List Defect Classes",
			Description: `Inventory tool. Browse the Solana defect class catalog without reading full entries.

USE THIS TOOL WHEN:
• The user asks "what vulnerability classes do you know about?"
• You are starting a review and want to see what to look for
• You want counts by severity or tag before fetching individual classes

DO NOT USE THIS TOOL WHEN:
• You already know the class ID. Use 'get_class' instead for the full entry.

This is a READ-ONLY local operation. Instant results.

EXAMPLE INPUTS:
• See everything: {} (no arguments)
• Only fund-loss classes: {"severity": "critical"}
• Arithmetic classes: {"tag": "arithmetic"}

SEVERITY (descending): critical > high > medium > low > info

Returns: total count, per-severity breakdown, and an id/name/severity summary per class.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"severity": map[string]any{
						"type":        "string",
						"description": "Filter by minimum severity. Only classes at this severity or higher are returned.",
						"enum":        []string{"critical", "high", "medium", "low", "info"},
					},
					"tag": map[string]any{
						"type":        "string",
						"description": "Filter by tag (e.g. arithmetic, accounts, cpi). Leave empty for all.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "List Defect Classes",
			},
		},
		s.handleListClasses,
	)
}

type listClassesArgs struct {
	Severity string `json:"severity"`
	Tag      string `json:"tag"`
}

type classSummary struct {
	TotalClasses  int                      `json:"total_classes"`
	BySeverity    map[finding.Severity]int `json:"by_severity"`
	FilterApplied string                   `json:"filter_applied,omitempty"`
	Classes       []classEntry             `json:"classes"`
}

type classEntry struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Severity finding.Severity `json:"severity"`
	Tags     []string         `json:"tags,omitempty"`
}

func (s *Server) handleListClasses(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listClassesArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'severity' (string) and 'tag' (string).", err)), nil
	}

	cat, err := s.loadCatalog()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load catalog: %v. Verify the catalog directory contains valid class YAML files.", err)), nil
	}

	classes := catalog.Filter(cat.Classes(), args.Severity, args.Tag)
	stats := catalog.GetStats(classes)

	summary := classSummary{
		TotalClasses: stats.TotalClasses,
		BySeverity:   stats.BySeverity,
		Classes:      make([]classEntry, 0, len(classes)),
	}

	if args.Severity != "" || args.Tag != "" {
		parts := make([]string, 0, 2)
		if args.Severity != "" {
			parts = append(parts, "severity>="+args.Severity)
		}
		if args.Tag != "" {
			parts = append(parts, "tag="+args.Tag)
		}
		summary.FilterApplied = strings.Join(parts, ", ")
	}

	for _, c := range classes {
		summary.Classes = append(summary.Classes, classEntry{
			ID:       c.ID,
			Name:     c.Name,
			Severity: c.Severity,
			Tags:     c.Tags,
		})
	}

	return jsonResult(summary)
}

// ═══════════════════════════════════════════════════════════════════════════
// get_class — Full entry for one defect class
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGetClassTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_class",
			Title: "Get Defect Class",
			Description: `Fetch the complete catalog entry for one defect class: description, vulnerable
code example, and remediation guidance.

USE THIS TOOL WHEN:
• You spotted a suspicious pattern and want the canonical description to compare against
• The user asks "how do I fix an integer overflow in my program?"
• You need the remediation text to include in a review comment

DO NOT USE THIS TOOL WHEN:
• You don't know the class ID yet. Use 'list_classes' first.

EXAMPLE INPUTS:
• {"class": "integer-overflow"}
• {"class": "arbitrary-cpi"}

Returns: the full class entry as JSON, including the Rust example and remediation.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"class": map[string]any{
						"type":        "string",
						"description": "Class ID, e.g. integer-overflow or missing-signer-check.",
					},
				},
				"required": []string{"class"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Get Defect Class",
			},
		},
		s.handleGetClass,
	)
}

type getClassArgs struct {
	Class string `json:"class"`
}

func (s *Server) handleGetClass(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getClassArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'class' (string).", err)), nil
	}
	if args.Class == "" {
		return errorResult("class is required. Call list_classes to see available class IDs."), nil
	}

	cat, err := s.loadCatalog()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load catalog: %v", err)), nil
	}

	class, err := cat.Get(args.Class)
	if err != nil {
		return errorResult(fmt.Sprintf("unknown class %q. Known classes: %s",
			args.Class, strings.Join(cat.IDs(), ", "))), nil
	}

	return jsonResult(class)
}

// ═══════════════════════════════════════════════════════════════════════════
// lint_catalog — Validate a class catalog
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addLintCatalogTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "lint_catalog",
			Title: "Lint Class Catalog",
			Description: `Validate the configured class catalog: required fields present, severities
recognized, no duplicate IDs, code fences balanced. Runs any configured Tengo lint rules.

USE THIS TOOL WHEN:
• The user edited or authored catalog YAML files and wants them checked
• A render or list operation reported a loading error and you want details

This is a READ-ONLY local operation on the catalog files.

EXAMPLE INPUTS:
• {} (no arguments; lints the configured catalog)

Returns: error and warning lists plus a validity verdict.`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Lint Class Catalog",
			},
		},
		s.handleLintCatalog,
	)
}

func (s *Server) handleLintCatalog(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classes, err := catalog.NewLoader(s.config.CatalogDir).LoadRaw()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to read catalog: %v", err)), nil
	}

	var rules []*lint.ScriptRule
	var loadErrs []error
	if s.config.RulesDir != "" {
		rules, loadErrs = lint.LoadScriptDir(s.config.RulesDir)
	}

	result := lint.Run(classes, rules)
	// Broken rule files don't stop the built-in checks or the other
	// rules, but they do fail the verdict.
	for _, e := range loadErrs {
		result.Errors = append(result.Errors, e.Error())
		result.Valid = false
	}

	return jsonResult(result)
}

// renderClassMarkdown renders one class as a standalone Markdown
// document, shared by the class resources.
func renderClassMarkdown(class catalog.Class) (string, error) {
	r, err := render.New(render.Config{
		Format: render.FormatMarkdown,
		Title:  class.Name,
	})
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, []catalog.Class{class}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
