package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// registerResources adds catalog resources to the MCP server.
// Per-class resources are registered from the catalog available at
// startup; tools always reload, so catalog edits still reach clients
// that call tools instead of reading resources.
func (s *Server) registerResources() {
	s.addVersionResource()
	s.addCatalogResource()
	s.addClassResources()
}

// ═══════════════════════════════════════════════════════════════════════════
// solaudit://version — Server capabilities and version
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addVersionResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "solaudit://version",
			Name:        defaults.ToolNameDisplay + " Version",
			Description: "Server version, capabilities, and tool inventory.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			info := map[string]any{
				"name":    defaults.ToolNameDisplay,
				"version": defaults.Version,
				"tools":   []string{"list_classes", "get_class", "lint_catalog"},
				"severity_levels": []string{
					"critical", "high", "medium", "low", "info",
				},
			}
			data, _ := jsonutil.MarshalIndent(info, "", "  ")
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: "solaudit://version", MIMEType: "application/json", Text: string(data)},
				},
			}, nil
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// solaudit://classes — Catalog index
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addCatalogResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "solaudit://classes",
			Name:        "Defect Class Index",
			Description: "Index of all defect classes with severities and tags.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			cat, err := s.loadCatalog()
			if err != nil {
				return nil, fmt.Errorf("loading catalog: %w", err)
			}

			classes := cat.Classes()
			stats := catalog.GetStats(classes)
			index := map[string]any{
				"total_classes": stats.TotalClasses,
				"by_severity":   stats.BySeverity,
				"classes":       classes,
			}
			data, err := jsonutil.MarshalIndent(index, "", "  ")
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: "solaudit://classes", MIMEType: "application/json", Text: string(data)},
				},
			}, nil
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// solaudit://classes/<id> — One class rendered as Markdown
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addClassResources() {
	cat, err := s.loadCatalog()
	if err != nil {
		// A broken catalog still gets tools registered; lint_catalog
		// reports the details.
		return
	}

	for _, class := range cat.Classes() {
		class := class
		uri := "solaudit://classes/" + class.ID
		s.mcp.AddResource(
			&mcp.Resource{
				URI:         uri,
				Name:        class.Name,
				Description: fmt.Sprintf("%s (%s): full entry with example and remediation, rendered as Markdown.", class.Name, class.Severity),
				MIMEType:    "text/markdown",
			},
			func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				md, err := renderClassMarkdown(class)
				if err != nil {
					return nil, fmt.Errorf("rendering %s: %w", class.ID, err)
				}
				return &mcp.ReadResourceResult{
					Contents: []*mcp.ResourceContents{
						{URI: uri, MIMEType: "text/markdown", Text: md},
					},
				}, nil
			},
		)
	}
}
