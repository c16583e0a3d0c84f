// Package mcpserver exposes the defect class catalog over the Model
// Context Protocol so AI assistants can consult it during code review:
// listing classes, fetching remediation guidance, and linting custom
// catalogs.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/defaults"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// Config holds MCP server configuration.
type Config struct {
	// CatalogDir is the directory containing class YAML files.
	// Empty means the embedded catalog.
	CatalogDir string

	// RulesDir is the directory containing Tengo lint rule scripts.
	RulesDir string
}

// Server wraps the MCP server with catalog functionality.
type Server struct {
	mcp    *mcp.Server
	config *Config
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// New creates a new MCP server with all tools and resources registered.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Server{config: cfg}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   defaults.ToolNameDisplay + " MCP Server",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()

	return s
}

// RunStdio runs the MCP server over stdio transport. This is the
// primary mode for IDE integrations (VS Code, Claude Desktop, Cursor).
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// loadCatalog loads the configured catalog. Each call reloads from
// disk so a running server picks up catalog edits.
func (s *Server) loadCatalog() (*catalog.Catalog, error) {
	return catalog.NewLoader(s.config.CatalogDir).Load()
}

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult creates an IsError CallToolResult so the LLM can see the
// error and self-correct rather than raising a protocol-level exception.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// boolPtr returns a pointer to b. Used for optional bool fields in the SDK.
func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}

const serverInstructions = `You are operating SolAudit, a knowledge base of recurring defect
classes in Solana smart contracts. It catalogs the vulnerability patterns auditors look for
(integer overflow, missing account verification, missing signer checks, arithmetic precision
loss, arbitrary cross-program invocation, account type confusion, unhandled errors), each
with a description, a vulnerable code example, and remediation guidance.

TYPICAL WORKFLOW:
1. list_classes to see what defect classes exist (optionally filtered by severity or tag)
2. get_class to pull the full description, example, and remediation for one class
3. When reviewing Rust/Anchor code, compare it against the class examples and cite the
   class ID in your findings

All tools are read-only local operations. No network requests are made.
Severity levels (descending): critical > high > medium > low > info.`
