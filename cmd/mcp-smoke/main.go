// Command mcp-smoke runs end-to-end smoke scenarios against the
// solaudit MCP server over stdio. It spawns the solaudit binary,
// connects as an MCP client, and exercises every tool and resource the
// way an AI assistant would.
//
// Usage:
//
//	go build -o solaudit ./cmd/cli
//	go run ./cmd/mcp-smoke -binary ./solaudit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// scenario is a named test function that runs against a live MCP session.
type scenario struct {
	name string
	fn   func(ctx context.Context, s *mcp.ClientSession) error
}

// scenarioResult tracks the outcome of a single scenario.
type scenarioResult struct {
	name   string
	passed bool
	err    error
}

func main() {
	var (
		binary  = flag.String("binary", "./solaudit", "Path to the solaudit binary")
		timeout = flag.Duration("timeout", 60*time.Second, "Overall timeout")
		runOnly = flag.String("scenario", "", "Run only this named scenario")
	)
	flag.Parse()
	log.SetFlags(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd := exec.Command(*binary, "mcp", "-silent")
	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-smoke", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		log.Fatalf("FATAL connect: %v", err)
	}
	defer session.Close()

	var results []scenarioResult
	for _, sc := range allScenarios() {
		if *runOnly != "" && sc.name != *runOnly {
			continue
		}
		err := sc.fn(ctx, session)
		results = append(results, scenarioResult{name: sc.name, passed: err == nil, err: err})
		if err == nil {
			fmt.Printf("PASS  %s\n", sc.name)
		} else {
			fmt.Printf("FAIL  %s: %v\n", sc.name, err)
		}
	}

	failed := 0
	for _, r := range results {
		if !r.passed {
			failed++
		}
	}
	fmt.Printf("\n%d/%d scenarios passed\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

func allScenarios() []scenario {
	return []scenario{
		{"list_tools", scenarioListTools},
		{"list_classes", scenarioListClasses},
		{"get_class", scenarioGetClass},
		{"get_class_unknown", scenarioGetClassUnknown},
		{"lint_catalog", scenarioLintCatalog},
		{"read_class_resource", scenarioReadClassResource},
	}
}

func callTool(ctx context.Context, s *mcp.ClientSession, name, args string) (string, error) {
	result, err := s.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: json.RawMessage(args),
	})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("%s returned no content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("%s content is %T, want text", name, result.Content[0])
	}
	if result.IsError {
		return tc.Text, fmt.Errorf("%s returned error: %s", name, tc.Text)
	}
	return tc.Text, nil
}

func scenarioListTools(ctx context.Context, s *mcp.ClientSession) error {
	result, err := s.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return err
	}
	want := map[string]bool{"list_classes": false, "get_class": false, "lint_catalog": false}
	for _, tool := range result.Tools {
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			return fmt.Errorf("tool %s not registered", name)
		}
	}
	return nil
}

func scenarioListClasses(ctx context.Context, s *mcp.ClientSession) error {
	text, err := callTool(ctx, s, "list_classes", `{}`)
	if err != nil {
		return err
	}
	var summary struct {
		TotalClasses int `json:"total_classes"`
	}
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if summary.TotalClasses == 0 {
		return fmt.Errorf("catalog is empty")
	}
	return nil
}

func scenarioGetClass(ctx context.Context, s *mcp.ClientSession) error {
	text, err := callTool(ctx, s, "get_class", `{"class": "integer-overflow"}`)
	if err != nil {
		return err
	}
	for _, field := range []string{`"description"`, `"remediation"`, `"example"`} {
		if !strings.Contains(text, field) {
			return fmt.Errorf("entry missing %s", field)
		}
	}
	return nil
}

func scenarioGetClassUnknown(ctx context.Context, s *mcp.ClientSession) error {
	text, err := callTool(ctx, s, "get_class", `{"class": "reentrancy"}`)
	if err == nil {
		return fmt.Errorf("unknown class did not error")
	}
	// The error text should steer the model toward valid IDs.
	if !strings.Contains(text, "integer-overflow") {
		return fmt.Errorf("error does not list known classes: %s", text)
	}
	return nil
}

func scenarioLintCatalog(ctx context.Context, s *mcp.ClientSession) error {
	text, err := callTool(ctx, s, "lint_catalog", `{}`)
	if err != nil {
		return err
	}
	var result struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if !result.Valid {
		return fmt.Errorf("embedded catalog failed lint")
	}
	return nil
}

func scenarioReadClassResource(ctx context.Context, s *mcp.ClientSession) error {
	result, err := s.ReadResource(ctx, &mcp.ReadResourceParams{
		URI: "solaudit://classes/integer-overflow",
	})
	if err != nil {
		return err
	}
	if len(result.Contents) == 0 {
		return fmt.Errorf("resource has no contents")
	}
	if !strings.Contains(result.Contents[0].Text, "### Remediation") {
		return fmt.Errorf("rendered class missing remediation section")
	}
	return nil
}
