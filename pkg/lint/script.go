package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/solaudit/solaudit/pkg/catalog"
)

// safeModules are the only Tengo stdlib modules available to rules.
// No file I/O, no network, no OS access.
var safeModules = stdlib.GetModuleMap("text", "fmt", "math", "times")

// ScriptRule wraps a Tengo script as a lint rule, so teams can keep
// house rules (naming conventions, mandatory tags) in .tengo files
// next to their catalog. The script must define: name (string),
// description (string), check (function). check receives a map of
// class fields and returns "" for a pass or a failure message.
type ScriptRule struct {
	name        string
	description string
	compiled    *tengo.Compiled // pre-compiled for Clone()-based execution
}

// Name returns the rule's declared name.
func (r *ScriptRule) Name() string { return r.name }

// Description returns the rule's declared description.
func (r *ScriptRule) Description() string { return r.description }

// LoadScriptRule compiles a .tengo file and extracts its metadata.
func LoadScriptRule(path string) (*ScriptRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule script %s: %w", path, err)
	}

	script := tengo.NewScript(data)
	script.SetImports(safeModules)
	script.SetMaxAllocs(10_000_000)

	compiled, err := script.Run()
	if err != nil {
		return nil, fmt.Errorf("compile rule script %s: %w", path, err)
	}

	nameVar := compiled.Get("name")
	if nameVar.IsUndefined() {
		return nil, fmt.Errorf("rule script %s: missing 'name' variable", path)
	}
	descVar := compiled.Get("description")
	if descVar.IsUndefined() {
		return nil, fmt.Errorf("rule script %s: missing 'description' variable", path)
	}
	if compiled.Get("check").IsUndefined() {
		return nil, fmt.Errorf("rule script %s: missing 'check' function", path)
	}

	rule := &ScriptRule{
		name:        nameVar.String(),
		description: descVar.String(),
	}

	// Pre-compile the check wrapper so Check() only needs Clone().
	// Compile() rather than Run() so check isn't invoked at load time.
	wrapper := fmt.Sprintf("%s\n__result__ := check(__class__)\n", string(data))
	ws := tengo.NewScript([]byte(wrapper))
	ws.SetImports(safeModules)
	ws.SetMaxAllocs(10_000_000)
	_ = ws.Add("__class__", map[string]interface{}{})

	rule.compiled, err = ws.Compile()
	if err != nil {
		return nil, fmt.Errorf("precompile rule %s: %w", rule.name, err)
	}
	return rule, nil
}

// Check runs the rule against a class. Returns the failure message, or
// "" when the class passes. A panicking or erroring script fails the
// rule rather than the process.
func (r *ScriptRule) Check(c *catalog.Class) (msg string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			msg = ""
			err = fmt.Errorf("rule %s panicked: %v", r.name, rec)
		}
	}()

	compiled := r.compiled.Clone()
	if err := compiled.Set("__class__", classObject(c)); err != nil {
		return "", fmt.Errorf("rule %s: set input: %w", r.name, err)
	}
	if err := compiled.Run(); err != nil {
		return "", fmt.Errorf("rule %s: %w", r.name, err)
	}

	result := compiled.Get("__result__")
	if result.IsUndefined() {
		return "", nil
	}
	out := result.String()
	// Tengo renders non-string results with quotes; a bare false or
	// empty string both mean pass.
	if out == "" || out == "false" || out == `""` {
		return "", nil
	}
	return out, nil
}

// classObject flattens a class into the map shape scripts receive.
func classObject(c *catalog.Class) map[string]interface{} {
	tags := make([]interface{}, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = t
	}
	cwes := make([]interface{}, len(c.CWE))
	for i, id := range c.CWE {
		cwes[i] = id
	}
	refs := make([]interface{}, len(c.References))
	for i, ref := range c.References {
		refs[i] = ref
	}
	return map[string]interface{}{
		"id":          c.ID,
		"name":        c.Name,
		"severity":    c.Severity.String(),
		"description": c.Description,
		"remediation": c.Remediation,
		"example":     c.Example.Source,
		"caption":     c.Example.Caption,
		"language":    c.Example.Language,
		"tags":        tags,
		"cwe":         cwes,
		"references":  refs,
	}
}

// LoadScriptDir loads all .tengo rules from a directory. Files that
// fail to load are returned as errors but don't prevent loading others.
func LoadScriptDir(dir string) ([]*ScriptRule, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read rules dir %s: %w", dir, err)}
	}

	var rules []*ScriptRule
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tengo") {
			continue
		}
		rule, err := LoadScriptRule(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errs
}
