// Package catalog loads and queries the Solana defect class catalog.
// The default source is the knowledge base embedded in the binary;
// an on-disk directory can override it for local catalog development.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solaudit/solaudit/knowledge"
	"github.com/solaudit/solaudit/pkg/finding"
)

// Catalog is an immutable set of defect classes keyed by id.
type Catalog struct {
	classes []Class
	byID    map[string]int
}

// Loader reads class definitions from YAML files.
type Loader struct {
	dir string
}

// NewLoader creates a loader for an on-disk catalog directory.
// An empty dir means the embedded knowledge base.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadRaw reads class definitions without catalog-level checks.
// Duplicate ids survive, which lets the linter report them instead of
// failing the load.
func (l *Loader) LoadRaw() ([]Class, error) {
	if l.dir == "" {
		return loadEmbedded()
	}
	return loadDir(l.dir)
}

// Load reads every class definition from the configured source.
// Classes are ordered by descending severity, then by id, so output
// is stable across runs.
func (l *Loader) Load() (*Catalog, error) {
	classes, err := l.LoadRaw()
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, finding.ErrEmptyCatalog
	}

	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Severity.Score() != classes[j].Severity.Score() {
			return classes[i].Severity.Score() > classes[j].Severity.Score()
		}
		return classes[i].ID < classes[j].ID
	})

	byID := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("class %q: %w", c.ID, finding.ErrDuplicateClass)
		}
		byID[c.ID] = i
	}

	return &Catalog{classes: classes, byID: byID}, nil
}

// LoadEmbedded loads the catalog bundled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return NewLoader("").Load()
}

func loadEmbedded() ([]Class, error) {
	entries, err := fs.ReadDir(knowledge.FS, "classes")
	if err != nil {
		return nil, fmt.Errorf("reading embedded classes: %w", err)
	}

	classes := make([]Class, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isClassFile(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(knowledge.FS, "classes/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded %s: %w", entry.Name(), err)
		}
		class, err := parseClass(data, entry.Name())
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func loadDir(dir string) ([]Class, error) {
	// Prevent path traversal via crafted directory values
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir %s: %w", dir, err)
	}

	var classes []Class
	for _, entry := range entries {
		if entry.IsDir() || !isClassFile(entry.Name()) {
			continue
		}
		path := filepath.Join(absDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		class, err := parseClass(data, entry.Name())
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func parseClass(data []byte, name string) (Class, error) {
	var class Class
	if err := yaml.Unmarshal(data, &class); err != nil {
		return Class{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	if class.ID == "" {
		return Class{}, fmt.Errorf("parsing %s: class id is required", name)
	}
	// Normalize: default the example language so renderers always have
	// a fence info string.
	if class.Example.Source != "" && class.Example.Language == "" {
		class.Example.Language = "rust"
	}
	return class, nil
}

func isClassFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Classes returns all classes in catalog order.
func (c *Catalog) Classes() []Class {
	out := make([]Class, len(c.classes))
	copy(out, c.classes)
	return out
}

// Get returns the class with the given id.
func (c *Catalog) Get(id string) (Class, error) {
	i, ok := c.byID[id]
	if !ok {
		return Class{}, fmt.Errorf("class %q: %w", id, finding.ErrUnknownClass)
	}
	return c.classes[i], nil
}

// Has reports whether the catalog contains the given id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns all class ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.classes))
	for i, cl := range c.classes {
		ids[i] = cl.ID
	}
	return ids
}

// Len returns the number of classes in the catalog.
func (c *Catalog) Len() int {
	return len(c.classes)
}

// Filter filters classes by minimum severity and tag.
func Filter(classes []Class, severity, tag string) []Class {
	if severity == "" && tag == "" {
		return classes
	}

	minScore := 0
	if severity != "" {
		sev, err := finding.Parse(severity)
		if err != nil {
			// Invalid severity - return empty slice instead of all classes
			return []Class{}
		}
		minScore = sev.Score()
	}

	var filtered []Class
	for _, c := range classes {
		if severity != "" && c.Severity.Score() < minScore {
			continue
		}
		if tag != "" && !c.HasTag(tag) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// GetStats returns statistics about loaded classes.
func GetStats(classes []Class) LoadStats {
	stats := LoadStats{
		TotalClasses: len(classes),
		BySeverity:   make(map[finding.Severity]int),
		ByTag:        make(map[string]int),
	}

	for _, c := range classes {
		stats.BySeverity[c.Severity]++
		for _, t := range c.Tags {
			stats.ByTag[t]++
		}
	}

	stats.TagsUsed = len(stats.ByTag)
	return stats
}
