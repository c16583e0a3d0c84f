package catalog

import (
	"strings"

	"github.com/solaudit/solaudit/pkg/finding"
)

// Class describes one Solana smart contract defect class.
// This is the SINGLE SOURCE OF TRUTH for class structure.
// Both the loader (embedded and on-disk) and the renderer use this struct.
type Class struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Severity    finding.Severity `yaml:"severity" json:"severity"`
	Description string           `yaml:"description" json:"description"`
	Example     Example          `yaml:"example" json:"example"`
	Remediation string           `yaml:"remediation" json:"remediation"`
	CWE         []int            `yaml:"cwe,omitempty" json:"cwe,omitempty"`
	Tags        []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
	References  []string         `yaml:"references,omitempty" json:"references,omitempty"`
}

// Example is an illustrative vulnerable code excerpt for a class.
type Example struct {
	Language string `yaml:"language" json:"language"`
	Caption  string `yaml:"caption,omitempty" json:"caption,omitempty"`
	Source   string `yaml:"source" json:"source"`
}

// HasTag reports whether the class carries the given tag
// (case-insensitive).
func (c *Class) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Statistics for catalog loading
type LoadStats struct {
	TotalClasses int
	BySeverity   map[finding.Severity]int
	TagsUsed     int
	ByTag        map[string]int
}
