package report

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// LoadFindings reads a findings file: a JSON array of finding objects
// as produced by SaveFindings or written by hand during an audit.
// Missing ids, statuses and timestamps are filled in so hand-written
// files stay terse.
func LoadFindings(path string) ([]*finding.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings file: %w", err)
	}

	var findings []*finding.Finding
	if err := jsonutil.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("parse findings file %s: %w", path, err)
	}

	for _, f := range findings {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.Status == "" {
			f.Status = finding.StatusOpen
		}
		if !f.Status.IsValid() {
			return nil, fmt.Errorf("finding %s: invalid status %q", f.ID, f.Status)
		}
		if f.FoundAt.IsZero() {
			f.FoundAt = time.Now().UTC()
		}
	}
	return findings, nil
}

// SaveFindings writes findings as an indented JSON array.
func SaveFindings(path string, findings []*finding.Finding) error {
	data, err := jsonutil.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write findings file: %w", err)
	}
	return nil
}
