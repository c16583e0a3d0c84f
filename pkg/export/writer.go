// Package export writes recorded findings in interchange formats:
// SARIF 2.1.0 for code scanning dashboards, CSV for spreadsheets, and
// JSONL for downstream pipelines.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
)

// Writer is the streaming interface all export formats implement.
// Findings are written one at a time; buffering formats (SARIF) emit
// their document on Close.
type Writer interface {
	Write(f *finding.Finding) error
	Flush() error
	Close() error
}

// Formats returns the supported export format names.
func Formats() []string {
	return []string{"sarif", "csv", "jsonl"}
}

// New creates a writer for the named format. The catalog supplies
// class metadata (rule descriptions, severities, CWE tags).
func New(format string, w io.Writer, cat *catalog.Catalog) (Writer, error) {
	switch strings.ToLower(format) {
	case "sarif":
		return NewSARIFWriter(w, cat, SARIFOptions{}), nil
	case "csv":
		return NewCSVWriter(w, cat), nil
	case "jsonl":
		return NewJSONLWriter(w, cat), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (available: %s)",
			format, strings.Join(Formats(), ", "))
	}
}

// WriteAll streams findings through a writer and closes it.
func WriteAll(w Writer, findings []*finding.Finding) error {
	for _, f := range findings {
		if err := w.Write(f); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return w.Close()
}
