package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
)

// Compile-time interface check.
var _ Writer = (*CSVWriter)(nil)

// csvHeader is the column layout of CSV exports.
var csvHeader = []string{
	"id", "class", "class_name", "severity", "program",
	"file", "line", "status", "auditor", "notes",
}

// CSVWriter writes findings as CSV rows, one per finding, with a
// header row written before the first record.
type CSVWriter struct {
	cw      *csv.Writer
	mu      sync.Mutex
	catalog *catalog.Catalog
	wrote   bool
}

// NewCSVWriter creates a CSV writer backed by w.
func NewCSVWriter(w io.Writer, cat *catalog.Catalog) *CSVWriter {
	return &CSVWriter{cw: csv.NewWriter(w), catalog: cat}
}

// Write appends one finding row, emitting the header first if needed.
func (c *CSVWriter) Write(f *finding.Finding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, err := c.catalog.Get(f.ClassID)
	if err != nil {
		return err
	}

	if !c.wrote {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
		c.wrote = true
	}

	return c.cw.Write([]string{
		f.ID,
		f.ClassID,
		class.Name,
		f.EffectiveSeverity(class.Severity).String(),
		f.Program,
		f.File,
		strconv.Itoa(f.Line),
		string(f.Status),
		f.Auditor,
		f.Notes,
	})
}

// Flush writes any buffered rows to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cw.Flush()
	return c.cw.Error()
}

// Close flushes remaining rows. An export with zero findings still
// gets a header so consumers can rely on the column layout.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.wrote {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
		c.wrote = true
	}
	c.cw.Flush()
	return c.cw.Error()
}
