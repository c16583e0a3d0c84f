package export

import (
	"io"
	"sync"

	"github.com/solaudit/solaudit/pkg/catalog"
	"github.com/solaudit/solaudit/pkg/finding"
	"github.com/solaudit/solaudit/pkg/jsonutil"
)

// Compile-time interface check.
var _ Writer = (*JSONLWriter)(nil)

// jsonlRecord is one exported line: the finding plus the class fields
// consumers need without a catalog of their own.
type jsonlRecord struct {
	*finding.Finding
	ClassName   string           `json:"class_name"`
	Severity    finding.Severity `json:"effective_severity"`
	CWE         []int            `json:"cwe,omitempty"`
	Fingerprint string           `json:"fingerprint"`
}

// JSONLWriter writes findings as newline-delimited JSON, one object
// per line, suitable for streaming into downstream pipelines.
type JSONLWriter struct {
	enc     *jsonutil.Encoder
	mu      sync.Mutex
	catalog *catalog.Catalog
}

// NewJSONLWriter creates a JSONL writer backed by w.
func NewJSONLWriter(w io.Writer, cat *catalog.Catalog) *JSONLWriter {
	return &JSONLWriter{enc: jsonutil.NewStreamEncoder(w), catalog: cat}
}

// Write emits one finding as a JSON line.
func (j *JSONLWriter) Write(f *finding.Finding) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	class, err := j.catalog.Get(f.ClassID)
	if err != nil {
		return err
	}
	return j.enc.Encode(jsonlRecord{
		Finding:     f,
		ClassName:   class.Name,
		Severity:    f.EffectiveSeverity(class.Severity),
		CWE:         class.CWE,
		Fingerprint: f.Fingerprint(),
	})
}

// Flush is a no-op; lines are written as they come.
func (j *JSONLWriter) Flush() error { return nil }

// Close is a no-op; the writer holds no buffered state.
func (j *JSONLWriter) Close() error { return nil }
