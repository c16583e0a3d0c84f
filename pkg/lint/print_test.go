package lint

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPrintSummaryWarnings(t *testing.T) {
	result := &Result{
		TotalClasses: 1,
		Valid:        true,
		Warnings:     []string{"x: no references"},
	}

	out := captureStdout(t, func() { PrintSummary(result, true) })
	if !strings.Contains(out, "Warnings: 1") {
		t.Errorf("verbose summary missing warning count:\n%s", out)
	}
	if !strings.Contains(out, "x: no references") {
		t.Errorf("verbose summary does not list warning items:\n%s", out)
	}

	out = captureStdout(t, func() { PrintSummary(result, false) })
	if !strings.Contains(out, "Warnings: 1") {
		t.Errorf("summary missing warning count:\n%s", out)
	}
	if strings.Contains(out, "x: no references") {
		t.Errorf("non-verbose summary lists warning items:\n%s", out)
	}
}

func TestPrintSummaryErrorGroups(t *testing.T) {
	result := &Result{
		TotalClasses:  2,
		DuplicateIDs:  []string{"duplicate id 'x'"},
		MissingFields: []string{"y: missing required field 'name'"},
	}

	out := captureStdout(t, func() { PrintSummary(result, false) })
	for _, want := range []string{"Duplicate ids: 1", "duplicate id 'x'", "Missing fields: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
