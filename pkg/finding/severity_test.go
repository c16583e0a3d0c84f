package finding

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"critical", Critical, false},
		{"Critical", Critical, false},
		{"HIGH", High, false},
		{"medium", Medium, false},
		{"Low", Low, false},
		{"info", Info, false},
		{"", "", true},
		{"severe", "", true},
		{"critical ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSeverity) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidSeverity", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	t.Parallel()

	all := Severities()
	for i := 1; i < len(all); i++ {
		if all[i-1].Score() <= all[i].Score() {
			t.Errorf("Severities() not strictly descending at %q vs %q", all[i-1], all[i])
		}
	}
	if s := Severity("bogus").Score(); s != 0 {
		t.Errorf("unknown severity Score() = %d, want 0", s)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	if got := Critical.Title(); got != "Critical" {
		t.Errorf("Title() = %q", got)
	}
	if got := Severity("").Title(); got != "" {
		t.Errorf("empty Title() = %q", got)
	}
	titles := TitleCaseStrings()
	if len(titles) != 5 || titles[0] != "Critical" || titles[4] != "Info" {
		t.Errorf("TitleCaseStrings() = %v", titles)
	}
}

func TestExportMappings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sev       Severity
		sarif     string
		score     string
		sonarqube string
		gitlab    string
	}{
		{Critical, "error", "9.5", "CRITICAL", "Critical"},
		{High, "error", "8.0", "MAJOR", "High"},
		{Medium, "warning", "5.5", "MINOR", "Medium"},
		{Low, "note", "2.0", "INFO", "Low"},
		{Info, "note", "0.0", "INFO", "Info"},
	}

	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			t.Parallel()
			if got := tt.sev.ToSARIF(); got != tt.sarif {
				t.Errorf("ToSARIF() = %q, want %q", got, tt.sarif)
			}
			if got := tt.sev.ToSARIFScore(); got != tt.score {
				t.Errorf("ToSARIFScore() = %q, want %q", got, tt.score)
			}
			if got := tt.sev.ToSonarQube(); got != tt.sonarqube {
				t.Errorf("ToSonarQube() = %q, want %q", got, tt.sonarqube)
			}
			if got := tt.sev.ToGitLab(); got != tt.gitlab {
				t.Errorf("ToGitLab() = %q, want %q", got, tt.gitlab)
			}
		})
	}
}
