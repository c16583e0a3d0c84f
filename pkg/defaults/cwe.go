// CWE reference data for the defect class catalog. This file is the
// SINGLE SOURCE OF TRUTH for CWE descriptions used by the SARIF
// exporter and the document renderer.
package defaults

import "fmt"

// CWEDescriptions maps the CWE ids referenced by the bundled defect
// classes to their official titles.
var CWEDescriptions = map[int]string{
	190: "Integer Overflow or Wraparound",
	191: "Integer Underflow (Wrap or Wraparound)",
	252: "Unchecked Return Value",
	345: "Insufficient Verification of Data Authenticity",
	285: "Improper Authorization",
	287: "Improper Authentication",
	436: "Interpretation Conflict",
	682: "Incorrect Calculation",
	843: "Access of Resource Using Incompatible Type ('Type Confusion')",
	862: "Missing Authorization",
	940: "Improper Verification of Source of a Communication Channel",
}

// CWEURL returns the MITRE definition URL for a CWE id.
func CWEURL(id int) string {
	return fmt.Sprintf("https://cwe.mitre.org/data/definitions/%d.html", id)
}

// CWEName returns the official title for a CWE id, or "Unknown" when
// the id is not in the bundled reference table.
func CWEName(id int) string {
	if name, ok := CWEDescriptions[id]; ok {
		return name
	}
	return "Unknown"
}
