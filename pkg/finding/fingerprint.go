package finding

import (
	"fmt"
	"strconv"

	"github.com/spaolacci/murmur3"
)

// Fingerprint returns a stable hash of the finding's identity fields.
// Two findings with the same class, program, file and line fingerprint
// identically, which is what report comparison and export dedup key on.
// Notes, status and auditor changes do not alter the fingerprint.
func (f *Finding) Fingerprint() string {
	h := murmur3.New64()
	h.Write([]byte(f.ClassID))
	h.Write([]byte{0})
	h.Write([]byte(f.Program))
	h.Write([]byte{0})
	h.Write([]byte(f.File))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(f.Line)))
	return fmt.Sprintf("%016x", h.Sum64())
}
