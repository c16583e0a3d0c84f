// Package knowledge bundles the built-in Solana defect class catalog
// into the binary. Each class lives in its own YAML file under
// classes/ and is loaded through pkg/catalog.
package knowledge

import "embed"

// FS holds the embedded defect class definitions.
//
//go:embed classes/*.yaml
var FS embed.FS
