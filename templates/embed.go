// Package templates embeds the bundled output templates for
// distribution.
//
// This ensures templates are available regardless of installation
// method (Homebrew, Docker, or manual download). The CLI falls back to
// these embedded templates when no on-disk template is given.
//
// Usage:
//
//	fs := templates.FS
//	data, _ := fs.ReadFile("output/markdown.tmpl")
package templates

import "embed"

// FS contains the bundled catalog output templates. Subdirectory
// structure matches the on-disk templates/ layout minus this Go file.
//
//go:embed output/*.tmpl
var FS embed.FS
