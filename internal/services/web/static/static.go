// Package static embeds the portal stylesheet and script.
package static

import "embed"

// FS holds the assets served under /static/.
//
//go:embed *.css *.js
var FS embed.FS
