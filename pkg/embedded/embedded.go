// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// CommentaryFile is the name of the commentary document inside Files.
const CommentaryFile = "commentary.yaml"

// Files contains all files embedded in the Go binary:
// - commentary.yaml - fixed prose for the overview and each tracked index
//
//go:embed commentary.yaml
var Files embed.FS
