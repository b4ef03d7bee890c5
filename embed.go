package briefing

import "embed"

// ContentFS holds the markdown pages served under /legal.
// CONTENT_PATH points the server at a directory instead.
//
//go:embed content
var ContentFS embed.FS
