package assets

import "embed"

// AssetsFS holds the static files served under /assets.
// css/output.css is generated from css/input.css by "briefctl gen".
//
//go:embed css js img
var AssetsFS embed.FS
