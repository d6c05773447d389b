package rolecast

import "embed"

// Static assets served at /static/*.
//
//go:embed static
var StaticFS embed.FS
