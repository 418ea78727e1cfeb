// Package assets embeds the default game content.
package assets

import _ "embed"

// Catalog is the built-in catalog used when no content file is configured.
//
//go:embed catalog.yaml
var Catalog []byte
