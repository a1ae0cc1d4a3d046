// Package assets embeds static reference data shipped with the server.
package assets

import "embed"

// CatalogPath is the sport taxonomy file inside CatalogFS.
const CatalogPath = "sports_categories.yaml"

//go:embed sports_categories.yaml
var CatalogFS embed.FS
