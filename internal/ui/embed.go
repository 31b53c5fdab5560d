// Package ui carries the embedded dashboard frontend.
package ui

import "embed"

//go:embed dist
var DistFS embed.FS
