// Package normalisers provides implementations of the Normaliser interface
// for the formats a tutorial can be built from. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// Normalisers are registered with the ingest dispatcher at startup.
package normalisers

import (
	"path"
	"strings"
)

// TitleFromName derives a human-readable title from a file or page name.
func TitleFromName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}
