// Package connectors provides implementations of the Connector interface
// for the places a tutorial source can live. Each connector knows how to
// fetch raw bytes for one source kind (web page, local file, GitHub file).
//
// Connectors are registered with the ingest dispatcher at startup.
package connectors

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// extMIMETypes covers extensions missing from or inconsistent in the
// platform MIME registry.
var extMIMETypes = map[string]string{
	".md": "text/markdown", ".markdown": "text/markdown", ".mdx": "text/markdown",
	".txt": "text/plain", ".rst": "text/plain", ".adoc": "text/plain",
	".html": "text/html", ".htm": "text/html", ".xhtml": "application/xhtml+xml",
	".pdf": "application/pdf",
	".go": "text/x-go", ".py": "text/x-python", ".rs": "text/x-rust",
	".java": "text/x-java", ".c": "text/x-c", ".h": "text/x-c",
	".sh": "text/x-shellscript", ".bash": "text/x-shellscript",
	".js": "text/javascript", ".ts": "text/typescript",
	".yaml": "text/yaml", ".yml": "text/yaml", ".toml": "text/toml",
	".json": "application/json", ".xml": "application/xml", ".csv": "text/csv",
}

// DetectMIMEType returns the MIME type of a named document without
// parameters. The extension wins; content sniffing is the fallback.
func DetectMIMEType(name string, content []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if mt, ok := extMIMETypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return BaseMIMEType(mt)
	}
	return BaseMIMEType(http.DetectContentType(content))
}

// BaseMIMEType strips parameters such as charset from a Content-Type value.
func BaseMIMEType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
