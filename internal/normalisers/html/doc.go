// Package html provides a Normaliser implementation for HTML pages.
// It isolates the main content of a page with goquery, drops navigation
// and other noise, and converts what remains to Markdown.
package html
