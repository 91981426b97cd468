package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

const sample = `# Linked lists

A **list** is a chain of *nodes*. See [the docs](https://go.dev).

- insert
- delete
  - nested

1. walk
2. stop

> Remember the tail.

` + "```go\nfor n := head; n != nil; n = n.next {}\n```" + `

| op | cost |
|----|------|
| push | O(1) |

---

![a node diagram](image_0123abcd_pro_0.png)
`

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "image_0123abcd_pro_0.png"), 64, 32)

	out, err := New().Render(sample, "Linked lists", domain.StylePro, dir)
	require.NoError(t, err)

	assert.Equal(t, "Linked lists", out.Title)
	assert.Equal(t, domain.StylePro, out.Style)
	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF-")))

	assert.Contains(t, out.HTML, `<body class="theme-pro">`)
	assert.Contains(t, out.HTML, "<title>Linked lists</title>")
	assert.Contains(t, out.HTML, "<strong>list</strong>")
	assert.Contains(t, out.HTML, `<img src="image_0123abcd_pro_0.png" alt="a node diagram"`)
	assert.Contains(t, out.HTML, "<table>")
	assert.Contains(t, out.HTML, "#2563eb")
	assert.NotContains(t, out.HTML, `class="doc-title"`, "document already opens with the title")
}

func TestRenderer_UnknownStyleFallsBack(t *testing.T) {
	out, err := New().Render("plain text", "Notes", domain.Style("comic"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStyle, out.Style)
	assert.Contains(t, out.HTML, `<h1 class="doc-title">Notes</h1>`)
}

func TestHTMLRenderer_Sanitizes(t *testing.T) {
	body, err := NewHTMLRenderer().Body("hello <script>alert(1)</script>\n\n<a href=\"javascript:x()\">x</a>\n\n## Heading")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script")
	assert.NotContains(t, body, "javascript:")
	assert.Contains(t, body, `<h2 id="heading">Heading</h2>`)
}

func TestHTMLRenderer_EscapesTitle(t *testing.T) {
	page, err := NewHTMLRenderer().Page("body", "<b>Tom & Jerry</b>", ThemeFor(domain.StyleKids))
	require.NoError(t, err)
	assert.Contains(t, page, "<title>&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;</title>")
	assert.Contains(t, page, `"Comic Neue"`)
}

func TestPDFRenderer_ImageFallbacks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))

	md := "![missing](nope.png)\n\n![broken](broken.png)\n\n![remote](https://example.com/x.png)\n"
	out, err := NewPDFRenderer().Render(md, "Images", ThemeFor(domain.StyleKids), dir)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFRenderer_TallImageFitsPage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tall.png"), 20, 4000)

	out, err := NewPDFRenderer().Render("text\n\n![tall](tall.png)", "Tall", ThemeFor(domain.StylePro), dir)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestThemeFor(t *testing.T) {
	for _, style := range []domain.Style{domain.StyleKids, domain.StyleHighSchool, domain.StyleUndergrad, domain.StylePro, domain.StyleExecutive} {
		assert.Equal(t, string(style), ThemeFor(style).Name)
	}
	assert.Equal(t, "base", ThemeFor("").Name)
}

func TestRGB_Hex(t *testing.T) {
	assert.Equal(t, "#000000", RGB{}.Hex())
	assert.Equal(t, "#ff7675", RGB{255, 118, 117}.Hex())
	assert.Equal(t, "#ff00ff", RGB{300, -4, 255}.Hex())
}

func TestCleanInline(t *testing.T) {
	tests := map[string]string{
		"**bold** and *em*":       "bold and em",
		"use `go test` now":       "use go test now",
		"[link](http://x) here":   "link here",
		"snake_case_name stays":   "snake_case_name stays",
		"  padded  ":              "padded",
		"(_aside_) text":          "(aside) text",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanInline(in), in)
	}
}

func TestLeadingHeading(t *testing.T) {
	assert.Equal(t, "Title", leadingHeading("\n\n# Title\nbody"))
	assert.Equal(t, "", leadingHeading("intro\n# Title"))
	assert.Equal(t, "", leadingHeading("## Sub"))
	assert.Equal(t, "", leadingHeading(""))
	assert.False(t, strings.Contains(leadingHeading("# A"), "#"))
}
