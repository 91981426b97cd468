package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// pageTemplate wraps the sanitized body in a themed standalone page.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
{{.CSS}}
</style>
</head>
<body class="theme-{{.ThemeName}}">
<article>
{{if .ShowTitle}}<h1 class="doc-title">{{.Title}}</h1>
{{end}}{{.Body}}
</article>
</body>
</html>
`))

// stylesheet returns the CSS for theme.
func stylesheet(t Theme) template.CSS {
	bg, text, accent, code := t.Background.Hex(), t.Text.Hex(), t.Accent.Hex(), t.CodeBack.Hex()
	css := fmt.Sprintf(`body { margin: 0; background: %s; color: %s; font-family: %s; font-size: %gpt; line-height: 1.6; }
article { max-width: 46rem; margin: 0 auto; padding: 2.5rem 1.5rem 4rem; }
h1, h2, h3, h4 { color: %s; line-height: 1.25; }
h1.doc-title { border-bottom: 3px solid %s; padding-bottom: .4rem; }
a { color: %s; }
pre, code { background: %s; font-family: "JetBrains Mono", Menlo, Consolas, monospace; font-size: .9em; }
pre { padding: .9rem 1rem; border-radius: 6px; overflow-x: auto; }
code { padding: .1em .3em; border-radius: 3px; }
pre code { padding: 0; }
blockquote { margin: 1rem 0; padding: .2rem 1rem; border-left: 4px solid %s; background: %s; }
img { display: block; max-width: 100%%; margin: 1.25rem auto; border-radius: 8px; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid %s; padding: .35rem .7rem; }`,
		bg, text, t.CSSFont, t.BaseSize+1,
		accent, accent, accent,
		code,
		accent, code,
		code)
	return template.CSS(css) //nolint:gosec // built from static theme values
}

type pageData struct {
	Title     string
	ThemeName string
	CSS       template.CSS
	ShowTitle bool
	Body      template.HTML
}

// HTMLRenderer converts Markdown into a sanitized, themed HTML page.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates an HTMLRenderer with GitHub-flavoured Markdown.
func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")

	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
	}
}

// Body converts markdown to a sanitized HTML fragment.
func (r *HTMLRenderer) Body(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Page renders a complete HTML document. The title heading is omitted
// when the document already opens with it.
func (r *HTMLRenderer) Page(markdown, title string, theme Theme) (string, error) {
	body, err := r.Body(markdown)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	err = pageTemplate.Execute(&out, pageData{
		Title:     title,
		ThemeName: theme.Name,
		CSS:       stylesheet(theme),
		ShowTitle: leadingHeading(markdown) != title,
		Body:      template.HTML(body), //nolint:gosec // sanitized by bluemonday
	})
	if err != nil {
		return "", fmt.Errorf("execute page template: %w", err)
	}
	return out.String(), nil
}
