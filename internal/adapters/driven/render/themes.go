package render

import "github.com/custodia-labs/tutorforge/internal/core/domain"

// RGB is a colour used by both the HTML and PDF output.
type RGB struct {
	R, G, B int
}

// Hex returns the CSS form of c.
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []int{c.R, c.G, c.B} {
		v = max(0, min(255, v))
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// Theme is the visual identity of one style.
type Theme struct {
	Name string

	// CSSFont is the font-family stack for body text.
	CSSFont string

	// PDFFont is a gofpdf core font family.
	PDFFont string

	// BaseSize is the body font size in points.
	BaseSize float64

	Text       RGB
	Background RGB
	Accent     RGB
	CodeBack   RGB
}

// baseTheme is used for styles without a dedicated theme.
var baseTheme = Theme{
	Name:       "base",
	CSSFont:    `-apple-system, "Segoe UI", Helvetica, Arial, sans-serif`,
	PDFFont:    "Helvetica",
	BaseSize:   10,
	Text:       RGB{33, 37, 41},
	Background: RGB{255, 255, 255},
	Accent:     RGB{13, 110, 253},
	CodeBack:   RGB{245, 245, 245},
}

var themes = map[domain.Style]Theme{
	domain.StyleKids: {
		Name:       "kids",
		CSSFont:    `"Comic Neue", "Comic Sans MS", "Chalkboard SE", sans-serif`,
		PDFFont:    "Helvetica",
		BaseSize:   12,
		Text:       RGB{45, 52, 54},
		Background: RGB{255, 251, 235},
		Accent:     RGB{255, 118, 117},
		CodeBack:   RGB{255, 234, 167},
	},
	domain.StyleHighSchool: {
		Name:       "highschool",
		CSSFont:    `"Trebuchet MS", Verdana, sans-serif`,
		PDFFont:    "Helvetica",
		BaseSize:   11,
		Text:       RGB{34, 40, 49},
		Background: RGB{247, 250, 252},
		Accent:     RGB{0, 150, 136},
		CodeBack:   RGB{230, 244, 241},
	},
	domain.StyleUndergrad: {
		Name:       "undergrad",
		CSSFont:    `Georgia, "Times New Roman", serif`,
		PDFFont:    "Times",
		BaseSize:   11,
		Text:       RGB{30, 30, 30},
		Background: RGB{255, 255, 255},
		Accent:     RGB{128, 0, 32},
		CodeBack:   RGB{242, 242, 242},
	},
	domain.StylePro: {
		Name:       "pro",
		CSSFont:    `Inter, -apple-system, "Segoe UI", Helvetica, Arial, sans-serif`,
		PDFFont:    "Helvetica",
		BaseSize:   10,
		Text:       RGB{31, 41, 55},
		Background: RGB{255, 255, 255},
		Accent:     RGB{37, 99, 235},
		CodeBack:   RGB{243, 244, 246},
	},
	domain.StyleExecutive: {
		Name:       "executive",
		CSSFont:    `"Palatino Linotype", Palatino, "Book Antiqua", serif`,
		PDFFont:    "Times",
		BaseSize:   11,
		Text:       RGB{17, 24, 39},
		Background: RGB{250, 250, 249},
		Accent:     RGB{30, 58, 95},
		CodeBack:   RGB{241, 241, 239},
	},
}

// ThemeFor returns the theme of style, or the base theme.
func ThemeFor(style domain.Style) Theme {
	if t, ok := themes[style]; ok {
		return t
	}
	return baseTheme
}
