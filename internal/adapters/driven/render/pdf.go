package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration for DecodeConfig
	_ "image/png"  // decoder registration for DecodeConfig
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/custodia-labs/tutorforge/internal/logger"
)

const (
	pageMargin = 18.0
	pxPerMM    = 96.0 / 25.4
)

var (
	imageLineRe   = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)$`)
	orderedItemRe = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	tableRuleRe   = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
	hrRe          = regexp.MustCompile(`^(\*\s*){3,}$|^(-\s*){3,}$|^(_\s*){3,}$`)
	emphasisRe    = regexp.MustCompile(`(^|[\s(])[*_]([^*_\s][^*_]*)[*_]`)
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	linkRe        = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}

// PDFRenderer lays Markdown out as a themed A4 PDF with gofpdf. Generated
// PNG and JPEG illustrations are embedded; other images become captions.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// pdfWriter carries the per-document layout state.
type pdfWriter struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	theme    Theme
	assetDir string
	images   int
}

// Render converts markdown into PDF bytes.
func (r *PDFRenderer) Render(markdown, title string, theme Theme, assetDir string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("tutorforge", true)
	pdf.AddPage()

	w := &pdfWriter{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		theme:    theme,
		assetDir: assetDir,
	}

	if leadingHeading(markdown) != title {
		w.heading(title, 1)
		w.pdf.Ln(2)
	}
	w.body(markdown)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) body(markdown string) {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	inCode := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			w.pdf.Ln(2)
			continue
		}
		if inCode {
			w.code(line)
			continue
		}

		switch {
		case trimmed == "":
			w.pdf.Ln(3)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			w.heading(strings.TrimSpace(strings.Trim(trimmed, "# ")), level)
		case imageLineRe.MatchString(trimmed):
			m := imageLineRe.FindStringSubmatch(trimmed)
			w.image(m[1], m[2])
		case hrRe.MatchString(trimmed):
			w.rule()
		case tableRuleRe.MatchString(trimmed):
		case strings.HasPrefix(trimmed, "|"):
			w.tableRow(trimmed)
		case strings.HasPrefix(trimmed, ">"):
			w.quote(strings.TrimSpace(strings.TrimLeft(trimmed, "> ")))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "+ "):
			indent := float64(len(line)-len(strings.TrimLeft(line, " \t"))) * 1.5
			w.listItem("•", trimmed[2:], indent)
		case orderedItemRe.MatchString(trimmed):
			m := orderedItemRe.FindStringSubmatch(trimmed)
			indent := float64(len(line)-len(strings.TrimLeft(line, " \t"))) * 1.5
			w.listItem(m[1]+".", m[2], indent)
		default:
			w.paragraph(trimmed)
		}
	}
}

func (w *pdfWriter) textColor() {
	w.pdf.SetTextColor(w.theme.Text.R, w.theme.Text.G, w.theme.Text.B)
}

func (w *pdfWriter) heading(text string, level int) {
	size, ok := headingSizes[level]
	if !ok {
		size = w.theme.BaseSize
	}
	w.pdf.Ln(3)
	w.pdf.SetFont(w.theme.PDFFont, "B", size)
	w.pdf.SetTextColor(w.theme.Accent.R, w.theme.Accent.G, w.theme.Accent.B)
	w.pdf.MultiCell(0, size*0.55, w.tr(CleanInline(text)), "", "L", false)
	w.textColor()
	w.pdf.Ln(1.5)
}

func (w *pdfWriter) paragraph(text string) {
	w.pdf.SetFont(w.theme.PDFFont, "", w.theme.BaseSize)
	w.textColor()
	w.pdf.MultiCell(0, w.theme.BaseSize*0.5, w.tr(CleanInline(text)), "", "L", false)
}

func (w *pdfWriter) listItem(marker, text string, indent float64) {
	w.pdf.SetFont(w.theme.PDFFont, "", w.theme.BaseSize)
	w.textColor()
	left, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetX(left + indent)
	w.pdf.CellFormat(6, w.theme.BaseSize*0.5, w.tr(marker), "", 0, "L", false, 0, "")
	w.pdf.MultiCell(0, w.theme.BaseSize*0.5, w.tr(CleanInline(text)), "", "L", false)
}

func (w *pdfWriter) quote(text string) {
	w.pdf.SetFont(w.theme.PDFFont, "I", w.theme.BaseSize)
	w.pdf.SetFillColor(w.theme.CodeBack.R, w.theme.CodeBack.G, w.theme.CodeBack.B)
	w.textColor()
	w.pdf.MultiCell(0, w.theme.BaseSize*0.5, w.tr(CleanInline(text)), "L", "L", true)
}

func (w *pdfWriter) code(line string) {
	w.pdf.SetFont("Courier", "", w.theme.BaseSize-1)
	w.pdf.SetFillColor(w.theme.CodeBack.R, w.theme.CodeBack.G, w.theme.CodeBack.B)
	w.textColor()
	w.pdf.MultiCell(0, 4.5, w.tr(strings.ReplaceAll(line, "\t", "    ")), "", "L", true)
}

func (w *pdfWriter) tableRow(line string) {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i := range cells {
		cells[i] = CleanInline(strings.TrimSpace(cells[i]))
	}
	w.pdf.SetFont("Courier", "", w.theme.BaseSize-1)
	w.textColor()
	w.pdf.MultiCell(0, 4.5, w.tr(strings.Join(cells, "  |  ")), "", "L", false)
}

func (w *pdfWriter) rule() {
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY() + 2
	w.pdf.SetDrawColor(w.theme.Accent.R, w.theme.Accent.G, w.theme.Accent.B)
	w.pdf.Line(left, y, pageW-right, y)
	w.pdf.SetY(y + 3)
}

// image embeds a PNG or JPEG referenced relative to assetDir. Anything
// that cannot be decoded is replaced by its caption.
func (w *pdfWriter) image(alt, ref string) {
	data, kind, cfg, err := w.loadImage(ref)
	if err != nil {
		logger.Debug("pdf: image %s not embedded: %v", ref, err)
		w.caption("[Illustration: " + alt + "]")
		return
	}

	left, _, right, bottom := w.pdf.GetMargins()
	pageW, pageH := w.pdf.GetPageSize()
	maxW := pageW - left - right
	width := min(float64(cfg.Width)/pxPerMM, maxW*0.8)
	height := width * float64(cfg.Height) / float64(cfg.Width)
	if maxH := pageH - 2*bottom - 20; height > maxH {
		height = maxH
		width = height * float64(cfg.Width) / float64(cfg.Height)
	}

	if w.pdf.GetY()+height > pageH-bottom {
		w.pdf.AddPage()
	}

	w.images++
	name := fmt.Sprintf("img%d_%s", w.images, filepath.Base(ref))
	opts := gofpdf.ImageOptions{ImageType: kind}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	x := left + (maxW-width)/2
	y := w.pdf.GetY() + 2
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	w.pdf.SetY(y + height + 2)

	if alt != "" {
		w.caption(alt)
	}
}

func (w *pdfWriter) caption(text string) {
	w.pdf.SetFont(w.theme.PDFFont, "I", w.theme.BaseSize-1)
	w.textColor()
	w.pdf.MultiCell(0, 4.5, w.tr(text), "", "C", false)
	w.pdf.Ln(2)
}

func (w *pdfWriter) loadImage(ref string) ([]byte, string, image.Config, error) {
	if strings.Contains(ref, "://") {
		return nil, "", image.Config{}, fmt.Errorf("remote image")
	}
	path := filepath.FromSlash(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.assetDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", image.Config{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", image.Config{}, err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, "", image.Config{}, fmt.Errorf("empty image")
	}
	switch format {
	case "png":
		return data, "PNG", cfg, nil
	case "jpeg":
		return data, "JPG", cfg, nil
	default:
		return nil, "", image.Config{}, fmt.Errorf("unsupported format %s", format)
	}
}

// CleanInline strips inline Markdown markers for plain-text layout.
func CleanInline(text string) string {
	text = linkRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = emphasisRe.ReplaceAllString(text, "$1$2")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// leadingHeading returns the text of an H1 on the first non-blank line.
func leadingHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
		return ""
	}
	return ""
}
