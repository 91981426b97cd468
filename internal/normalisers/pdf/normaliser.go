// Package pdf provides a Normaliser for PDF documents backed by pdfcpu.
//
// Text is recovered from the page content streams by interpreting the
// text-showing operators. Scanned PDFs without a text layer yield no text
// and are reported as parse errors.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLen bounds a title taken from the first line of text.
const maxTitleLen = 200

func init() {
	// Keep pdfcpu from creating a configuration directory under the user's home.
	api.DisableConfigDir()
}

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Normalise extracts the text of every page, one page per paragraph.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw.Content), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: pdfcpu read: %w", domain.ErrParse, err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if text := pageText(ctx, pageNr); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no text content found in PDF", domain.ErrParse)
	}

	title := firstLine(pages[0])
	if title == "" {
		title = normalisers.TitleFromName(raw.Name)
	}

	return &domain.SourceDocument{
		Source:   raw.Source,
		Title:    title,
		Content:  strings.Join(pages, "\n\n"),
		MIMEType: raw.MIMEType,
	}, nil
}

// pageText extracts the text of a single page. Unreadable pages are empty.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractText(data)
}

var (
	// textOp matches a TJ array, a string shown by Tj, ' or ", or a
	// line-breaking operator.
	textOp = regexp.MustCompile(`(?s)\[((?:\\.|[^\]\\])*)\]\s*TJ|\(((?:\\.|[^\\)])*)\)\s*(Tj|'|")|\bT\*|\bT[dD]\b|\bET\b`)

	// literal matches a string literal inside a TJ array.
	literal = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
)

// extractText interprets the text operators of a content stream.
func extractText(stream []byte) string {
	var sb strings.Builder

	for _, m := range textOp.FindAllSubmatchIndex(stream, -1) {
		switch {
		case m[2] >= 0:
			for _, lit := range literal.FindAllSubmatch(stream[m[2]:m[3]], -1) {
				sb.WriteString(decodeString(lit[1]))
			}
		case m[4] >= 0:
			if op := string(stream[m[6]:m[7]]); op != "Tj" {
				sb.WriteByte('\n')
			}
			sb.WriteString(decodeString(stream[m[4]:m[5]]))
		default:
			switch string(stream[m[0]:m[1]]) {
			case "Td", "TD":
				sb.WriteByte(' ')
			default:
				sb.WriteByte('\n')
			}
		}
	}

	return cleanText(sb.String())
}

// decodeString resolves the escape sequences of a PDF string literal.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanText collapses runs of spaces and drops empty lines.
func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if r := []rune(line); len(r) > maxTitleLen {
		line = string(r[:maxTitleLen])
	}
	return line
}
