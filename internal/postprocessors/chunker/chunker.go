// Package chunker splits cleaned content into ordered, size-bounded chunks.
//
// Split packs semantic units (heading sections, or paragraphs when the text
// has no headings) greedily under a character bound. Windows cuts plain text
// into overlapping word windows for the knowledge indexer.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// sectionSeparator joins units packed into the same chunk.
const sectionSeparator = "\n\n"

var (
	// splitHeadingRe matches the headings Split breaks sections on.
	splitHeadingRe = regexp.MustCompile(`^#{1,3}[ \t]+\S`)

	// anyHeadingRe matches any ATX heading; used for heading context.
	anyHeadingRe = regexp.MustCompile(`^#{1,6}[ \t]+\S`)
)

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Split divides text into chunks of at most bound characters.
//
// Units are heading sections (levels 1-3); if that yields a single unit the
// text is split on blank-line paragraphs instead. Units are packed in order
// and a unit larger than bound becomes a chunk of its own, intact.
func Split(text string, bound int) ([]domain.Chunk, error) {
	if bound <= 0 {
		return nil, fmt.Errorf("%w: chunk bound must be positive, got %d", domain.ErrInvalidArgument, bound)
	}

	units := splitHeadings(text)
	if len(units) <= 1 {
		units = splitParagraphs(text)
	}

	packed := pack(units, bound)
	chunks := make([]domain.Chunk, 0, len(packed))
	lastHeading := ""
	for _, body := range packed {
		chunk := domain.Chunk{Text: body}
		if !startsWithHeading(body) {
			chunk.HeadingContext = lastHeading
		}
		if h := lastHeadingIn(body); h != "" {
			lastHeading = h
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// pack greedily accumulates units into chunks no longer than bound.
func pack(units []string, bound int) []string {
	var (
		out     []string
		current strings.Builder
		curLen  int
	)
	sepLen := Len(sectionSeparator)

	for _, u := range units {
		uLen := Len(u)
		if curLen > 0 && curLen+sepLen+uLen > bound {
			out = append(out, current.String())
			current.Reset()
			curLen = 0
		}
		if curLen > 0 {
			current.WriteString(sectionSeparator)
			curLen += sepLen
		}
		current.WriteString(u)
		curLen += uLen
	}
	if curLen > 0 {
		out = append(out, current.String())
	}
	return out
}

// splitHeadings cuts text before every level 1-3 heading outside code fences.
func splitHeadings(text string) []string {
	var (
		units   []string
		current []string
		inFence bool
	)
	for _, line := range lines(text) {
		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && splitHeadingRe.MatchString(line) && len(current) > 0 {
			units = appendUnit(units, current)
			current = nil
		}
		current = append(current, line)
	}
	return appendUnit(units, current)
}

// splitParagraphs cuts text on blank lines outside code fences.
func splitParagraphs(text string) []string {
	var (
		units   []string
		current []string
		inFence bool
	)
	for _, line := range lines(text) {
		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && strings.TrimSpace(line) == "" {
			units = appendUnit(units, current)
			current = nil
			continue
		}
		current = append(current, line)
	}
	return appendUnit(units, current)
}

// appendUnit trims the joined lines and appends them unless empty.
func appendUnit(units []string, lines []string) []string {
	u := strings.TrimSpace(strings.Join(lines, "\n"))
	if u == "" {
		return units
	}
	return append(units, u)
}

func lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

func startsWithHeading(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return anyHeadingRe.MatchString(first)
}

// lastHeadingIn returns the last heading line of text outside code fences.
func lastHeadingIn(text string) string {
	last := ""
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if !inFence && anyHeadingRe.MatchString(line) {
			last = strings.TrimSpace(line)
		}
	}
	return last
}
