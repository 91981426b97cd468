package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/prompts"
)

// Section headers used when composing rewrite requests.
const (
	headerGlossary  = "Key Terms:"
	headerRetrieval = "Relevant Background Knowledge:"
	headerCustom    = "**Additional User Instructions:**"
	headerOptions   = "**Required Output Sections:**"
	headerFeedback  = "Address this feedback: "
	headerCarryover = "Context from previous section:"
)

// sectionGap separates the parts of a composed prompt.
const sectionGap = "\n\n"

// promptBuilder joins non-empty prompt sections in insertion order.
type promptBuilder struct {
	sections []string
}

func (b *promptBuilder) add(section string) {
	if strings.TrimSpace(section) == "" {
		return
	}
	b.sections = append(b.sections, section)
}

func (b *promptBuilder) String() string {
	return strings.Join(b.sections, sectionGap)
}

// fillTemplate substitutes content into a style template. A template
// without a placeholder gets the content appended.
func fillTemplate(template, content string) string {
	if !strings.Contains(template, prompts.ContentPlaceholder) {
		return template + sectionGap + content
	}
	return strings.ReplaceAll(template, prompts.ContentPlaceholder, content)
}

func glossarySection(terms []domain.GlossaryTerm) string {
	if len(terms) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerGlossary)
	for _, t := range terms {
		fmt.Fprintf(&b, "\n- %s: %s", t.Term, t.Definition)
	}
	return b.String()
}

func retrievalSection(results []string, maxChars int) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerRetrieval)
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] %s...\n", i+1, truncate(r, maxChars))
	}
	return strings.TrimRight(b.String(), "\n")
}

func customSection(custom string) string {
	if strings.TrimSpace(custom) == "" {
		return ""
	}
	return headerCustom + "\n" + custom
}

func optionsSection(opts []domain.OutputOption) string {
	var b strings.Builder
	for _, o := range domain.NormaliseOptions(opts) {
		b.WriteString("\n- ")
		b.WriteString(o.Instruction())
	}
	if b.Len() == 0 {
		return ""
	}
	return headerOptions + b.String()
}

func feedbackSection(feedback string) string {
	if strings.TrimSpace(feedback) == "" {
		return ""
	}
	return headerFeedback + feedback
}

func carryoverSection(previous string) string {
	if previous == "" {
		return ""
	}
	return headerCarryover + "\n" + previous
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
