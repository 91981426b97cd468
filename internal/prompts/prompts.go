// Package prompts holds the built-in prompt texts.
//
// The file-backed PromptStore seeds user-editable copies from these, and
// the pipeline stages fall back to them when no store is configured.
package prompts

import (
	"sort"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// ContentPlaceholder is substituted with the text being rewritten.
const ContentPlaceholder = "{content}"

// imageInstruction asks the writer for illustration placeholders.
const imageInstruction = "- Insert [[IMG_SUGGESTION: description]] wherever an illustration would help the reader."

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaults = map[string]string{
	driven.PromptClean: `You are an expert content cleaner.
Extract the core educational content from a raw web scrape, PDF text or upload.

Remove advertisements, navigation menus, "click here" links, comment threads,
footers and author bios that do not help the reader.

Keep the main title, every heading, the instructional body text, code blocks
(with their formatting) and any existing image placeholders.

Output only the cleaned Markdown text.`,

	driven.PromptGlossary: `Identify the key technical terms and concepts in the text that a newcomer might not understand.
Define each one using only what the text says.

Respond with JSON in exactly this shape:
{"terms": [{"term": "SaaS", "definition": "Software as a Service: software you rent over the internet instead of installing."}]}`,

	driven.PromptCritic: `You are a strict editor.
Review the draft against the goal of rewriting the source for the target audience.

Check that:
1. Every key step of the source is preserved.
2. The tone matches the target audience.
3. Illustration placeholders ([[IMG_SUGGESTION: ...]]) are present where they help.

Respond with JSON in exactly this shape:
{"approved": true, "feedback": "what still needs fixing, or an empty string"}`,

	driven.PromptWriterSystem: `You are a helpful writer. Answer with the rewritten Markdown document only.`,

	driven.StylePromptName(domain.StyleKids): `You are a friendly teacher explaining a complex topic to a 5th grader.
Rewrite the content so it is simple, engaging and easy to follow.

Rules:
- Use short sentences and simple words.
- Use analogies ("think of a variable like a labelled box").
- Keep the original headings.
- Keep code blocks, and explain them simply.
` + imageInstruction + `

Content to rewrite:
{content}`,

	driven.StylePromptName(domain.StyleHighSchool): `You are an engaging tutor explaining a topic to a high school student.
Make the content approachable while introducing the proper terminology.

Rules:
- Use clear, direct language.
- Explain each technical term the first time it appears.
- Keep the original headings.
- Use practical examples a teenager can relate to.
` + imageInstruction + `

Content to rewrite:
{content}`,

	driven.StylePromptName(domain.StyleUndergrad): `You are a university lecturer writing supplementary notes for undergraduate students.
Present the content with academic rigour while keeping it accessible.

Rules:
- Use correct academic and technical terminology.
- Add context and background where it helps.
- Keep a logical structure with clear headings.
- Point out the foundational concepts students should already know.
` + imageInstruction + `

Content to rewrite:
{content}`,

	driven.StylePromptName(domain.StylePro): `You are a senior technical writer.
Refine the content into a polished, professional technical tutorial.

Rules:
- Use precise, industry-standard terminology.
- Be clear and concise. Remove filler.
- Format code blocks correctly.
` + imageInstruction + `

Content to rewrite:
{content}`,

	driven.StylePromptName(domain.StyleExecutive): `You are a strategic communications specialist preparing an executive briefing.
Distil the content into a high-level summary for busy executives.

Rules:
- Start with a TL;DR.
- Focus on key takeaways, business impact and strategic implications.
- Use bullet points and clear action items.
- Keep technical jargon to what an executive needs to know.
- Aim for one to two pages.

Content to summarise:
{content}`,
}

// Default returns the built-in prompt for name.
func Default(name string) (string, bool) {
	p, ok := defaults[name]
	return p, ok
}

// Names returns the names of all built-in prompts, sorted.
func Names() []string {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve loads name from store, falling back to the built-in prompt when
// the store is nil, fails, or returns an empty prompt.
func Resolve(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	p, _ := Default(name)
	return p
}
