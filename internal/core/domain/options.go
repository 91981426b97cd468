package domain

import "strings"

// OutputOption is an optional section the rewrite must include.
type OutputOption string

// Available output options, in declared order.
const (
	OptionCodeExamples OutputOption = "code_examples"
	OptionSummaryTable OutputOption = "summary_table"
	OptionKeyTakeaways OutputOption = "key_takeaways"
	OptionGlossary     OutputOption = "glossary"
)

// IsValid returns true if the option is recognised.
func (o OutputOption) IsValid() bool {
	switch o {
	case OptionCodeExamples, OptionSummaryTable, OptionKeyTakeaways, OptionGlossary:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (o OutputOption) String() string {
	return string(o)
}

// Instruction returns the fixed instruction appended to a rewrite request
// when the option is enabled. Unknown options have no instruction.
func (o OutputOption) Instruction() string {
	switch o {
	case OptionCodeExamples:
		return "Include practical code examples where applicable. Use proper syntax highlighting."
	case OptionSummaryTable:
		return "Add a summary table at the end with key concepts and their descriptions."
	case OptionKeyTakeaways:
		return "Include a 'Key Takeaways' section at the end with 3-5 bullet points " +
			"highlighting the most important concepts."
	case OptionGlossary:
		return "Add a 'Glossary' section at the end defining all technical terms used in the document."
	default:
		return ""
	}
}

// AllOutputOptions returns every option in declared order.
func AllOutputOptions() []OutputOption {
	return []OutputOption{
		OptionCodeExamples,
		OptionSummaryTable,
		OptionKeyTakeaways,
		OptionGlossary,
	}
}

// NormaliseOptions returns the recognised options of opts in declared order,
// without duplicates. Unknown tags are dropped.
func NormaliseOptions(opts []OutputOption) []OutputOption {
	enabled := make(map[OutputOption]bool, len(opts))
	for _, o := range opts {
		enabled[o] = true
	}
	var out []OutputOption
	for _, o := range AllOutputOptions() {
		if enabled[o] {
			out = append(out, o)
		}
	}
	return out
}

// ParseOutputOptions parses tags such as "code_examples,glossary".
// Unknown tags are ignored.
func ParseOutputOptions(tags []string) []OutputOption {
	opts := make([]OutputOption, 0, len(tags))
	for _, t := range tags {
		for _, part := range strings.Split(t, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				opts = append(opts, OutputOption(part))
			}
		}
	}
	return NormaliseOptions(opts)
}
