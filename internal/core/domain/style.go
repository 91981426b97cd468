package domain

import "strings"

const unknownDescription = "Unknown"

// Style is the target audience and voice of a rewrite.
type Style string

// Available styles.
const (
	// StyleKids addresses a 5th grader: short sentences, analogies.
	StyleKids Style = "kids"

	// StyleHighSchool addresses a high school student.
	StyleHighSchool Style = "highschool"

	// StyleUndergrad reads like supplementary lecture notes.
	StyleUndergrad Style = "undergrad"

	// StylePro is a polished professional technical tutorial.
	StylePro Style = "pro"

	// StyleExecutive is a high-level briefing with a TL;DR.
	StyleExecutive Style = "executive"
)

// DefaultStyle is used whenever a style is missing or unrecognised.
const DefaultStyle = StylePro

// ParseStyle maps free text onto a Style.
// Unknown values fall back to DefaultStyle.
func ParseStyle(s string) Style {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if !style.IsValid() {
		return DefaultStyle
	}
	return style
}

// IsValid returns true if the style is recognised.
func (s Style) IsValid() bool {
	switch s {
	case StyleKids, StyleHighSchool, StyleUndergrad, StylePro, StyleExecutive:
		return true
	default:
		return false
	}
}

// OrDefault returns s when valid and DefaultStyle otherwise.
func (s Style) OrDefault() Style {
	if s.IsValid() {
		return s
	}
	return DefaultStyle
}

// SuggestsImages reports whether the style's template asks the generator
// for illustration placeholders.
func (s Style) SuggestsImages() bool {
	return s.OrDefault() != StyleExecutive
}

// String returns the string representation.
func (s Style) String() string {
	return string(s)
}

// Description returns a human-readable description of the audience.
func (s Style) Description() string {
	switch s {
	case StyleKids:
		return "Kids (5th grade, simple and playful)"
	case StyleHighSchool:
		return "High school (accessible, introduces terminology)"
	case StyleUndergrad:
		return "Undergraduate (academic, rigorous)"
	case StylePro:
		return "Professional (precise technical tutorial)"
	case StyleExecutive:
		return "Executive (briefing with TL;DR)"
	default:
		return unknownDescription
	}
}

// AllStyles returns every style in presentation order.
func AllStyles() []Style {
	return []Style{
		StyleKids,
		StyleHighSchool,
		StyleUndergrad,
		StylePro,
		StyleExecutive,
	}
}
