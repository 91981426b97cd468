package domain

// TaskCategory classifies a generation request so it can be routed
// to an appropriate backend.
type TaskCategory string

// Task categories.
const (
	// TaskClean strips noise from raw input.
	TaskClean TaskCategory = "clean"

	// TaskGlossary extracts glossary terms.
	TaskGlossary TaskCategory = "glossary"

	// TaskRewrite produces the audience-adapted draft.
	TaskRewrite TaskCategory = "rewrite"

	// TaskCritic reviews a draft.
	TaskCritic TaskCategory = "critic"
)

// IsValid returns true if the category is recognised.
func (c TaskCategory) IsValid() bool {
	switch c {
	case TaskClean, TaskGlossary, TaskRewrite, TaskCritic:
		return true
	default:
		return false
	}
}

// QualityCritical reports whether the task should prefer the strongest
// configured backend.
func (c TaskCategory) QualityCritical() bool {
	return c == TaskRewrite || c == TaskCritic
}

// String returns the string representation.
func (c TaskCategory) String() string {
	return string(c)
}

// AllTaskCategories returns every category.
func AllTaskCategories() []TaskCategory {
	return []TaskCategory{TaskClean, TaskGlossary, TaskRewrite, TaskCritic}
}
