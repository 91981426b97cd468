package domain

// Chunk is an ordered segment of cleaned content.
// Chunks of one body reconstruct its reading order and are never empty.
type Chunk struct {
	// Text is the trimmed segment content.
	Text string

	// HeadingContext is the nearest heading that governs Text when Text
	// does not start with one. Empty if no heading precedes the chunk.
	HeadingContext string
}

// PromptText returns the chunk text with its heading context prepended.
func (c Chunk) PromptText() string {
	if c.HeadingContext == "" {
		return c.Text
	}
	return c.HeadingContext + "\n\n" + c.Text
}
