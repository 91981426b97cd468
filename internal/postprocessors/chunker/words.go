package chunker

import "strings"

// DefaultWindowWords is the default number of words per window.
const DefaultWindowWords = 1000

// DefaultWindowOverlap is the default number of words shared by consecutive windows.
const DefaultWindowOverlap = 100

// Windows splits plain text into overlapping word windows.
type Windows struct {
	size    int
	overlap int
}

// Option configures Windows.
type Option func(*Windows)

// WithSize sets the window size in words.
func WithSize(size int) Option {
	return func(w *Windows) {
		if size > 0 {
			w.size = size
		}
	}
}

// WithOverlap sets the number of overlapping words.
func WithOverlap(overlap int) Option {
	return func(w *Windows) {
		if overlap >= 0 {
			w.overlap = overlap
		}
	}
}

// NewWindows creates a word window splitter with the given options.
func NewWindows(opts ...Option) *Windows {
	w := &Windows{
		size:    DefaultWindowWords,
		overlap: DefaultWindowOverlap,
	}
	for _, opt := range opts {
		opt(w)
	}

	// Ensure overlap doesn't reach window size
	if w.overlap >= w.size {
		w.overlap = w.size / 4
	}
	return w
}

// Split returns the windows of text. Text that fits in one window is
// returned unchanged; empty text yields no windows.
func (w *Windows) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= w.size {
		return []string{text}
	}

	step := w.size - w.overlap
	var out []string
	for start := 0; start < len(words); start += step {
		end := start + w.size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}
