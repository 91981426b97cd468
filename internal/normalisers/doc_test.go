package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"/docs/getting_started.md", "getting started"},
		{"intro-to-go.pdf", "intro to go"},
		{"C:\\notes\\heap_sort.txt", "heap sort"},
		{"README", "README"},
		{".bashrc", ".bashrc"},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromName(tt.name))
		})
	}
}
