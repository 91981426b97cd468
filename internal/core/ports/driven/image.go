package driven

import "context"

// ImageGenerator turns a description into an encoded image.
type ImageGenerator interface {
	// Generate returns image bytes (PNG unless the backend says otherwise).
	Generate(ctx context.Context, description string) ([]byte, error)

	// Name identifies the backend in logs.
	Name() string
}
