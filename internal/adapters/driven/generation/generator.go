package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// maxRawInError bounds the response kept in a SchemaError, in runes.
const maxRawInError = 500

// temperatures per category. Zero leaves the provider default.
var temperatures = map[domain.TaskCategory]float64{
	domain.TaskClean:    0.1,
	domain.TaskGlossary: 0.1,
	domain.TaskRewrite:  0.7,
	domain.TaskCritic:   0.2,
}

// Generator implements driven.Generator over a BackendRouter.
type Generator struct {
	router driven.BackendRouter
}

// NewGenerator creates a generator.
func NewGenerator(router driven.BackendRouter) *Generator {
	return &Generator{router: router}
}

// GenerateText returns the backend's answer unchanged.
func (g *Generator) GenerateText(ctx context.Context, prompt, system string, category domain.TaskCategory) (string, error) {
	return g.call(ctx, prompt, driven.GenerateOptions{
		System:      system,
		Temperature: temperatures[category],
	}, category)
}

// GenerateStructured asks for JSON and decodes it into out.
func (g *Generator) GenerateStructured(
	ctx context.Context,
	prompt, system string,
	category domain.TaskCategory,
	out any,
) error {
	raw, err := g.call(ctx, prompt, driven.GenerateOptions{
		System:      system,
		JSON:        true,
		Temperature: temperatures[category],
	}, category)
	if err != nil {
		return err
	}

	if err := Decode(raw, out); err != nil {
		logger.Debug("generation: %s answer did not decode: %v", category, err)
		return &domain.SchemaError{Shape: category.String(), Raw: clip(raw, maxRawInError), Err: err}
	}
	return nil
}

func (g *Generator) call(ctx context.Context, prompt string, opts driven.GenerateOptions, category domain.TaskCategory) (string, error) {
	backend, err := g.router.Route(category)
	if err != nil {
		return "", err
	}

	logger.Debug("generation: %s -> %s (%d chars)", category, backend.ModelName(), len(prompt))
	out, err := backend.Generate(ctx, prompt, opts)
	if err != nil {
		return "", wrapExternal(err)
	}
	return out, nil
}

// wrapExternal makes sure backend failures match domain.ErrExternalService
// or domain.ErrRateLimited.
func wrapExternal(err error) error {
	if errors.Is(err, domain.ErrExternalService) || errors.Is(err, domain.ErrRateLimited) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExternalService, err)
}

// Decode unmarshals a JSON object from raw. Markdown code fences and any
// text around the outermost braces are ignored.
func Decode(raw string, out any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object in response")
	}
	return json.Unmarshal([]byte(s[start:end+1]), out)
}

// clip keeps the first n runes of s.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
