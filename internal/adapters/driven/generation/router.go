package generation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.BackendRouter = (*Router)(nil)

// Router sends simple tasks to the local backend and quality-critical
// tasks to the primary one. Either may be nil; the other then serves
// every category.
type Router struct {
	primary driven.LLMService
	local   driven.LLMService
}

// NewRouter creates a router.
func NewRouter(primary, local driven.LLMService) *Router {
	return &Router{primary: primary, local: local}
}

// Route returns the backend for category.
func (r *Router) Route(category domain.TaskCategory) (driven.LLMService, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: task category %q", domain.ErrUnsupportedType, category)
	}

	first, second := r.primary, r.local
	if !category.QualityCritical() {
		first, second = r.local, r.primary
	}
	if first != nil {
		return first, nil
	}
	if second != nil {
		return second, nil
	}
	return nil, domain.ErrLLMUnavailable
}

// Paced limits calls to an LLMService to a number of requests per minute.
// It is safe for concurrent use; waiting honours the caller's context.
type Paced struct {
	driven.LLMService
	limiter *rate.Limiter
}

// Pace wraps svc with a limiter. A non-positive rpm returns svc unchanged.
func Pace(svc driven.LLMService, rpm int) driven.LLMService {
	if svc == nil || rpm <= 0 {
		return svc
	}
	every := time.Minute / time.Duration(rpm)
	return &Paced{LLMService: svc, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Generate waits for a slot, then calls the wrapped service.
func (p *Paced) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return p.LLMService.Generate(ctx, prompt, opts)
}
