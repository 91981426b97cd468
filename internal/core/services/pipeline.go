package services

import (
	"context"
	"time"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// PipelineDeps are the collaborators of a pipeline. Generator is required;
// the rest are optional and degrade the matching stage when nil.
type PipelineDeps struct {
	Generator driven.Generator
	Knowledge driven.KnowledgeStore
	Images    driven.ImageGenerator
	Artifacts driven.ArtifactWriter
	Prompts   driven.PromptStore
}

// Pipeline runs the conversion state machine:
//
//	clean -> glossary -> rewrite -> critic -> {rewrite | images} -> done
//
// A Pipeline holds no per-run state and may run concurrent conversions.
type Pipeline struct {
	cleaner  *Cleaner
	glossary *GlossaryExtractor
	rewriter *StyleRewriter
	critic   *CriticReviewer
	images   *ImageResolver
	cfg      domain.PipelineConfig
	progress driven.ProgressSink
}

// NewPipeline creates a pipeline. Zero config fields take their defaults.
func NewPipeline(deps PipelineDeps, cfg domain.PipelineConfig) *Pipeline {
	cfg = cfg.WithDefaults()
	return &Pipeline{
		cleaner:  NewCleaner(deps.Generator, deps.Prompts, cfg.CallTimeout),
		glossary: NewGlossaryExtractor(deps.Generator, deps.Knowledge, deps.Prompts, cfg),
		rewriter: NewStyleRewriter(deps.Generator, deps.Knowledge, deps.Prompts, cfg),
		critic:   NewCriticReviewer(deps.Generator, deps.Prompts, cfg.CallTimeout),
		images:   NewImageResolver(deps.Images, deps.Artifacts, cfg.CallTimeout),
		cfg:      cfg,
	}
}

// SetProgress sets the default observer of stage transitions.
func (p *Pipeline) SetProgress(sink driven.ProgressSink) {
	p.progress = sink
}

// Config returns the effective pipeline bounds.
func (p *Pipeline) Config() domain.PipelineConfig {
	return p.cfg
}

// Run drives state from clean to done. An aborting failure is returned
// as a *domain.StageError naming the stage.
func (p *Pipeline) Run(ctx context.Context, state *domain.PipelineState) error {
	return p.RunWithProgress(ctx, state, p.progress)
}

// RunWithProgress is Run with a per-run observer. sink may be nil.
func (p *Pipeline) RunWithProgress(ctx context.Context, state *domain.PipelineState, sink driven.ProgressSink) error {
	stage := domain.StageClean
	for !stage.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return domain.NewStageError(stage, err)
		}

		logger.Stage(state.ShortRunID(), stage.String(), stageIteration(stage, state))
		emit(sink, state, stage, "")

		next, err := p.step(ctx, stage, state)
		if err != nil {
			logger.Error("run %s aborted: %v", state.ShortRunID(), domain.NewStageError(stage, err))
			return domain.NewStageError(stage, err)
		}
		stage = next
	}

	emit(sink, state, domain.StageDone, string(state.Status))
	logger.Info("run %s done: %d iteration(s), %s", state.ShortRunID(), state.IterationCount, state.Status)
	return nil
}

// step executes one stage and returns the next.
func (p *Pipeline) step(ctx context.Context, stage domain.Stage, state *domain.PipelineState) (domain.Stage, error) {
	switch stage {
	case domain.StageClean:
		if err := p.cleaner.Clean(ctx, state); err != nil {
			return stage, err
		}
	case domain.StageGlossary:
		state.GlossaryTerms = p.glossary.Extract(ctx, state)
	case domain.StageRewrite:
		if err := p.rewriter.Rewrite(ctx, state); err != nil {
			return stage, err
		}
	case domain.StageCritic:
		verdict, err := p.critic.Review(ctx, state)
		if err != nil {
			return stage, err
		}
		state.Approved = verdict.Approved
		state.CritiqueFeedback = verdict.Feedback
	case domain.StageImages:
		p.images.Resolve(ctx, state)
	}

	next := NextStage(stage, state, p.cfg.MaxIterations)
	if stage == domain.StageCritic && next == domain.StageImages {
		state.Status = domain.RunStatusMaxIterations
		if state.Approved {
			state.Status = domain.RunStatusApproved
		} else {
			logger.Warn("run %s: accepting unapproved draft after %d iterations", state.ShortRunID(), state.IterationCount)
		}
	}
	return next, nil
}

// NextStage is the transition function of the pipeline. After the critic,
// an approved draft or an exhausted iteration budget moves on to images;
// anything else loops back to rewrite.
func NextStage(current domain.Stage, state *domain.PipelineState, maxIterations int) domain.Stage {
	switch current {
	case domain.StageClean:
		return domain.StageGlossary
	case domain.StageGlossary:
		return domain.StageRewrite
	case domain.StageRewrite:
		return domain.StageCritic
	case domain.StageCritic:
		if state.Approved || state.IterationCount >= maxIterations {
			return domain.StageImages
		}
		return domain.StageRewrite
	default:
		return domain.StageDone
	}
}

// stageIteration is the iteration number shown for loop stages.
func stageIteration(stage domain.Stage, state *domain.PipelineState) int {
	switch stage {
	case domain.StageRewrite:
		return state.IterationCount + 1
	case domain.StageCritic:
		return state.IterationCount
	default:
		return 0
	}
}

func emit(sink driven.ProgressSink, state *domain.PipelineState, stage domain.Stage, msg string) {
	if sink == nil {
		return
	}
	sink.OnStage(domain.StageEvent{
		RunID:     state.RunID,
		Stage:     stage,
		Iteration: stageIteration(stage, state),
		Message:   msg,
		At:        time.Now(),
	})
}
