package domain

import "time"

// Stage names a state of the conversion pipeline.
type Stage string

// Pipeline stages. StageDone is terminal.
const (
	StageClean    Stage = "clean"
	StageGlossary Stage = "glossary"
	StageRewrite  Stage = "rewrite"
	StageCritic   Stage = "critic"
	StageImages   Stage = "images"
	StageDone     Stage = "done"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal returns true for the final stage.
func (s Stage) IsTerminal() bool {
	return s == StageDone
}

// RunStatus describes how a run left the critique loop.
type RunStatus string

// Run statuses.
const (
	// RunStatusPending is the status before the critique loop has finished.
	RunStatusPending RunStatus = ""

	// RunStatusApproved means the critic approved a draft.
	RunStatusApproved RunStatus = "approved"

	// RunStatusMaxIterations means the loop hit its bound and the last
	// draft was accepted without approval.
	RunStatusMaxIterations RunStatus = "max_iterations_exhausted"
)

// GlossaryTerm is a term and its definition. Unique by term within a run.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ImageRef records a resolved illustration placeholder.
type ImageRef struct {
	// Index is the placeholder's position among all placeholders (0-based).
	Index int

	// Description is the trimmed placeholder text.
	Description string

	// Path is where the artifact was written, as referenced in the document.
	Path string
}

// PipelineState is the mutable record threaded through every stage of one run.
// It is created per run and never shared between concurrent runs.
type PipelineState struct {
	// RunID scopes artifact names and knowledge ids to this run.
	RunID string

	// RawContent is the input. It is not modified after creation.
	RawContent string

	// CleanedContent is produced by the clean stage.
	CleanedContent string

	// RewrittenContent is overwritten by every rewrite and finalised by images.
	RewrittenContent string

	// Style selects the rewrite voice.
	Style Style

	// CustomPrompt is appended verbatim to every rewrite request.
	CustomPrompt string

	// OutputOptions are the enabled output sections, in declared order.
	OutputOptions []OutputOption

	// CritiqueFeedback is carried from the critic into the next rewrite.
	CritiqueFeedback string

	// IterationCount is the number of completed rewrite passes.
	IterationCount int

	// GlossaryTerms are extracted once, before the first rewrite.
	GlossaryTerms []GlossaryTerm

	// Approved is set by the critic.
	Approved bool

	// Status records how the critique loop ended.
	Status RunStatus

	// Images lists placeholders that were resolved.
	Images []ImageRef
}

// NewPipelineState creates the state for a new run.
// Style and options are normalised; all produced fields start empty.
func NewPipelineState(runID, raw string, style Style, customPrompt string, opts []OutputOption) *PipelineState {
	return &PipelineState{
		RunID:         runID,
		RawContent:    raw,
		Style:         style.OrDefault(),
		CustomPrompt:  customPrompt,
		OutputOptions: NormaliseOptions(opts),
	}
}

// ShortRunID returns the first 8 characters of the run id, used in file names.
func (s *PipelineState) ShortRunID() string {
	if len(s.RunID) <= 8 {
		return s.RunID
	}
	return s.RunID[:8]
}

// PipelineConfig holds the bounds and thresholds of the pipeline.
type PipelineConfig struct {
	// MaxIterations bounds the rewrite/critic loop.
	MaxIterations int

	// ChunkThreshold is the cleaned content length above which the
	// rewriter switches to chunked mode.
	ChunkThreshold int

	// ChunkSize is the per-chunk character bound in chunked mode.
	ChunkSize int

	// CarryoverChars is the length of the trailing excerpt of each chunk's
	// output passed to the next chunk.
	CarryoverChars int

	// GlossaryInputChars bounds the content sent for glossary extraction.
	GlossaryInputChars int

	// RetrievalQueryChars is the prefix of cleaned content used as the query.
	RetrievalQueryChars int

	// RetrievalTopK is the number of knowledge items retrieved.
	RetrievalTopK int

	// RetrievalResultChars truncates each retrieved item.
	RetrievalResultChars int

	// CallTimeout bounds every external call. Zero disables the bound.
	CallTimeout time.Duration
}

// DefaultPipelineConfig returns the standard pipeline bounds.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxIterations:        3,
		ChunkThreshold:       15000,
		ChunkSize:            4000,
		CarryoverChars:       300,
		GlossaryInputChars:   4000,
		RetrievalQueryChars:  500,
		RetrievalTopK:        3,
		RetrievalResultChars: 500,
		CallTimeout:          120 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultPipelineConfig.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	d := DefaultPipelineConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.ChunkThreshold <= 0 {
		c.ChunkThreshold = d.ChunkThreshold
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.CarryoverChars <= 0 {
		c.CarryoverChars = d.CarryoverChars
	}
	if c.GlossaryInputChars <= 0 {
		c.GlossaryInputChars = d.GlossaryInputChars
	}
	if c.RetrievalQueryChars <= 0 {
		c.RetrievalQueryChars = d.RetrievalQueryChars
	}
	if c.RetrievalTopK <= 0 {
		c.RetrievalTopK = d.RetrievalTopK
	}
	if c.RetrievalResultChars <= 0 {
		c.RetrievalResultChars = d.RetrievalResultChars
	}
	return c
}

// StageEvent reports progress of a run to observers.
type StageEvent struct {
	RunID     string
	Stage     Stage
	Iteration int
	Message   string
	At        time.Time
}
