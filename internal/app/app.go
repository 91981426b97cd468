// Package app wires the driven adapters into the core services.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/tutorforge/internal/adapters/driven/ai"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/artifacts"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/ingest"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/knowledge"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/render"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/storage/ledger"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tutorforge/internal/connectors/filesystem"
	"github.com/custodia-labs/tutorforge/internal/connectors/github"
	"github.com/custodia-labs/tutorforge/internal/connectors/web"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/services"
	"github.com/custodia-labs/tutorforge/internal/logger"
	htmlnorm "github.com/custodia-labs/tutorforge/internal/normalisers/html"
	"github.com/custodia-labs/tutorforge/internal/normalisers/markdown"
	"github.com/custodia-labs/tutorforge/internal/normalisers/pdf"
	"github.com/custodia-labs/tutorforge/internal/normalisers/plaintext"
)

// Options control how the application is assembled.
type Options struct {
	// PromptDir holds user-editable prompts. Empty means ~/.tutorforge/prompts.
	PromptDir string

	// EphemeralKnowledge keeps the knowledge base in memory instead of SQLite.
	EphemeralKnowledge bool
}

// App holds the assembled services.
type App struct {
	Settings  domain.AppSettings
	AI        *ai.InitResult
	Ingestor  *ingest.Ingestor
	Knowledge *knowledge.Store
	Artifacts *artifacts.FileWriter
	Pipeline  *services.Pipeline
	Convert   *services.ConvertService
	Indexer   *services.KnowledgeIndexer

	repo driven.KnowledgeRepository
}

// New builds every service from settings.
func New(ctx context.Context, settings domain.AppSettings, opts Options) (*App, error) {
	aiServices := ai.Init(ctx, &settings)

	var repo driven.KnowledgeRepository
	if opts.EphemeralKnowledge {
		repo = memory.NewKnowledgeRepository()
	} else {
		store, err := sqlite.NewStore(settings.Paths.DataDir)
		if err != nil {
			aiServices.Close()
			return nil, fmt.Errorf("open knowledge store: %w", err)
		}
		logger.Debug("knowledge store: %s", store.Path())
		repo = store
	}
	knowledgeStore := knowledge.NewStore(repo, aiServices.EmbeddingService)

	ingestor := NewIngestor(settings.GitHubToken)
	writer := artifacts.NewFileWriter(settings.Paths.OutputDir)

	deps := services.PipelineDeps{
		Generator: aiServices.Generator,
		Knowledge: knowledgeStore,
		Images:    aiServices.Images,
		Artifacts: writer,
	}
	promptStore, err := file.NewPromptStore(opts.PromptDir)
	if err != nil {
		// Stages fall back to the built-in prompts.
		logger.Warn("prompt files unavailable: %v", err)
	} else {
		deps.Prompts = promptStore
	}
	pipeline := services.NewPipeline(deps, settings.Pipeline)

	idx, err := ledger.Open(filepath.Join(settings.Paths.RAGFolder, services.LedgerFileName))
	if err != nil {
		logger.Warn("index ledger unreadable, every file will be indexed: %v", err)
	}
	var indexLedger driven.IndexLedger
	if idx != nil {
		indexLedger = idx
	}

	return &App{
		Settings:  settings,
		AI:        aiServices,
		Ingestor:  ingestor,
		Knowledge: knowledgeStore,
		Artifacts: writer,
		Pipeline:  pipeline,
		Convert:   services.NewConvertService(ingestor, pipeline, render.New(), writer),
		Indexer:   services.NewKnowledgeIndexer(knowledgeStore, ingestor, indexLedger, settings.Paths.RAGFolder),
		repo:      repo,
	}, nil
}

// NewIngestor registers every connector and normaliser.
func NewIngestor(githubToken string) *ingest.Ingestor {
	return ingest.New().
		RegisterConnector(web.New(web.Config{})).
		RegisterConnector(filesystem.New(0)).
		RegisterConnector(github.New(github.NewClient(githubToken))).
		RegisterNormaliser(plaintext.New()).
		RegisterNormaliser(markdown.New()).
		RegisterNormaliser(htmlnorm.New()).
		RegisterNormaliser(pdf.New())
}

// Close releases the knowledge store and the AI backends.
func (a *App) Close() error {
	a.AI.Close()
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}
