package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// --- Mock implementations ---

// genCall records one generator request.
type genCall struct {
	Prompt   string
	System   string
	Category domain.TaskCategory
}

// mockGenerator answers by task category. Unset handlers use defaults:
// clean echoes the raw content, rewrite returns a short draft, glossary
// returns no terms and the critic approves.
type mockGenerator struct {
	mu    sync.Mutex
	calls []genCall

	clean    func(call genCall) (string, error)
	rewrite  func(call genCall, n int) (string, error)
	glossary func(call genCall) (string, error)
	critic   func(call genCall, n int) (string, error)
}

func (m *mockGenerator) record(call genCall) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	n := 0
	for _, c := range m.calls {
		if c.Category == call.Category {
			n++
		}
	}
	return n
}

func (m *mockGenerator) GenerateText(_ context.Context, prompt, system string, category domain.TaskCategory) (string, error) {
	call := genCall{Prompt: prompt, System: system, Category: category}
	n := m.record(call)

	switch category {
	case domain.TaskClean:
		if m.clean != nil {
			return m.clean(call)
		}
		return strings.TrimPrefix(prompt, "Clean this content:\n\n"), nil
	case domain.TaskRewrite:
		if m.rewrite != nil {
			return m.rewrite(call, n)
		}
		return fmt.Sprintf("# Draft %d\n\nRewritten text.", n), nil
	default:
		return "", fmt.Errorf("unexpected text category %s", category)
	}
}

func (m *mockGenerator) GenerateStructured(
	_ context.Context,
	prompt, system string,
	category domain.TaskCategory,
	out any,
) error {
	call := genCall{Prompt: prompt, System: system, Category: category}
	n := m.record(call)

	var (
		raw string
		err error
	)
	switch category {
	case domain.TaskGlossary:
		raw = `{"terms": []}`
		if m.glossary != nil {
			raw, err = m.glossary(call)
		}
	case domain.TaskCritic:
		raw = `{"approved": true, "feedback": ""}`
		if m.critic != nil {
			raw, err = m.critic(call, n)
		}
	default:
		return fmt.Errorf("unexpected structured category %s", category)
	}
	if err != nil {
		return err
	}
	if decodeErr := json.Unmarshal([]byte(raw), out); decodeErr != nil {
		return &domain.SchemaError{Shape: category.String(), Raw: raw, Err: decodeErr}
	}
	return nil
}

func (m *mockGenerator) callsFor(category domain.TaskCategory) []genCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []genCall
	for _, c := range m.calls {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// mockKnowledgeStore records additions and serves canned query results.
type mockKnowledgeStore struct {
	mu      sync.Mutex
	added   []domain.KnowledgeItem
	addErr  error
	results []string
	queries []string
	lastK   int
}

func (m *mockKnowledgeStore) Add(_ context.Context, items []domain.KnowledgeItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, items...)
	return nil
}

func (m *mockKnowledgeStore) Query(_ context.Context, text string, k int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	m.lastK = k
	if k < len(m.results) {
		return m.results[:k]
	}
	return m.results
}

// mockSearcher is a mockKnowledgeStore with search and count.
type mockSearcher struct {
	mockKnowledgeStore
	hits       []domain.KnowledgeHit
	lastFilter map[string]string
}

func (m *mockSearcher) Search(_ context.Context, _ string, _ int, filter map[string]string) ([]domain.KnowledgeHit, error) {
	m.lastFilter = filter
	return m.hits, nil
}

func (m *mockSearcher) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.added), nil
}

// mockImageGenerator fails for descriptions listed in fail.
type mockImageGenerator struct {
	mu    sync.Mutex
	fail  map[string]bool
	data  []byte
	calls []string
}

func (m *mockImageGenerator) Generate(_ context.Context, description string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, description)
	if m.fail[description] {
		return nil, fmt.Errorf("%w: backend refused %q", domain.ErrImageUnavailable, description)
	}
	if m.data != nil {
		return m.data, nil
	}
	return []byte("\x89PNG\r\n\x1a\nfake"), nil
}

func (m *mockImageGenerator) Name() string { return "mock" }

// mockArtifactWriter keeps written files in memory.
type mockArtifactWriter struct {
	mu    sync.Mutex
	dir   string
	files map[string][]byte
	err   error
}

func newMockArtifactWriter() *mockArtifactWriter {
	return &mockArtifactWriter{dir: "/out", files: make(map[string][]byte)}
}

func (m *mockArtifactWriter) Write(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.files[name] = data
	return name, nil
}

func (m *mockArtifactWriter) Dir() string { return m.dir }

func (m *mockArtifactWriter) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for n := range m.files {
		out = append(out, n)
	}
	return out
}

// mockRenderer returns fixed HTML and PDF bytes.
type mockRenderer struct {
	err      error
	title    string
	markdown string
}

func (m *mockRenderer) Render(markdown, title string, style domain.Style, _ string) (*domain.Rendered, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.title = title
	m.markdown = markdown
	return &domain.Rendered{Title: title, Style: style, HTML: "<h1>" + title + "</h1>", PDF: []byte("%PDF-1.3")}, nil
}

// mockIngestor serves fixed documents, or reads files from disk when
// readFiles is set.
type mockIngestor struct {
	docs      map[string]*domain.SourceDocument
	fail      map[string]error
	readFiles bool
}

func (m *mockIngestor) Parse(_ context.Context, source string) (*domain.SourceDocument, error) {
	if err, ok := m.fail[source]; ok {
		return nil, err
	}
	if doc, ok := m.docs[source]; ok {
		return doc, nil
	}
	if m.readFiles {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
		}
		return &domain.SourceDocument{Source: source, Content: string(data)}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFetch, source)
}

// mockPromptStore serves overrides and fails for everything else.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (m *mockPromptStore) Reload() {}

// mockLedger is an in-memory driven.IndexLedger.
type mockLedger struct {
	hashes  map[string]bool
	saves   int
	saveErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{hashes: make(map[string]bool)}
}

func (m *mockLedger) Has(hash string) bool { return m.hashes[hash] }
func (m *mockLedger) Record(hash string)   { m.hashes[hash] = true }
func (m *mockLedger) Save() error {
	m.saves++
	return m.saveErr
}

// eventRecorder collects stage events.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.StageEvent
}

func (r *eventRecorder) OnStage(e domain.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) stages() []domain.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Stage, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}

// Compile-time checks.
var (
	_ driven.Generator         = (*mockGenerator)(nil)
	_ driven.KnowledgeStore    = (*mockKnowledgeStore)(nil)
	_ driven.KnowledgeSearcher = (*mockSearcher)(nil)
	_ driven.ImageGenerator    = (*mockImageGenerator)(nil)
	_ driven.ArtifactWriter    = (*mockArtifactWriter)(nil)
	_ driven.Renderer          = (*mockRenderer)(nil)
	_ driven.Ingestor          = (*mockIngestor)(nil)
	_ driven.PromptStore       = (*mockPromptStore)(nil)
	_ driven.IndexLedger       = (*mockLedger)(nil)
	_ driven.ProgressSink      = (*eventRecorder)(nil)
)
