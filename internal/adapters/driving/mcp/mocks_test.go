package mcp

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// mockConvertService is a mock implementation of driving.ConvertService.
type mockConvertService struct {
	result  *domain.ConvertResult
	err     error
	lastReq domain.ConvertRequest
}

func (m *mockConvertService) Convert(
	_ context.Context,
	req domain.ConvertRequest,
	_ driven.ProgressSink,
) (*domain.ConvertResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	hits      []domain.KnowledgeHit
	stats     domain.IndexStats
	count     int
	err       error
	lastK     int
	lastType  string
	lastForce bool
}

func (m *mockKnowledgeService) IndexFolder(_ context.Context, force bool) (domain.IndexStats, error) {
	m.lastForce = force
	return m.stats, m.err
}

func (m *mockKnowledgeService) Query(_ context.Context, _ string, k int, itemType string) ([]domain.KnowledgeHit, error) {
	m.lastK = k
	m.lastType = itemType
	return m.hits, m.err
}

func (m *mockKnowledgeService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

func (m *mockKnowledgeService) Folder() string {
	return "rag"
}

func validPorts() *Ports {
	return &Ports{
		Convert:   &mockConvertService{},
		Knowledge: &mockKnowledgeService{},
	}
}
