package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/raglab/docqa/internal/core/domain"
)

// engineStub implements ports.MemoryEngine with overridable behavior per
// test. Unset operations fail loudly.
type engineStub struct {
	importFn func(ctx context.Context, content []byte, fileName, documentID string, tags map[string]string, index string) (string, error)
	searchFn func(ctx context.Context, query, index string, filter domain.TagFilter, minRelevance float64, limit int) ([]domain.DocumentResult, error)
	readyFn  func(ctx context.Context, documentID, index string) (bool, error)
	statusFn func(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error)
	deleteFn func(ctx context.Context, documentID, index string) error
	listFn   func(ctx context.Context) ([]string, error)
}

func (s *engineStub) ImportDocument(ctx context.Context, content []byte, fileName, documentID string, tags map[string]string, index string) (string, error) {
	if s.importFn == nil {
		return "", errors.New("importFn not set")
	}
	return s.importFn(ctx, content, fileName, documentID, tags, index)
}

func (s *engineStub) Search(ctx context.Context, query, index string, filter domain.TagFilter, minRelevance float64, limit int) ([]domain.DocumentResult, error) {
	if s.searchFn == nil {
		return nil, errors.New("searchFn not set")
	}
	return s.searchFn(ctx, query, index, filter, minRelevance, limit)
}

func (s *engineStub) IsDocumentReady(ctx context.Context, documentID, index string) (bool, error) {
	if s.readyFn == nil {
		return false, errors.New("readyFn not set")
	}
	return s.readyFn(ctx, documentID, index)
}

func (s *engineStub) GetDocumentStatus(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error) {
	if s.statusFn == nil {
		return nil, errors.New("statusFn not set")
	}
	return s.statusFn(ctx, documentID, index)
}

func (s *engineStub) DeleteDocument(ctx context.Context, documentID, index string) error {
	if s.deleteFn == nil {
		return errors.New("deleteFn not set")
	}
	return s.deleteFn(ctx, documentID, index)
}

func (s *engineStub) ListIndexes(ctx context.Context) ([]string, error) {
	if s.listFn == nil {
		return nil, errors.New("listFn not set")
	}
	return s.listFn(ctx)
}

// registryFake records registry interactions in memory.
type registryFake struct {
	mu      sync.Mutex
	records []domain.IngestionRecord
	removed []string
	putErr  error
}

func (f *registryFake) Put(_ context.Context, fileName, documentID, index string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, domain.IngestionRecord{
		FileName:   fileName,
		DocumentID: documentID,
		Index:      index,
	})
	return nil
}

func (f *registryFake) ResolveFileName(_ context.Context, documentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.DocumentID == documentID {
			return record.FileName, nil
		}
	}
	return domain.UnknownFileName, nil
}

func (f *registryFake) RemoveAllFor(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, record := range f.records {
		if record.DocumentID != documentID {
			kept = append(kept, record)
		}
	}
	f.records = kept
	f.removed = append(f.removed, documentID)
	return nil
}

func (f *registryFake) Snapshot(_ context.Context) ([]domain.IngestionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.IngestionRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

type queueFake struct {
	mu     sync.Mutex
	events []domain.UploadEvent
	err    error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, event domain.UploadEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, domain.UploadEvent) error) error {
	return errors.New("not implemented")
}

type generatorFake struct {
	answer string
	err    error

	question string
	model    string
	results  []domain.DocumentResult
}

func (f *generatorFake) GenerateAnswer(_ context.Context, question string, results []domain.DocumentResult, model string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.question = question
	f.results = results
	f.model = model
	return f.answer, nil
}
