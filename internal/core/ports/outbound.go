package ports

import (
	"context"

	"github.com/raglab/docqa/internal/core/domain"
)

// MemoryEngine is the external retrieval/ingestion engine. It owns
// extraction, partitioning, embedding and persistence; this service only
// orchestrates around it. The index state is eventually consistent:
// imports and deletes may lag behind reads.
type MemoryEngine interface {
	// ImportDocument submits content for ingestion and returns the
	// engine-side document id. Invalid index names and content over the
	// engine's batching limits surface as distinct error kinds.
	ImportDocument(ctx context.Context, content []byte, fileName, documentID string, tags map[string]string, index string) (string, error)
	Search(ctx context.Context, query, index string, filter domain.TagFilter, minRelevance float64, limit int) ([]domain.DocumentResult, error)
	IsDocumentReady(ctx context.Context, documentID, index string) (bool, error)
	// GetDocumentStatus returns nil with no error when the pipeline
	// record no longer exists.
	GetDocumentStatus(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error)
	// DeleteDocument is not guaranteed idempotent by the engine; a
	// missing document reports domain.ErrDocumentNotFound.
	DeleteDocument(ctx context.Context, documentID, index string) error
	ListIndexes(ctx context.Context) ([]string, error)
}

// IngestionRegistry is the process-local fallback record of what was
// ingested, keyed by case-insensitive file name.
type IngestionRegistry interface {
	Put(ctx context.Context, fileName, documentID, index string) error
	// ResolveFileName returns domain.UnknownFileName when no record
	// matches. The result is for logs and display only.
	ResolveFileName(ctx context.Context, documentID string) (string, error)
	// RemoveAllFor removes every record carrying the document id,
	// handling duplicates defensively.
	RemoveAllFor(ctx context.Context, documentID string) error
	// Snapshot returns a point-in-time copy ordered by file name.
	Snapshot(ctx context.Context) ([]domain.IngestionRecord, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved
// context. An empty or "default" model resolves to the configured one.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, results []domain.DocumentResult, model string) (string, error)
}

// MessageQueue carries upload events to the readiness watcher.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, event domain.UploadEvent) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) error
}
