package ports

import (
	"context"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
)

// DocumentUploader ingests a batch of files. Files are independent: a
// failure does not roll back earlier successes in the same batch. A
// non-zero wait blocks each file until its pipeline is ready or the wait
// elapses.
type DocumentUploader interface {
	Upload(ctx context.Context, files []domain.UploadFile, country string, wait time.Duration) ([]domain.UploadReceipt, error)
}

// DocumentCatalog answers "what is indexed", reconciling the engine
// with the local ingestion registry.
type DocumentCatalog interface {
	ListDocuments(ctx context.Context, country string, limit int) (domain.CatalogPage, error)
}

// DocumentRemover deletes a document from whichever indexes contain it.
type DocumentRemover interface {
	Delete(ctx context.Context, documentID, index string) (domain.DeleteOutcome, error)
}

// ReadinessWaiter blocks until a document's ingestion pipeline reports
// ready, or the timeout elapses.
type ReadinessWaiter interface {
	WaitForReady(ctx context.Context, documentID, index string, timeout time.Duration) domain.WaitResult
}

// QuestionService answers a natural-language question from indexed
// documents, with citations.
type QuestionService interface {
	Ask(ctx context.Context, question, model, country string) (*domain.Answer, error)
}
