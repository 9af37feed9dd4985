package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/core/ports"
)

// UploadUseCase submits files to the memory engine, records them in the
// local ingestion registry and optionally blocks until the pipeline is
// ready. Files in a batch are ingested independently; a failure leaves
// prior successes committed.
type UploadUseCase struct {
	engine   ports.MemoryEngine
	registry ports.IngestionRegistry
	queue    ports.MessageQueue
	poller   *ReadinessPoller

	index  string
	tagKey string
	logger *slog.Logger
}

func NewUploadUseCase(
	engine ports.MemoryEngine,
	registry ports.IngestionRegistry,
	queue ports.MessageQueue,
	poller *ReadinessPoller,
	index, tagKey string,
	logger *slog.Logger,
) *UploadUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadUseCase{
		engine:   engine,
		registry: registry,
		queue:    queue,
		poller:   poller,
		index:    index,
		tagKey:   tagKey,
		logger:   logger,
	}
}

func (uc *UploadUseCase) Upload(ctx context.Context, files []domain.UploadFile, country string, wait time.Duration) ([]domain.UploadReceipt, error) {
	nonEmpty := make([]domain.UploadFile, 0, len(files))
	for _, file := range files {
		if file.Name != "" && len(file.Content) > 0 {
			nonEmpty = append(nonEmpty, file)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("no non-empty files provided"))
	}

	tags := map[string]string{}
	if country != "" {
		tags[uc.tagKey] = country
	}

	receipts := make([]domain.UploadReceipt, 0, len(nonEmpty))
	for _, file := range nonEmpty {
		receipt, err := uc.ingestOne(ctx, file, tags, wait)
		if err != nil {
			// Earlier files stay committed; report what succeeded.
			return receipts, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (uc *UploadUseCase) ingestOne(ctx context.Context, file domain.UploadFile, tags map[string]string, wait time.Duration) (domain.UploadReceipt, error) {
	documentID := uuid.NewString()

	importedID, err := uc.engine.ImportDocument(ctx, file.Content, file.Name, documentID, tags, uc.index)
	if err != nil {
		uc.logger.Error("document import failed",
			"file_name", file.Name, "index", uc.index, "error", err)
		return domain.UploadReceipt{}, err
	}
	if importedID != "" {
		documentID = importedID
	}

	if err := uc.registry.Put(ctx, file.Name, documentID, uc.index); err != nil {
		uc.logger.Warn("registry update failed",
			"file_name", file.Name, "document_id", documentID, "error", err)
	}

	// The watcher is advisory; the engine already owns the pipeline, so
	// a publish failure must not fail the upload.
	event := domain.UploadEvent{
		DocumentID: documentID,
		Index:      uc.index,
		UploadedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishDocumentUploaded(ctx, event); err != nil {
		uc.logger.Warn("upload event publish failed",
			"document_id", documentID, "error", err)
	}

	receipt := domain.UploadReceipt{
		FileName:   file.Name,
		DocumentID: documentID,
		Index:      uc.index,
	}
	if wait > 0 && uc.poller != nil {
		result := uc.poller.WaitForReady(ctx, documentID, uc.index, wait)
		receipt.Wait = &result
		if result.TimedOut {
			uc.logger.Warn("inline readiness wait timed out",
				"document_id", documentID, "diagnostic", result.Diagnostic)
		}
	}
	return receipt, nil
}
