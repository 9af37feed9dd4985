package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/core/ports"
)

// DeletionCoordinator removes a document from whichever indexes contain
// it, tolerating callers that do not know the index and an engine that
// is only eventually consistent.
//
// Deletion policy: optimistic with bounded confirmation. The delete is
// issued without a readiness pre-check, then propagation is confirmed by
// polling the status record down to nil and re-searching the index for
// surviving chunks. A not-ready document is therefore deleted rather
// than rejected; the HTTP surface never answers 409.
type DeletionCoordinator struct {
	engine   ports.MemoryEngine
	registry ports.IngestionRegistry

	index           string
	confirmWait     time.Duration
	confirmInterval time.Duration
	callTimeout     time.Duration
	logger          *slog.Logger
}

// confirmSearchLimit bounds the broad re-search used to verify that no
// chunk of the deleted document survives.
const confirmSearchLimit = 100

func NewDeletionCoordinator(
	engine ports.MemoryEngine,
	registry ports.IngestionRegistry,
	index string,
	confirmWait, confirmInterval, callTimeout time.Duration,
	logger *slog.Logger,
) *DeletionCoordinator {
	if confirmWait <= 0 {
		confirmWait = 5 * time.Second
	}
	if confirmInterval <= 0 {
		confirmInterval = 500 * time.Millisecond
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeletionCoordinator{
		engine:          engine,
		registry:        registry,
		index:           index,
		confirmWait:     confirmWait,
		confirmInterval: confirmInterval,
		callTimeout:     callTimeout,
		logger:          logger,
	}
}

// Delete removes the document from the given index, or from the first
// candidate index that contains it when none is given. Engine errors on
// one candidate never abort the attempts on the remaining ones.
func (c *DeletionCoordinator) Delete(ctx context.Context, documentID, index string) (domain.DeleteOutcome, error) {
	if documentID == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "delete document", errors.New("document id is required"))
	}

	if index != "" {
		err := c.deleteFromIndex(ctx, documentID, index)
		switch {
		case err == nil:
			return domain.DeleteOutcomeDeleted, nil
		case domain.IsKind(err, domain.ErrDocumentNotFound):
			return domain.DeleteOutcomeNotFound, nil
		default:
			return "", err
		}
	}

	for _, candidate := range c.candidateIndexes(ctx) {
		err := c.deleteFromIndex(ctx, documentID, candidate)
		if err == nil {
			return domain.DeleteOutcomeDeleted, nil
		}
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			continue
		}
		c.logger.Warn("delete attempt failed, trying next index",
			"document_id", documentID, "index", candidate, "error", err)
	}
	return domain.DeleteOutcomeNotFound, nil
}

// candidateIndexes is the single ordered sequence of indexes to try: the
// engine's listing, then the configured ingestion index, then the
// unspecified-index sentinel as last resort.
func (c *DeletionCoordinator) candidateIndexes(ctx context.Context) []string {
	listCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	names, err := c.engine.ListIndexes(listCtx)
	if err != nil {
		c.logger.Warn("list indexes failed, falling back to configured index", "error", err)
		names = nil
	}

	seen := make(map[string]bool, len(names)+2)
	out := make([]string, 0, len(names)+2)
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range names {
		if name != "" {
			add(name)
		}
	}
	if c.index != "" {
		add(c.index)
	}
	add("")
	return out
}

func (c *DeletionCoordinator) deleteFromIndex(ctx context.Context, documentID, index string) error {
	fileName, err := c.registry.ResolveFileName(ctx, documentID)
	if err != nil {
		fileName = domain.UnknownFileName
	}

	deleteCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	err = c.engine.DeleteDocument(deleteCtx, documentID, index)
	cancel()
	if err != nil {
		return fmt.Errorf("delete %q (file %q) from index %q: %w", documentID, fileName, index, err)
	}

	if c.confirmRemoval(ctx, documentID, index) {
		c.logger.Info("deletion confirmed",
			"document_id", documentID, "file_name", fileName, "index", index)
	} else {
		c.logger.Warn("deletion issued but not confirmed within wait window",
			"document_id", documentID, "file_name", fileName, "index", index,
			"confirm_wait", c.confirmWait)
	}

	// The delete was issued either way; drop the registry entries.
	if err := c.registry.RemoveAllFor(ctx, documentID); err != nil {
		c.logger.Warn("registry cleanup failed", "document_id", documentID, "error", err)
	}
	return nil
}

// confirmRemoval treats deletion as propagated only when the status
// record is gone AND a broad re-search of the index carries no chunk of
// the document. Transient poll errors are logged and the loop continues.
func (c *DeletionCoordinator) confirmRemoval(ctx context.Context, documentID, index string) bool {
	deadline := time.Now().Add(c.confirmWait)
	for {
		if c.statusGone(ctx, documentID, index) && c.noChunksRemain(ctx, documentID, index) {
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := c.confirmInterval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func (c *DeletionCoordinator) statusGone(ctx context.Context, documentID, index string) bool {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	status, err := c.engine.GetDocumentStatus(callCtx, documentID, index)
	if err != nil {
		c.logger.Debug("status poll during delete confirmation failed",
			"document_id", documentID, "index", index, "error", err)
		return false
	}
	return status == nil
}

func (c *DeletionCoordinator) noChunksRemain(ctx context.Context, documentID, index string) bool {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	results, err := c.engine.Search(callCtx, "", index, domain.TagFilter{}, 0, confirmSearchLimit)
	if err != nil {
		c.logger.Debug("re-search during delete confirmation failed",
			"document_id", documentID, "index", index, "error", err)
		return false
	}
	for _, result := range results {
		if result.DocumentID == documentID {
			return false
		}
	}
	return true
}
