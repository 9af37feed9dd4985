package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/core/ports"
)

// ReadinessPoller waits for a document's ingestion pipeline to reach the
// ready state, with bounded polling. Timeouts and transient engine
// failures are expected conditions and never surface as errors.
type ReadinessPoller struct {
	engine       ports.MemoryEngine
	pollInterval time.Duration
	callTimeout  time.Duration
	logger       *slog.Logger
}

func NewReadinessPoller(engine ports.MemoryEngine, pollInterval, callTimeout time.Duration, logger *slog.Logger) *ReadinessPoller {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadinessPoller{
		engine:       engine,
		pollInterval: pollInterval,
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

// WaitForReady returns success on the first polling cycle in which the
// engine reports the document ready. On timeout it reports the last
// captured pipeline diagnostic, remaining steps preferred over completed
// ones. A single failed poll never fails the whole wait.
func (p *ReadinessPoller) WaitForReady(ctx context.Context, documentID, index string, timeout time.Duration) domain.WaitResult {
	deadline := time.Now().Add(timeout)
	var diagnostic string

	for {
		ready, err := p.isReady(ctx, documentID, index)
		if err != nil {
			p.logger.Debug("readiness check failed",
				"document_id", documentID, "index", index, "error", err)
		}
		if ready {
			return domain.WaitResult{Ready: true}
		}

		if msg := p.captureDiagnostic(ctx, documentID, index); msg != "" {
			diagnostic = msg
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		wait := p.pollInterval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if diagnostic == "" {
				diagnostic = fmt.Sprintf("wait cancelled: %v", ctx.Err())
			}
			return domain.WaitResult{TimedOut: true, Diagnostic: diagnostic}
		case <-timer.C:
		}
	}

	if diagnostic == "" {
		diagnostic = fmt.Sprintf("document %s not ready after %s", documentID, timeout)
	}
	return domain.WaitResult{TimedOut: true, Diagnostic: diagnostic}
}

func (p *ReadinessPoller) isReady(ctx context.Context, documentID, index string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.engine.IsDocumentReady(callCtx, documentID, index)
}

func (p *ReadinessPoller) captureDiagnostic(ctx context.Context, documentID, index string) string {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	status, err := p.engine.GetDocumentStatus(callCtx, documentID, index)
	if err != nil {
		p.logger.Debug("status check failed",
			"document_id", documentID, "index", index, "error", err)
		return ""
	}
	if status == nil {
		return ""
	}
	if len(status.RemainingSteps) > 0 {
		return "pipeline steps remaining: " + strings.Join(status.RemainingSteps, ", ")
	}
	if len(status.CompletedSteps) > 0 {
		return "pipeline steps completed: " + strings.Join(status.CompletedSteps, ", ")
	}
	return ""
}
