package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/raglab/docqa/internal/config"
	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/observability/metrics"
)

type uploaderFake struct {
	uploadFn func(ctx context.Context, files []domain.UploadFile, country string, wait time.Duration) ([]domain.UploadReceipt, error)
}

func (f *uploaderFake) Upload(ctx context.Context, files []domain.UploadFile, country string, wait time.Duration) ([]domain.UploadReceipt, error) {
	return f.uploadFn(ctx, files, country, wait)
}

type catalogFake struct {
	listFn func(ctx context.Context, country string, limit int) (domain.CatalogPage, error)
}

func (f *catalogFake) ListDocuments(ctx context.Context, country string, limit int) (domain.CatalogPage, error) {
	return f.listFn(ctx, country, limit)
}

type removerFake struct {
	deleteFn func(ctx context.Context, documentID, index string) (domain.DeleteOutcome, error)
}

func (f *removerFake) Delete(ctx context.Context, documentID, index string) (domain.DeleteOutcome, error) {
	return f.deleteFn(ctx, documentID, index)
}

type askerFake struct {
	askFn func(ctx context.Context, question, model, country string) (*domain.Answer, error)
}

func (f *askerFake) Ask(ctx context.Context, question, model, country string) (*domain.Answer, error) {
	return f.askFn(ctx, question, model, country)
}

type engineFake struct {
	readyFn  func(ctx context.Context, documentID, index string) (bool, error)
	statusFn func(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error)
}

func (f *engineFake) ImportDocument(context.Context, []byte, string, string, map[string]string, string) (string, error) {
	return "", nil
}

func (f *engineFake) Search(context.Context, string, string, domain.TagFilter, float64, int) ([]domain.DocumentResult, error) {
	return nil, nil
}

func (f *engineFake) IsDocumentReady(ctx context.Context, documentID, index string) (bool, error) {
	if f.readyFn == nil {
		return false, nil
	}
	return f.readyFn(ctx, documentID, index)
}

func (f *engineFake) GetDocumentStatus(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error) {
	if f.statusFn == nil {
		return nil, nil
	}
	return f.statusFn(ctx, documentID, index)
}

func (f *engineFake) DeleteDocument(context.Context, string, string) error { return nil }

func (f *engineFake) ListIndexes(context.Context) ([]string, error) { return nil, nil }

type testDeps struct {
	uploader *uploaderFake
	catalog  *catalogFake
	remover  *removerFake
	asker    *askerFake
	engine   *engineFake
}

func defaultTestDeps() testDeps {
	return testDeps{
		uploader: &uploaderFake{uploadFn: func(context.Context, []domain.UploadFile, string, time.Duration) ([]domain.UploadReceipt, error) {
			return nil, nil
		}},
		catalog: &catalogFake{listFn: func(context.Context, string, int) (domain.CatalogPage, error) {
			return domain.CatalogPage{}, nil
		}},
		remover: &removerFake{deleteFn: func(context.Context, string, string) (domain.DeleteOutcome, error) {
			return domain.DeleteOutcomeDeleted, nil
		}},
		asker: &askerFake{askFn: func(context.Context, string, string, string) (*domain.Answer, error) {
			return &domain.Answer{}, nil
		}},
		engine: &engineFake{},
	}
}

func newTestHandler(cfg config.Config, deps testDeps) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(
		cfg,
		deps.uploader,
		deps.catalog,
		deps.remover,
		deps.asker,
		deps.engine,
		metrics.NewHTTPServerMetrics(serviceName),
		logger,
	)
	return router.Handler()
}
