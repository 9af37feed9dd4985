package memoryengine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/infrastructure/resilience"
)

// defaultIndex is what the engine calls an index whose name was left
// blank by the caller. The sentinel stays inside this package.
const defaultIndex = "default"

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
		logger:     logger,
	}
}

func indexOrDefault(index string) string {
	if strings.TrimSpace(index) == "" {
		return defaultIndex
	}
	return index
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyEngineError)
}

func (c *Client) ImportDocument(ctx context.Context, content []byte, fileName, documentID string, tags map[string]string, index string) (string, error) {
	ix := indexOrDefault(index)
	fields := map[string][]string{
		"documentId": {documentID},
		"index":      {ix},
	}
	for key, value := range tags {
		fields["tags"] = append(fields["tags"], key+":"+value)
	}

	var importedID string
	call := func(ctx context.Context) error {
		raw, err := c.postMultipart(ctx, "/indexes/"+url.PathEscape(ix)+"/documents", fields, fileName, content, "import")
		if err != nil {
			return err
		}
		importedID, err = decodeImportedID(raw)
		return err
	}
	if err := c.execute(ctx, "memory.import", call); err != nil {
		return "", c.wrapEngineError("import document", ix, err)
	}
	return importedID, nil
}

func (c *Client) Search(ctx context.Context, query, index string, filter domain.TagFilter, minRelevance float64, limit int) ([]domain.DocumentResult, error) {
	ix := indexOrDefault(index)
	request := map[string]any{
		"index":        ix,
		"query":        query,
		"minRelevance": minRelevance,
		"limit":        limit,
	}
	if !filter.IsZero() {
		request["filter"] = map[string][]string{filter.Key: {filter.Value}}
	}

	var results []domain.DocumentResult
	call := func(ctx context.Context) error {
		raw, err := c.postJSON(ctx, "/search", request, "search")
		if err != nil {
			return err
		}
		results, err = decodeSearchResults(raw)
		return err
	}
	if err := c.execute(ctx, "memory.search", call); err != nil {
		return nil, c.wrapEngineError("search", ix, err)
	}
	return results, nil
}

func (c *Client) IsDocumentReady(ctx context.Context, documentID, index string) (bool, error) {
	ix := indexOrDefault(index)
	var ready bool
	call := func(ctx context.Context) error {
		raw, err := c.getRaw(ctx, c.documentPath(ix, documentID)+"/ready", "ready")
		if err != nil {
			return err
		}
		ready, err = decodeReady(raw)
		return err
	}
	err := c.execute(ctx, "memory.ready", call)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return false, nil
		}
		return false, c.wrapEngineError("document ready", ix, err)
	}
	return ready, nil
}

// GetDocumentStatus returns (nil, nil) once the engine has forgotten the
// document, which is how deletion completion is observed.
func (c *Client) GetDocumentStatus(ctx context.Context, documentID, index string) (*domain.PipelineStatus, error) {
	ix := indexOrDefault(index)
	var status *domain.PipelineStatus
	call := func(ctx context.Context) error {
		raw, err := c.getRaw(ctx, c.documentPath(ix, documentID)+"/status", "status")
		if err != nil {
			return err
		}
		status, err = decodeStatus(raw)
		return err
	}
	err := c.execute(ctx, "memory.status", call)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, c.wrapEngineError("document status", ix, err)
	}
	return status, nil
}

func (c *Client) DeleteDocument(ctx context.Context, documentID, index string) error {
	ix := indexOrDefault(index)
	call := func(ctx context.Context) error {
		return c.delete(ctx, c.documentPath(ix, documentID), "delete")
	}
	if err := c.execute(ctx, "memory.delete", call); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return domain.WrapError(domain.ErrDocumentNotFound, "delete document",
				fmt.Errorf("document %s not in index %s", documentID, ix))
		}
		return c.wrapEngineError("delete document", ix, err)
	}
	return nil
}

func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	var names []string
	call := func(ctx context.Context) error {
		raw, err := c.getRaw(ctx, "/indexes", "list indexes")
		if err != nil {
			return err
		}
		names, err = decodeIndexNames(raw)
		return err
	}
	if err := c.execute(ctx, "memory.indexes", call); err != nil {
		return nil, c.wrapEngineError("list indexes", "", err)
	}
	return names, nil
}

func (c *Client) documentPath(index, documentID string) string {
	return "/indexes/" + url.PathEscape(index) + "/documents/" + url.PathEscape(documentID)
}
