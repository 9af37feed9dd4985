package memoryengine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(server.URL, 5*time.Second, nil, logger), server
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestImportDocumentSendsMultipartAndReturnsID(t *testing.T) {
	var capturedDocumentID, capturedTag, capturedFileName string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes/docs/documents" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		capturedDocumentID = r.FormValue("documentId")
		capturedTag = r.FormValue("tags")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		capturedFileName = header.Filename
		_, _ = w.Write([]byte(`{"document_id":"engine-id"}`))
	}))

	id, err := client.ImportDocument(context.Background(), []byte("payload"), "report.txt", "local-id", map[string]string{"country": "NL"}, "docs")
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if id != "engine-id" {
		t.Fatalf("imported id = %q, want engine-id", id)
	}
	if capturedDocumentID != "local-id" {
		t.Fatalf("documentId field = %q", capturedDocumentID)
	}
	if capturedTag != "country:NL" {
		t.Fatalf("tags field = %q", capturedTag)
	}
	if capturedFileName != "report.txt" {
		t.Fatalf("file name = %q", capturedFileName)
	}
}

func TestImportDocumentMapsBlankIndexToDefault(t *testing.T) {
	var capturedPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))

	if _, err := client.ImportDocument(context.Background(), []byte("x"), "a.txt", "id", nil, ""); err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	if capturedPath != "/indexes/default/documents" {
		t.Fatalf("path = %q, want /indexes/default/documents", capturedPath)
	}
}

func TestSearchDecodesMixedFieldCasing(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload["query"] != "tax rules" {
			t.Fatalf("query = %v", payload["query"])
		}
		_, _ = w.Write([]byte(`{"results":[
			{"DocumentId":"doc-1","index":"docs","source_name":"report.txt","sourceContentType":"text/plain",
			 "partitions":[
				{"partition_number":2,"SectionNumber":1,"relevance":0.91,"text":"first","tags":{"country":["NL"]}},
				{"partitionNumber":3,"sectionNumber":1,"Relevance":0.42,"text":"second","tags":{"country":"NL"}}
			 ]}
		]}`))
	}))

	results, err := client.Search(context.Background(), "tax rules", "docs", domain.TagFilter{Key: "country", Value: "NL"}, 0.5, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	doc := results[0]
	if doc.DocumentID != "doc-1" || doc.SourceName != "report.txt" || doc.ContentType != "text/plain" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Partitions) != 2 {
		t.Fatalf("partitions = %d, want 2", len(doc.Partitions))
	}
	first := doc.Partitions[0]
	if first.PartitionNumber != 2 || first.SectionNumber != 1 || first.Relevance != 0.91 || first.Text != "first" {
		t.Fatalf("unexpected partition: %+v", first)
	}
	if got := doc.Partitions[1].Tags["country"]; len(got) != 1 || got[0] != "NL" {
		t.Fatalf("scalar tag not normalized: %v", got)
	}
}

func TestIsDocumentReadyTreatsNotFoundAsNotReady(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	ready, err := client.IsDocumentReady(context.Background(), "missing", "docs")
	if err != nil {
		t.Fatalf("IsDocumentReady() error = %v", err)
	}
	if ready {
		t.Fatalf("expected not ready for missing document")
	}
}

func TestGetDocumentStatusReturnsNilWhenRecordGone(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	status, err := client.GetDocumentStatus(context.Background(), "gone", "docs")
	if err != nil {
		t.Fatalf("GetDocumentStatus() error = %v", err)
	}
	if status != nil {
		t.Fatalf("status = %+v, want nil", status)
	}
}

func TestGetDocumentStatusDecodesSteps(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes/docs/documents/doc-1/status" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"remaining_steps":["gen_embeddings","save_records"],"CompletedSteps":["extract"]}`))
	}))

	status, err := client.GetDocumentStatus(context.Background(), "doc-1", "docs")
	if err != nil {
		t.Fatalf("GetDocumentStatus() error = %v", err)
	}
	if status == nil || len(status.RemainingSteps) != 2 || status.RemainingSteps[0] != "gen_embeddings" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if len(status.CompletedSteps) != 1 || status.CompletedSteps[0] != "extract" {
		t.Fatalf("unexpected completed steps: %+v", status)
	}
}

func TestDeleteDocumentMapsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	err := client.DeleteDocument(context.Background(), "missing", "docs")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want document-not-found kind", err)
	}
}

func TestImportDocumentMapsIndexConfigRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index 'docs' is not configured for this tenant", http.StatusBadRequest)
	}))

	_, err := client.ImportDocument(context.Background(), []byte("x"), "a.txt", "id", nil, "docs")
	if !domain.IsKind(err, domain.ErrIndexConfig) {
		t.Fatalf("error = %v, want index-config kind", err)
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("engine message lost: %v", err)
	}
}

func TestImportDocumentMapsOversizedBatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "embedding batch too large", http.StatusBadRequest)
	}))

	_, err := client.ImportDocument(context.Background(), []byte("x"), "a.txt", "id", nil, "docs")
	if !domain.IsKind(err, domain.ErrCapacity) {
		t.Fatalf("error = %v, want capacity kind", err)
	}
}

func TestSearchWrapsServerErrorAsTemporary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine overloaded", http.StatusServiceUnavailable)
	}))

	_, err := client.Search(context.Background(), "q", "docs", domain.TagFilter{}, 0, 5)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error = %v, want temporary kind", err)
	}
}

func TestListIndexesAcceptsObjectAndStringEntries(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/indexes" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"docs"},"archive"]}`))
	}))

	names, err := client.ListIndexes(context.Background())
	if err != nil {
		t.Fatalf("ListIndexes() error = %v", err)
	}
	if len(names) != 2 || names[0] != "docs" || names[1] != "archive" {
		t.Fatalf("names = %v", names)
	}
}
