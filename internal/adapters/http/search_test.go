package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raglab/docqa/internal/config"
	"github.com/raglab/docqa/internal/core/domain"
)

func TestSearchRejectsBlankQuery(t *testing.T) {
	handler := newTestHandler(config.Config{}, defaultTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/search?query=%20%20", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestSearchReturnsAnswerWithCitations(t *testing.T) {
	deps := defaultTestDeps()
	var capturedModel, capturedCountry string
	deps.asker.askFn = func(_ context.Context, question, model, country string) (*domain.Answer, error) {
		capturedModel = model
		capturedCountry = country
		return &domain.Answer{
			Question: question,
			Text:     "the rate is 21%",
			Model:    "default",
			Citations: []domain.Citation{{
				DocumentID: "doc-1",
				SourceName: "vat.txt",
				Partitions: []domain.CitationPartition{{Relevance: 0.921, Text: "rate text"}},
			}},
			Stats: domain.CitationStats{Documents: 1, Chunks: 1},
		}, nil
	}
	handler := newTestHandler(config.Config{}, deps)

	req := httptest.NewRequest(http.MethodGet, "/search?query=vat+rate&country=NL", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", res.Code, res.Body.String())
	}
	if capturedModel != "" || capturedCountry != "NL" {
		t.Fatalf("forwarded (%q, %q), want (\"\", NL)", capturedModel, capturedCountry)
	}

	var payload struct {
		Question  string `json:"question"`
		Answer    string `json:"answer"`
		Model     string `json:"model"`
		Citations []struct {
			DocumentID string `json:"document_id"`
		} `json:"citations"`
		Stats struct {
			Documents int `json:"documents"`
			Chunks    int `json:"chunks"`
		} `json:"citation_stats"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Answer != "the rate is 21%" || payload.Model != "default" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.Citations) != 1 || payload.Citations[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected citations: %+v", payload.Citations)
	}
	if payload.Stats.Documents != 1 || payload.Stats.Chunks != 1 {
		t.Fatalf("unexpected stats: %+v", payload.Stats)
	}
}

func TestSearchMapsTemporaryFailureTo503(t *testing.T) {
	deps := defaultTestDeps()
	deps.asker.askFn = func(context.Context, string, string, string) (*domain.Answer, error) {
		return nil, domain.WrapError(domain.ErrTemporary, "search", fmt.Errorf("engine unreachable"))
	}
	handler := newTestHandler(config.Config{}, deps)

	req := httptest.NewRequest(http.MethodGet, "/search?query=anything", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.Code)
	}
}
