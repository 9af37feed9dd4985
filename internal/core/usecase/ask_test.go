package usecase

import (
	"context"
	"testing"

	"github.com/raglab/docqa/internal/core/domain"
)

func newAskerForTest(engine *engineStub, generator *generatorFake) *AskUseCase {
	return NewAskUseCase(engine, generator, "docs", "country", 5, 0)
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	asker := newAskerForTest(&engineStub{}, &generatorFake{})

	_, err := asker.Ask(context.Background(), "   ", "", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input kind, got %v", err)
	}
}

func TestAskDefaultsModelAndBuildsCitations(t *testing.T) {
	engine := &engineStub{
		searchFn: func(context.Context, string, string, domain.TagFilter, float64, int) ([]domain.DocumentResult, error) {
			return []domain.DocumentResult{
				{
					DocumentID: "doc-1", Index: "docs", SourceName: "report.txt",
					Partitions: []domain.Partition{
						{PartitionNumber: 0, Relevance: 0.4, Text: "a"},
						{PartitionNumber: 1, Relevance: 0.9, Text: "b"},
						{PartitionNumber: 2, Relevance: 0.2, Text: "c"},
						{PartitionNumber: 3, Relevance: 0.7, Text: "d"},
					},
				},
			}, nil
		},
	}
	generator := &generatorFake{answer: "the answer"}
	asker := newAskerForTest(engine, generator)

	answer, err := asker.Ask(context.Background(), "what is foo?", "", "")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Model != DefaultModel {
		t.Fatalf("expected model %q, got %q", DefaultModel, answer.Model)
	}
	if generator.model != DefaultModel {
		t.Fatalf("generator must receive the resolved model, got %q", generator.model)
	}
	if answer.Text != "the answer" || answer.Question != "what is foo?" {
		t.Fatalf("unexpected answer %+v", answer)
	}
	for _, citation := range answer.Citations {
		if len(citation.Partitions) > 3 {
			t.Fatalf("citation exceeds 3 partitions: %+v", citation)
		}
	}
	if answer.Stats.Documents != 1 || answer.Stats.Chunks != 3 {
		t.Fatalf("unexpected stats %+v", answer.Stats)
	}
}

func TestAskPassesCountryFilter(t *testing.T) {
	var captured domain.TagFilter
	engine := &engineStub{
		searchFn: func(_ context.Context, _, _ string, filter domain.TagFilter, _ float64, _ int) ([]domain.DocumentResult, error) {
			captured = filter
			return nil, nil
		},
	}
	asker := newAskerForTest(engine, &generatorFake{answer: "no context"})

	if _, err := asker.Ask(context.Background(), "q", "mistral", "DE"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if captured.Key != "country" || captured.Value != "DE" {
		t.Fatalf("expected country filter, got %+v", captured)
	}
}
