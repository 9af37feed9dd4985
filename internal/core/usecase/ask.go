package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/core/ports"
)

// DefaultModel is the model alias resolved by the completion endpoint to
// its configured generation model.
const DefaultModel = "default"

// AskUseCase answers a question from retrieved passages and assembles
// the citations behind the answer.
type AskUseCase struct {
	engine    ports.MemoryEngine
	generator ports.AnswerGenerator

	index        string
	tagKey       string
	topK         int
	minRelevance float64
}

func NewAskUseCase(engine ports.MemoryEngine, generator ports.AnswerGenerator, index, tagKey string, topK int, minRelevance float64) *AskUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &AskUseCase{
		engine:       engine,
		generator:    generator,
		index:        index,
		tagKey:       tagKey,
		topK:         topK,
		minRelevance: minRelevance,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question, model, country string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("query is required"))
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	filter := domain.TagFilter{}
	if country != "" {
		filter = domain.TagFilter{Key: uc.tagKey, Value: country}
	}

	results, err := uc.engine.Search(ctx, question, uc.index, filter, uc.minRelevance, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("search memory engine: %w", err)
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, results, model)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	citations := BuildCitations(results)
	return &domain.Answer{
		Question:  question,
		Text:      answerText,
		Model:     model,
		Citations: citations,
		Stats:     SummarizeCitations(citations),
	}, nil
}
