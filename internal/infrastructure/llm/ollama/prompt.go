package ollama

import (
	"fmt"
	"strings"

	"github.com/raglab/docqa/internal/core/domain"
)

func buildAnswerPrompt(question string, results []domain.DocumentResult) string {
	var contextBuilder strings.Builder
	idx := 0
	for _, result := range results {
		source := result.SourceName
		if source == "" {
			source = result.DocumentID
		}
		for _, partition := range result.Partitions {
			idx++
			contextBuilder.WriteString(fmt.Sprintf(
				"[%d] source=%s relevance=%.3f\n%s\n\n",
				idx,
				source,
				partition.Relevance,
				partition.Text,
			))
		}
	}

	return fmt.Sprintf(`Answer user question only from context below.
If context is insufficient, say it directly.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}
