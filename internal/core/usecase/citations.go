package usecase

import (
	"math"
	"sort"

	"github.com/raglab/docqa/internal/core/domain"
)

// citationPartitionLimit caps how many chunks back each citation.
const citationPartitionLimit = 3

// BuildCitations compacts raw per-document search results into citation
// payloads: top partitions by relevance, scores rounded to three
// decimals, identifying fields passed through verbatim. The engine's
// document ordering is preserved; re-sorting documents is a presentation
// concern.
func BuildCitations(results []domain.DocumentResult) []domain.Citation {
	out := make([]domain.Citation, 0, len(results))
	for _, result := range results {
		partitions := make([]domain.Partition, len(result.Partitions))
		copy(partitions, result.Partitions)
		sort.SliceStable(partitions, func(i, j int) bool {
			return partitions[i].Relevance > partitions[j].Relevance
		})
		if len(partitions) > citationPartitionLimit {
			partitions = partitions[:citationPartitionLimit]
		}

		cited := make([]domain.CitationPartition, 0, len(partitions))
		for _, partition := range partitions {
			cited = append(cited, domain.CitationPartition{
				PartitionNumber: partition.PartitionNumber,
				SectionNumber:   partition.SectionNumber,
				Relevance:       round3(partition.Relevance),
				Text:            partition.Text,
			})
		}

		out = append(out, domain.Citation{
			Index:       result.Index,
			DocumentID:  result.DocumentID,
			SourceName:  result.SourceName,
			ContentType: result.ContentType,
			SourceURL:   result.SourceURL,
			Link:        result.Link,
			Partitions:  cited,
		})
	}
	return out
}

// SummarizeCitations counts distinct documents and cited chunks for
// compact display.
func SummarizeCitations(citations []domain.Citation) domain.CitationStats {
	stats := domain.CitationStats{Documents: len(citations)}
	for _, citation := range citations {
		stats.Chunks += len(citation.Partitions)
	}
	return stats
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
