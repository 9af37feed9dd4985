package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/core/ports"
)

const previewMaxRunes = 200

// CatalogUseCase enumerates indexed documents by querying the engine
// broadly and grouping chunk results into document-level summaries,
// falling back to the local registry when the engine cannot enumerate.
//
// Known limitation: the fallback activates only when the engine returns
// zero groups. A non-empty but incomplete engine result is returned
// as-is; partial omission is not detectable on this read path.
type CatalogUseCase struct {
	engine   ports.MemoryEngine
	registry ports.IngestionRegistry

	index        string
	tagKey       string
	defaultLimit int
	logger       *slog.Logger
}

func NewCatalogUseCase(engine ports.MemoryEngine, registry ports.IngestionRegistry, index, tagKey string, defaultLimit int, logger *slog.Logger) *CatalogUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogUseCase{
		engine:       engine,
		registry:     registry,
		index:        index,
		tagKey:       tagKey,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (uc *CatalogUseCase) ListDocuments(ctx context.Context, country string, limit int) (domain.CatalogPage, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	filter := domain.TagFilter{}
	if country != "" {
		filter = domain.TagFilter{Key: uc.tagKey, Value: country}
	}

	results, err := uc.engine.Search(ctx, "", uc.index, filter, 0, limit)
	if err != nil {
		return domain.CatalogPage{}, fmt.Errorf("broad search: %w", err)
	}

	summaries := groupResults(results, uc.tagKey)
	if len(summaries) == 0 {
		if cached := uc.cacheFallback(ctx); len(cached) > 0 {
			return domain.CatalogPage{Documents: cached, CacheDerived: true}, nil
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].MaxRelevance > summaries[j].MaxRelevance
	})
	return domain.CatalogPage{Documents: summaries}, nil
}

// cacheFallback synthesizes minimal summaries from the registry. Some
// engine configurations cannot enumerate without a search hit; without
// this, freshly ingested documents would appear missing.
func (uc *CatalogUseCase) cacheFallback(ctx context.Context) []domain.DocumentSummary {
	records, err := uc.registry.Snapshot(ctx)
	if err != nil {
		uc.logger.Warn("registry snapshot failed during catalog fallback", "error", err)
		return nil
	}

	out := make([]domain.DocumentSummary, 0, len(records))
	for _, record := range records {
		out = append(out, domain.DocumentSummary{
			Index:      record.Index,
			DocumentID: record.DocumentID,
			SourceName: record.FileName,
			Tags:       []string{},
		})
	}
	return out
}

type documentKey struct {
	index       string
	documentID  string
	sourceName  string
	contentType string
	sourceURL   string
	link        string
}

// groupResults merges chunk results sharing the composite document
// identity into one summary per document.
func groupResults(results []domain.DocumentResult, tagKey string) []domain.DocumentSummary {
	order := make([]documentKey, 0, len(results))
	groups := make(map[documentKey]*documentGroup, len(results))

	for _, result := range results {
		key := documentKey{
			index:       result.Index,
			documentID:  result.DocumentID,
			sourceName:  result.SourceName,
			contentType: result.ContentType,
			sourceURL:   result.SourceURL,
			link:        result.Link,
		}
		group, ok := groups[key]
		if !ok {
			group = &documentGroup{tags: map[string]bool{}}
			groups[key] = group
			order = append(order, key)
		}
		for _, partition := range result.Partitions {
			group.addPartition(partition, tagKey)
		}
	}

	out := make([]domain.DocumentSummary, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key].summary(key))
	}
	return out
}

type documentGroup struct {
	partitionCount int
	maxRelevance   float64
	preview        string
	tags           map[string]bool
}

func (g *documentGroup) addPartition(partition domain.Partition, tagKey string) {
	g.partitionCount++
	if partition.Relevance > g.maxRelevance {
		g.maxRelevance = partition.Relevance
	}
	if g.preview == "" {
		g.preview = truncatePreview(partition.Text)
	}
	for _, value := range partition.Tags[tagKey] {
		if value != "" {
			g.tags[value] = true
		}
	}
}

func (g *documentGroup) summary(key documentKey) domain.DocumentSummary {
	tags := make([]string, 0, len(g.tags))
	for tag := range g.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	maxRelevance := 0.0
	if g.partitionCount > 0 {
		maxRelevance = round3(g.maxRelevance)
	}
	return domain.DocumentSummary{
		Index:          key.index,
		DocumentID:     key.documentID,
		SourceName:     key.sourceName,
		ContentType:    key.contentType,
		SourceURL:      key.sourceURL,
		Link:           key.link,
		Tags:           tags,
		PartitionCount: g.partitionCount,
		MaxRelevance:   maxRelevance,
		Preview:        g.preview,
	}
}

func truncatePreview(text string) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= previewMaxRunes {
		return trimmed
	}
	return string(runes[:previewMaxRunes]) + "…"
}
