package memoryengine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/raglab/docqa/internal/core/domain"
)

// Engine deployments disagree on response field casing across versions
// (documentId, document_id, DocumentId). Every payload read goes through
// this canonicalizing lookup so the rest of the service never sees the
// variance.

func canonicalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

type payload map[string]any

func (p payload) lookup(name string) (any, bool) {
	for key, value := range p {
		if canonicalKey(key) == name {
			return value, true
		}
	}
	return nil, false
}

func (p payload) str(names ...string) string {
	for _, name := range names {
		if value, ok := p.lookup(name); ok {
			if s, ok := value.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (p payload) float(name string) float64 {
	value, ok := p.lookup(name)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (p payload) integer(name string) int {
	return int(p.float(name))
}

func (p payload) boolean(name string) bool {
	value, ok := p.lookup(name)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

func (p payload) list(name string) []any {
	value, ok := p.lookup(name)
	if !ok {
		return nil
	}
	items, _ := value.([]any)
	return items
}

func (p payload) strings(name string) []string {
	items := p.list(name)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (p payload) tags(name string) map[string][]string {
	value, ok := p.lookup(name)
	if !ok {
		return nil
	}
	raw, ok := value.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	tags := make(map[string][]string, len(raw))
	for key, entry := range raw {
		switch v := entry.(type) {
		case string:
			tags[key] = append(tags[key], v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					tags[key] = append(tags[key], s)
				}
			}
		}
	}
	return tags
}

func asPayload(value any) (payload, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return payload(m), true
}

func decodePayload(raw []byte, operation string) (payload, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return payload(root), nil
}

func decodeImportedID(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	root, err := decodePayload(raw, "import")
	if err != nil {
		return "", err
	}
	return root.str("documentid", "id"), nil
}

func decodeReady(raw []byte) (bool, error) {
	root, err := decodePayload(raw, "ready")
	if err != nil {
		return false, err
	}
	return root.boolean("ready"), nil
}

func decodeStatus(raw []byte) (*domain.PipelineStatus, error) {
	root, err := decodePayload(raw, "status")
	if err != nil {
		return nil, err
	}
	return &domain.PipelineStatus{
		RemainingSteps: root.strings("remainingsteps"),
		CompletedSteps: root.strings("completedsteps"),
	}, nil
}

func decodeIndexNames(raw []byte) ([]string, error) {
	root, err := decodePayload(raw, "list indexes")
	if err != nil {
		return nil, err
	}
	items := root.list("results")
	if items == nil {
		items = root.list("indexes")
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			if name := payload(v).str("name"); name != "" {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func decodeSearchResults(raw []byte) ([]domain.DocumentResult, error) {
	root, err := decodePayload(raw, "search")
	if err != nil {
		return nil, err
	}
	items := root.list("results")
	results := make([]domain.DocumentResult, 0, len(items))
	for _, item := range items {
		doc, ok := asPayload(item)
		if !ok {
			continue
		}
		result := domain.DocumentResult{
			DocumentID:  doc.str("documentid", "id"),
			Index:       doc.str("index"),
			SourceName:  doc.str("sourcename"),
			ContentType: doc.str("sourcecontenttype", "contenttype"),
			SourceURL:   doc.str("sourceurl"),
			Link:        doc.str("link"),
		}
		for _, rawPartition := range doc.list("partitions") {
			part, ok := asPayload(rawPartition)
			if !ok {
				continue
			}
			result.Partitions = append(result.Partitions, domain.Partition{
				PartitionNumber: part.integer("partitionnumber"),
				SectionNumber:   part.integer("sectionnumber"),
				Relevance:       part.float("relevance"),
				Text:            part.str("text"),
				Tags:            part.tags("tags"),
			})
		}
		results = append(results, result)
	}
	return results, nil
}
