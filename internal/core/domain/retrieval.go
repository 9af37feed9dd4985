package domain

// TagFilter narrows a search to documents carrying the given tag value.
// The zero value means no filtering.
type TagFilter struct {
	Key   string
	Value string
}

func (f TagFilter) IsZero() bool {
	return f.Key == "" && f.Value == ""
}

// Partition is one retrieved chunk of a document. Partitions are
// immutable once returned by the engine and live for a single request.
type Partition struct {
	PartitionNumber int                 `json:"partition_number"`
	SectionNumber   int                 `json:"section_number"`
	Relevance       float64             `json:"relevance"`
	Text            string              `json:"text"`
	Tags            map[string][]string `json:"tags,omitempty"`
}

// DocumentResult groups the partitions the engine returned for one
// document within one search response.
type DocumentResult struct {
	DocumentID  string      `json:"document_id"`
	Index       string      `json:"index"`
	SourceName  string      `json:"source_name"`
	ContentType string      `json:"content_type"`
	SourceURL   string      `json:"source_url"`
	Link        string      `json:"link"`
	Partitions  []Partition `json:"partitions"`
}

// DocumentSummary is a document-level view derived from chunk results on
// each enumeration call. It is never stored.
type DocumentSummary struct {
	Index          string   `json:"index"`
	DocumentID     string   `json:"document_id"`
	SourceName     string   `json:"source_name"`
	ContentType    string   `json:"content_type"`
	SourceURL      string   `json:"source_url,omitempty"`
	Link           string   `json:"link,omitempty"`
	Tags           []string `json:"tags"`
	PartitionCount int      `json:"partition_count"`
	MaxRelevance   float64  `json:"max_relevance"`
	Preview        string   `json:"preview,omitempty"`
}

// CatalogPage is the result of one enumeration call. CacheDerived marks
// summaries synthesized from the local registry because the engine
// returned nothing.
type CatalogPage struct {
	Documents    []DocumentSummary
	CacheDerived bool
}

type CitationPartition struct {
	PartitionNumber int     `json:"partition_number"`
	SectionNumber   int     `json:"section_number"`
	Relevance       float64 `json:"relevance"`
	Text            string  `json:"text"`
}

// Citation is the per-document evidence behind an answer: at most the
// top three partitions, ordered by descending relevance.
type Citation struct {
	Index       string              `json:"index"`
	DocumentID  string              `json:"document_id"`
	SourceName  string              `json:"source_name"`
	ContentType string              `json:"content_type"`
	SourceURL   string              `json:"source_url,omitempty"`
	Link        string              `json:"link,omitempty"`
	Partitions  []CitationPartition `json:"partitions"`
}

// CitationStats is the aggregate view for compact display.
type CitationStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// Answer is the full response to one question.
type Answer struct {
	Question  string        `json:"question"`
	Text      string        `json:"answer"`
	Model     string        `json:"model"`
	Citations []Citation    `json:"citations"`
	Stats     CitationStats `json:"citation_stats"`
}
