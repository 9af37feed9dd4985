package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/raglab/docqa/internal/core/domain"
)

// Registry is the process-lifetime ingestion registry: a mutex-guarded
// map from case-insensitive file name to its document record. It is not
// persisted; restarting the process empties it.
type Registry struct {
	mu      sync.RWMutex
	records map[string]domain.IngestionRecord
}

func New() *Registry {
	return &Registry{
		records: make(map[string]domain.IngestionRecord),
	}
}

// Put upserts the record for the file name, last writer wins. Concurrent
// uploads of the same name race by design; only per-entry atomicity is
// guaranteed.
func (r *Registry) Put(_ context.Context, fileName, documentID, index string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[strings.ToLower(fileName)] = domain.IngestionRecord{
		FileName:   fileName,
		DocumentID: documentID,
		Index:      index,
	}
	return nil
}

func (r *Registry) ResolveFileName(_ context.Context, documentID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.DocumentID == documentID {
			return record.FileName, nil
		}
	}
	return domain.UnknownFileName, nil
}

func (r *Registry) RemoveAllFor(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, record := range r.records {
		if record.DocumentID == documentID {
			delete(r.records, key)
		}
	}
	return nil
}

func (r *Registry) Snapshot(_ context.Context) ([]domain.IngestionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.IngestionRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FileName < out[j].FileName
	})
	return out, nil
}
