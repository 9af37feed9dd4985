package domain

import "time"

// UnknownFileName is the sentinel returned by registry lookups that find
// no record for a document id. It is display-only and must never drive
// correctness decisions.
const UnknownFileName = "unknown"

// IngestionRecord maps an uploaded file name to the document the memory
// engine created for it. File names are case-insensitive keys; the
// registry holds at most one record per name, last writer wins.
type IngestionRecord struct {
	FileName   string `json:"file_name"`
	DocumentID string `json:"document_id"`
	Index      string `json:"index"`
}

// UploadFile is one file from a multipart upload request.
type UploadFile struct {
	Name    string
	Content []byte
}

// UploadReceipt reports the outcome of ingesting a single file. Wait is
// set only when the caller asked to block until the pipeline finished.
type UploadReceipt struct {
	FileName   string      `json:"file_name"`
	DocumentID string      `json:"document_id"`
	Index      string      `json:"index"`
	Wait       *WaitResult `json:"wait,omitempty"`
}

// PipelineStatus mirrors the engine's ingestion pipeline progress. A nil
// *PipelineStatus means the pipeline record no longer exists, which
// reads as "deleted" or "never ingested".
type PipelineStatus struct {
	RemainingSteps []string `json:"remaining_steps"`
	CompletedSteps []string `json:"completed_steps"`
}

// WaitResult is the structured outcome of a bounded readiness wait.
// Timeouts are expected conditions, not errors.
type WaitResult struct {
	Ready      bool   `json:"ready"`
	TimedOut   bool   `json:"timed_out"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

type DeleteOutcome string

const (
	DeleteOutcomeDeleted  DeleteOutcome = "deleted"
	DeleteOutcomeNotFound DeleteOutcome = "not_found"
)

// UploadEvent is published after a successful import so the readiness
// watcher can follow the pipeline off the request path.
type UploadEvent struct {
	DocumentID string    `json:"document_id"`
	Index      string    `json:"index"`
	UploadedAt time.Time `json:"uploaded_at"`
}
