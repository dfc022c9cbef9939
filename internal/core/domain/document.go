package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the persisted lifecycle record of one ingested source file.
type Document struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename"`
	MimeType        string         `json:"mime_type"`
	StoragePath     string         `json:"storage_path"`
	DocumentType    string         `json:"document_type,omitempty"`
	Confidence      float64        `json:"confidence,omitempty"`
	StrategyUsed    string         `json:"strategy_used,omitempty"`
	ChunkCount      int            `json:"chunk_count,omitempty"`
	ValidationScore float64        `json:"validation_score,omitempty"`
	Status          DocumentStatus `json:"status"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ProcessingOutcome is what a completed pipeline run writes back onto the
// document record.
type ProcessingOutcome struct {
	DocumentType    DocumentType
	Confidence      float64
	StrategyUsed    string
	ChunkCount      int
	ValidationScore float64
}

// PreviewResult is the dry-run pipeline output for raw content: the full
// stage results without persistence or delivery.
type PreviewResult struct {
	Directive  ProcessingDirective `json:"-"`
	Directives map[string]string   `json:"directives,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Analysis   DocumentAnalysis    `json:"analysis"`
	Strategy   string              `json:"strategy"`
	Chunks     []Chunk             `json:"chunks"`
	Validation ValidationResult    `json:"validation"`
}
