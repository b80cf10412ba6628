// Package ingest walks folders of scanned customs documents, runs the
// carnet pipeline over each file and persists the valid records, with
// content-hash deduplication so re-running a batch is safe.
package ingest

import "context"

// FileResult is the per-file ingest outcome.
type FileResult struct {
	SourcePath   string   `json:"source_path"`
	CarnetID     int64    `json:"carnet_id,omitempty"`
	NumeroCarnet string   `json:"numero_carnet,omitempty"`
	SourceHash   string   `json:"source_hash,omitempty"`
	Deduplicated bool     `json:"deduplicated,omitempty"`
	IsValid      bool     `json:"is_valid"`
	Warnings     []string `json:"warnings,omitempty"`
	Err          string   `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Invalid      uint32 `json:"invalid"`
	Failed       uint32 `json:"failed"`
}

// Ingestor is the behavior callers depend on.
type Ingestor interface {
	// IngestPath processes a single file.
	IngestPath(ctx context.Context, path string) (FileResult, error)
	// IngestDirectory processes all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]FileResult, DirStats, error)
}
