package types

// --------------------------------------------
// Result of processing one card image
// --------------------------------------------
type CardResult struct {
	ID         string             `json:"id"`
	FileName   string             `json:"file_name,omitempty"`
	StorageURL string             `json:"storage_url,omitempty"`
	UploadKey  string             `json:"upload_key,omitempty"`
	Transcript string             `json:"transcript"`
	Record     ContactRecord      `json:"record"`
	Sources    map[FieldKey]Stage `json:"sources,omitempty"`
	DurationMs int64              `json:"duration_ms"`
	Error      string             `json:"error,omitempty"`
}

// --------------------------------------------
// Batch row: one transcript from a spreadsheet
// --------------------------------------------
type TranscriptRow struct {
	RowID      string `json:"row_id"`
	Source     string `json:"source,omitempty"`
	Transcript string `json:"transcript"`
}

// --------------------------------------------
// Batch output row
// --------------------------------------------
type BatchResult struct {
	TranscriptRow
	Record ContactRecord `json:"record"`
	Error  string        `json:"error,omitempty"`
}
