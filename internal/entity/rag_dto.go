package entity

// ChatRequest is the body of POST /api/rag/chat. Query parameters with the
// same names are accepted too; body values take precedence.
type ChatRequest struct {
	Query     string `json:"query"`
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id"`
}

// AnswerResult is the outcome of the answer pipeline.
type AnswerResult struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Refusal    bool     `json:"refusal"`
}

// IngestRequest is the body of POST /api/rag/ingest.
type IngestRequest struct {
	TenantID string `json:"tenant_id"`
}

// IngestResult reports a completed ingestion run.
type IngestResult struct {
	Status         string `json:"status"`
	ChunksIngested int    `json:"chunks_ingested"`
	TenantID       string `json:"tenant_id"`
}
