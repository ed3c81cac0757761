package entity

import (
	"fmt"
	"time"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Validate() error {
	switch r {
	case ChatRoleUser, ChatRoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown chat role: %s", r)
	}
}

// ChatMessage is one append-only entry of a chat session, scoped to a tenant.
// Assistant messages carry the retrieval confidence of the answer; user
// messages do not.
type ChatMessage struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	TenantID   string    `json:"tenant_id"`
	Role       ChatRole  `json:"role"`
	Content    string    `json:"content"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type LeadIntent string

const (
	LeadIntentSales       LeadIntent = "sales"
	LeadIntentSupport     LeadIntent = "support"
	LeadIntentPartnership LeadIntent = "partnership"
	LeadIntentUnknown     LeadIntent = "unknown"
)

func (i LeadIntent) Validate() error {
	switch i {
	case LeadIntentSales, LeadIntentSupport, LeadIntentPartnership, LeadIntentUnknown:
		return nil
	default:
		return fmt.Errorf("unknown lead intent: %s", i)
	}
}

type LeadStatus string

const (
	LeadStatusPending   LeadStatus = "pending"
	LeadStatusProcessed LeadStatus = "processed"
	LeadStatusFailed    LeadStatus = "failed"
	LeadStatusFallback  LeadStatus = "fallback"
)

// LeadRecord is a processed inbound lead. Created once per request; the only
// mutation after creation is the updated_at timestamp.
type LeadRecord struct {
	ID              string     `json:"lead_id"`
	RawInput        []byte     `json:"raw_input"`
	Intent          LeadIntent `json:"intent"`
	Confidence      float64    `json:"confidence"`
	ExtractedFields []byte     `json:"extracted_fields"`
	AIResponse      *string    `json:"ai_response,omitempty"`
	Status          LeadStatus `json:"status"`
	RequestID       string     `json:"request_id"`
	ErrorTrace      []byte     `json:"error_trace,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StepLog records one LLM step taken while processing a lead.
type StepLog struct {
	ID         string  `json:"id"`
	LeadID     string  `json:"lead_id"`
	StepName   string  `json:"step_name"`
	LLMModel   string  `json:"llm_model"`
	TokensIn   int     `json:"tokens_in"`
	TokensOut  int     `json:"tokens_out"`
	DurationMS float64 `json:"duration_ms"`
	Success    bool    `json:"success"`
	Error      *string `json:"error,omitempty"`
}

// Tenant partitions documents, leads and chat history. Slug is the external
// identifier used by the API (e.g. "acme-corp").
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Settings  []byte    `json:"settings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SocialConnection links a tenant to an external social account.
type SocialConnection struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Platform     string     `json:"platform"`
	AccountID    string     `json:"account_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DocumentChunk is an immutable span of source text plus its embedding,
// produced during ingestion and owned by the vector index afterwards.
type DocumentChunk struct {
	Content  string
	Source   string
	TenantID string
	Vector   []float32
}

// ScoredChunk is a retrieval hit with its similarity score.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float32
}
