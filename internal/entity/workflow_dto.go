package entity

import (
	"fmt"
	"strings"
)

// IntentClassification is the structured output of the intent step.
type IntentClassification struct {
	Intent     LeadIntent `json:"intent"`
	Confidence float64    `json:"confidence"`
}

func (c *IntentClassification) Validate() error {
	if err := c.Intent.Validate(); err != nil {
		return err
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence out of range: %f", c.Confidence)
	}
	return nil
}

// LeadFields is the structured output of the extraction step. Missing values
// stay nil; the provider must never fabricate them.
type LeadFields struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Company        *string  `json:"company"`
	Phone          *string  `json:"phone"`
	Budget         *float64 `json:"budget"`
	MessageSummary *string  `json:"message_summary"`
}

func (f *LeadFields) Validate() error {
	if f.Email != nil && !strings.Contains(*f.Email, "@") {
		return fmt.Errorf("invalid email: %s", *f.Email)
	}
	return nil
}

// WorkflowResult is the response of POST /api/workflow/leads.
type WorkflowResult struct {
	LeadID          string         `json:"lead_id"`
	Intent          LeadIntent     `json:"intent"`
	Confidence      float64        `json:"confidence"`
	ExtractedFields LeadFields     `json:"extracted_fields"`
	AIResponse      string         `json:"ai_response"`
	Status          LeadStatus     `json:"status"`
	ExecutionTrace  map[string]any `json:"execution_trace"`
}

// TokenUsage is reported by the chat-completion provider per call.
type TokenUsage struct {
	In  int
	Out int
}
