package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadforge/assessment-backend/internal/entity"
)

// LeadRepository defines the interface for workflow lead persistence
type LeadRepository interface {
	CreateLeadWithSteps(ctx context.Context, lead entity.LeadRecord, steps []entity.StepLog) (*entity.LeadRecord, error)
	GetLead(ctx context.Context, id string) (*entity.LeadRecord, error)
}

var _ LeadRepository = &LeadPostgres{}

// LeadPostgres implements LeadRepository using PostgreSQL
type LeadPostgres struct {
	db *pgxpool.Pool
}

func NewLeadPostgres(db *pgxpool.Pool) *LeadPostgres {
	return &LeadPostgres{db: db}
}

// CreateLeadWithSteps writes the lead record and its step logs in one
// transaction. Nothing is left committed if any insert fails.
func (r *LeadPostgres) CreateLeadWithSteps(ctx context.Context, lead entity.LeadRecord, steps []entity.StepLog) (*entity.LeadRecord, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", entity.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	leadID := uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO workflow_leads (id, raw_input, intent, confidence, extracted_fields, ai_response, status, request_id, error_trace)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, raw_input, intent, confidence, extracted_fields, ai_response, status, request_id, error_trace, created_at, updated_at`,
		leadID, lead.RawInput, lead.Intent, lead.Confidence, lead.ExtractedFields,
		lead.AIResponse, lead.Status, lead.RequestID, lead.ErrorTrace,
	)

	created, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create lead: %v", entity.ErrStorage, err)
	}

	for _, step := range steps {
		_, err := tx.Exec(ctx, `
			INSERT INTO workflow_step_logs (id, lead_id, step_name, llm_model, tokens_in, tokens_out, duration_ms, success, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(), leadID, step.StepName, step.LLMModel, step.TokensIn,
			step.TokensOut, step.DurationMS, step.Success, step.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: create step log %q: %v", entity.ErrStorage, step.StepName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit lead: %v", entity.ErrStorage, err)
	}

	return created, nil
}

func (r *LeadPostgres) GetLead(ctx context.Context, id string) (*entity.LeadRecord, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid lead id: %v", entity.ErrValidation, err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, raw_input, intent, confidence, extracted_fields, ai_response, status, request_id, error_trace, created_at, updated_at
		FROM workflow_leads
		WHERE id = $1`,
		leadID,
	)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lead %s", entity.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get lead: %v", entity.ErrStorage, err)
	}

	return lead, nil
}
