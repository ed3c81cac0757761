package repository

import (
	"github.com/google/uuid"
	"github.com/leadforge/assessment-backend/internal/entity"
)

// rowScanner abstracts pgx.Row and pgx.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChatMessage(row rowScanner) (*entity.ChatMessage, error) {
	var (
		message       entity.ChatMessage
		id, sessionID uuid.UUID
	)

	err := row.Scan(&id, &sessionID, &message.TenantID, &message.Role,
		&message.Content, &message.Confidence, &message.CreatedAt)
	if err != nil {
		return nil, err
	}

	message.ID = id.String()
	message.SessionID = sessionID.String()
	return &message, nil
}

func scanLead(row rowScanner) (*entity.LeadRecord, error) {
	var (
		lead entity.LeadRecord
		id   uuid.UUID
	)

	err := row.Scan(&id, &lead.RawInput, &lead.Intent, &lead.Confidence,
		&lead.ExtractedFields, &lead.AIResponse, &lead.Status, &lead.RequestID,
		&lead.ErrorTrace, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}

	lead.ID = id.String()
	return &lead, nil
}

func scanTenant(row rowScanner) (*entity.Tenant, error) {
	var (
		tenant entity.Tenant
		id     uuid.UUID
	)

	err := row.Scan(&id, &tenant.Slug, &tenant.Name, &tenant.Settings, &tenant.CreatedAt)
	if err != nil {
		return nil, err
	}

	tenant.ID = id.String()
	return &tenant, nil
}

func scanSocialConnection(row rowScanner) (*entity.SocialConnection, error) {
	var (
		conn         entity.SocialConnection
		id, tenantID uuid.UUID
	)

	err := row.Scan(&id, &tenantID, &conn.Platform, &conn.AccountID,
		&conn.AccessToken, &conn.RefreshToken, &conn.ExpiresAt, &conn.CreatedAt)
	if err != nil {
		return nil, err
	}

	conn.ID = id.String()
	conn.TenantID = tenantID.String()
	return &conn, nil
}
