package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadforge/assessment-backend/internal/entity"
)

// ChatMessageRepository defines the interface for chat history persistence
type ChatMessageRepository interface {
	CreateMessage(ctx context.Context, message entity.ChatMessage) (*entity.ChatMessage, error)
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error)
}

var _ ChatMessageRepository = &ChatMessagePostgres{}

// ChatMessagePostgres implements ChatMessageRepository using PostgreSQL
type ChatMessagePostgres struct {
	db *pgxpool.Pool
}

func NewChatMessagePostgres(db *pgxpool.Pool) *ChatMessagePostgres {
	return &ChatMessagePostgres{db: db}
}

func (r *ChatMessagePostgres) CreateMessage(ctx context.Context, message entity.ChatMessage) (*entity.ChatMessage, error) {
	sessionID, err := uuid.Parse(message.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	if err := message.Role.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	row := r.db.QueryRow(ctx, `
		INSERT INTO rag_chat_messages (id, session_id, tenant_id, role, content, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, session_id, tenant_id, role, content, confidence, created_at`,
		id, sessionID, message.TenantID, message.Role, message.Content, message.Confidence,
	)

	created, err := scanChatMessage(row)
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}

	return created, nil
}

// GetRecentMessages returns up to limit messages of a session, newest first.
// Callers that need chronological order reverse the slice themselves.
func (r *ChatMessagePostgres) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, tenant_id, role, content, confidence, created_at
		FROM rag_chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get recent messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.ChatMessage
	for rows.Next() {
		message, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
