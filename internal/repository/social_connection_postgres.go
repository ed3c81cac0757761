package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadforge/assessment-backend/internal/entity"
)

// SocialConnectionRepository defines the interface for social account links
type SocialConnectionRepository interface {
	Create(ctx context.Context, conn entity.SocialConnection) (*entity.SocialConnection, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.SocialConnection, error)
}

var _ SocialConnectionRepository = &SocialConnectionPostgres{}

// SocialConnectionPostgres implements SocialConnectionRepository using PostgreSQL
type SocialConnectionPostgres struct {
	db *pgxpool.Pool
}

func NewSocialConnectionPostgres(db *pgxpool.Pool) *SocialConnectionPostgres {
	return &SocialConnectionPostgres{db: db}
}

func (r *SocialConnectionPostgres) Create(ctx context.Context, conn entity.SocialConnection) (*entity.SocialConnection, error) {
	tenantID, err := uuid.Parse(conn.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tenant id: %v", entity.ErrValidation, err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO social_connections (id, tenant_id, platform, account_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, tenant_id, platform, account_id, access_token, refresh_token, expires_at, created_at`,
		uuid.New(), tenantID, conn.Platform, conn.AccountID, conn.AccessToken,
		conn.RefreshToken, conn.ExpiresAt,
	)

	created, err := scanSocialConnection(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create social connection: %v", entity.ErrStorage, err)
	}

	return created, nil
}

func (r *SocialConnectionPostgres) ListByTenant(ctx context.Context, tenantID string) ([]*entity.SocialConnection, error) {
	tenID, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tenant id: %v", entity.ErrValidation, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, platform, account_id, access_token, refresh_token, expires_at, created_at
		FROM social_connections
		WHERE tenant_id = $1
		ORDER BY created_at`,
		tenID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list social connections: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	var conns []*entity.SocialConnection
	for rows.Next() {
		conn, err := scanSocialConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan social connection: %v", entity.ErrStorage, err)
		}
		conns = append(conns, conn)
	}

	return conns, rows.Err()
}
