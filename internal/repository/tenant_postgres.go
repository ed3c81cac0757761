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

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	Create(ctx context.Context, tenant entity.Tenant) (*entity.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Tenant, error)
}

var _ TenantRepository = &TenantPostgres{}

// TenantPostgres implements TenantRepository using PostgreSQL
type TenantPostgres struct {
	db *pgxpool.Pool
}

func NewTenantPostgres(db *pgxpool.Pool) *TenantPostgres {
	return &TenantPostgres{db: db}
}

func (r *TenantPostgres) Create(ctx context.Context, tenant entity.Tenant) (*entity.Tenant, error) {
	settings := tenant.Settings
	if len(settings) == 0 {
		settings = []byte("{}")
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO tenants (id, slug, name, settings)
		VALUES ($1, $2, $3, $4)
		RETURNING id, slug, name, settings, created_at`,
		uuid.New(), tenant.Slug, tenant.Name, settings,
	)

	created, err := scanTenant(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create tenant: %v", entity.ErrStorage, err)
	}

	return created, nil
}

func (r *TenantPostgres) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, slug, name, settings, created_at
		FROM tenants
		WHERE slug = $1`,
		slug,
	)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tenant %q", entity.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("%w: get tenant: %v", entity.ErrStorage, err)
	}

	return tenant, nil
}

func (r *TenantPostgres) List(ctx context.Context, skip, limit int) ([]*entity.Tenant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, slug, name, settings, created_at
		FROM tenants
		ORDER BY created_at
		LIMIT $1 OFFSET $2`,
		limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list tenants: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	var tenants []*entity.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan tenant: %v", entity.ErrStorage, err)
		}
		tenants = append(tenants, tenant)
	}

	return tenants, rows.Err()
}
