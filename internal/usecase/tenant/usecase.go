package tenant

import (
	"context"
	"fmt"
	"regexp"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// slugPattern matches lowercase kebab-case identifiers like "acme-corp".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Usecase manages tenants and their social account connections.
type Usecase struct {
	tenants     repository.TenantRepository
	connections repository.SocialConnectionRepository
}

func NewUsecase(tenants repository.TenantRepository, connections repository.SocialConnectionRepository) *Usecase {
	return &Usecase{
		tenants:     tenants,
		connections: connections,
	}
}

func (u *Usecase) CreateTenant(ctx context.Context, tenant entity.Tenant) (*entity.Tenant, error) {
	if !slugPattern.MatchString(tenant.Slug) {
		return nil, fmt.Errorf("%w: slug must be lowercase kebab-case", entity.ErrValidation)
	}
	if tenant.Name == "" {
		return nil, fmt.Errorf("%w: name is required", entity.ErrValidation)
	}

	return u.tenants.Create(ctx, tenant)
}

func (u *Usecase) GetTenant(ctx context.Context, slug string) (*entity.Tenant, error) {
	return u.tenants.GetBySlug(ctx, slug)
}

func (u *Usecase) ListTenants(ctx context.Context, skip, limit int) ([]*entity.Tenant, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return u.tenants.List(ctx, skip, limit)
}

// AddConnection links a social account to the tenant identified by slug.
func (u *Usecase) AddConnection(ctx context.Context, slug string, conn entity.SocialConnection) (*entity.SocialConnection, error) {
	if conn.Platform == "" || conn.AccountID == "" {
		return nil, fmt.Errorf("%w: platform and account_id are required", entity.ErrValidation)
	}
	if conn.AccessToken == "" {
		return nil, fmt.Errorf("%w: access_token is required", entity.ErrValidation)
	}

	tenant, err := u.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	conn.TenantID = tenant.ID
	return u.connections.Create(ctx, conn)
}

func (u *Usecase) ListConnections(ctx context.Context, slug string) ([]*entity.SocialConnection, error) {
	tenant, err := u.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return u.connections.ListByTenant(ctx, tenant.ID)
}
