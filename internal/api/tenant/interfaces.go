package tenant

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/entity"
)

type TenantUsecase interface {
	CreateTenant(ctx context.Context, tenant entity.Tenant) (*entity.Tenant, error)
	GetTenant(ctx context.Context, slug string) (*entity.Tenant, error)
	ListTenants(ctx context.Context, skip, limit int) ([]*entity.Tenant, error)
	AddConnection(ctx context.Context, slug string, conn entity.SocialConnection) (*entity.SocialConnection, error)
	ListConnections(ctx context.Context, slug string) ([]*entity.SocialConnection, error)
}
