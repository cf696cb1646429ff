// util/cache_service.go

package util

import (
	"context"

	"github.com/driftship/sentinel/db"
	"github.com/driftship/sentinel/model"
)

// CacheService fronts the Redis cache for role records and per-user
// permission listings.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	return db.GetCachedRole(ctx, roleID)
}

func (c *CacheService) SetRole(ctx context.Context, role model.Role) error {
	return db.CacheRole(ctx, &role)
}

func (c *CacheService) DeleteRole(ctx context.Context, roleID string) error {
	return db.DeleteCachedRole(ctx, roleID)
}

func (c *CacheService) GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	return db.GetCachedUserPermissions(ctx, userID)
}

func (c *CacheService) SetUserPermissions(ctx context.Context, userID string, permissions []*model.Permission) error {
	return db.CacheUserPermissions(ctx, userID, permissions)
}

func (c *CacheService) DeleteUserPermissions(ctx context.Context, userID string) error {
	return db.DeleteCachedUserPermissions(ctx, userID)
}

func (c *CacheService) InvalidateAllUserPermissions(ctx context.Context) error {
	return db.InvalidateAllUserPermissions(ctx)
}
