// service/permission_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	sentinel_errors "github.com/driftship/sentinel/errors"
	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/rbac"
)

// IPermissionService defines the interface for catalog lookups
type IPermissionService interface {
	GetPermission(ctx context.Context, permissionID string) (*model.Permission, error)
	ListPermissions(ctx context.Context) ([]*model.Permission, error)
}

// PermissionService exposes the read-only permission catalog
type PermissionService struct {
	engine *rbac.Engine
}

var _ IPermissionService = &PermissionService{}

// NewPermissionService creates a new instance of PermissionService
func NewPermissionService(engine *rbac.Engine) *PermissionService {
	return &PermissionService{engine: engine}
}

// GetPermission retrieves a single catalog entry by its ID
func (s *PermissionService) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	permissions, err := s.engine.GetAllPermissions(ctx)
	if err != nil {
		logger.Error("Error retrieving permission", zap.Error(err), zap.String("permissionID", permissionID))
		return nil, sentinel_errors.ErrInternalServer
	}
	for _, p := range permissions {
		if p.ID == permissionID {
			return p, nil
		}
	}
	return nil, sentinel_errors.ErrPermissionNotFound
}

// ListPermissions retrieves the full permission catalog
func (s *PermissionService) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	permissions, err := s.engine.GetAllPermissions(ctx)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrDatabaseOperation) {
			return nil, err
		}
		logger.Error("Error listing permissions", zap.Error(err))
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}
