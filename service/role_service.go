// service/role_service.go
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
	"github.com/driftship/sentinel/util"
)

// IRoleService defines the interface for role operations
type IRoleService interface {
	CreateRole(ctx context.Context, spec model.RoleSpec, creatorID string) (*model.Role, error)
	UpdateRole(ctx context.Context, roleID string, spec model.RoleSpec, updaterID string) (*model.Role, error)
	DeleteRole(ctx context.Context, roleID string, deleterID string) error
	GetRole(ctx context.Context, roleID string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	GetEffectivePermissions(ctx context.Context, roleID string) ([]*model.Permission, error)
}

// RoleService handles business logic for role authoring
type RoleService struct {
	engine          *rbac.Engine
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IRoleService = &RoleService{}

// NewRoleService creates a new instance of RoleService
func NewRoleService(engine *rbac.Engine, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *RoleService {
	service := &RoleService{
		engine:          engine,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("role.created", service.handleRoleCreated)
	eventBus.Subscribe("role.updated", service.handleRoleUpdated)
	eventBus.Subscribe("role.deleted", service.handleRoleDeleted)

	return service
}

func (s *RoleService) handleRoleCreated(ctx context.Context, event util.Event) error {
	role := event.Payload.(model.Role)
	logger.Info("Role created event received", zap.String("roleID", role.ID))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "created", role); err != nil {
		logger.Warn("Failed to send role creation notification", zap.Error(err), zap.String("roleID", role.ID))
	}
	return nil
}

func (s *RoleService) handleRoleUpdated(ctx context.Context, event util.Event) error {
	role := event.Payload.(model.Role)
	logger.Info("Role updated event received", zap.String("roleID", role.ID))

	// A changed definition can widen or narrow any number of users, so every
	// cached listing is stale.
	if err := s.cacheService.InvalidateAllUserPermissions(ctx); err != nil {
		logger.Error("Failed to invalidate cached permission listings", zap.Error(err), zap.String("roleID", role.ID))
	}

	if err := s.notificationSvc.NotifyRoleChange(ctx, "updated", role); err != nil {
		logger.Warn("Failed to send role update notification", zap.Error(err), zap.String("roleID", role.ID))
	}
	return nil
}

func (s *RoleService) handleRoleDeleted(ctx context.Context, event util.Event) error {
	roleID := event.Payload.(string)
	logger.Info("Role deleted event received", zap.String("roleID", roleID))

	if err := s.cacheService.InvalidateAllUserPermissions(ctx); err != nil {
		logger.Error("Failed to invalidate cached permission listings", zap.Error(err), zap.String("roleID", roleID))
	}

	if err := s.notificationSvc.NotifyRoleChange(ctx, "deleted", model.Role{ID: roleID}); err != nil {
		logger.Warn("Failed to send role deletion notification", zap.Error(err), zap.String("roleID", roleID))
	}
	return nil
}

// CreateRole handles the creation of a new custom role
func (s *RoleService) CreateRole(ctx context.Context, spec model.RoleSpec, creatorID string) (*model.Role, error) {
	if err := s.validationUtil.ValidateRoleSpec(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel_errors.ErrInvalidRoleData, err)
	}

	role, err := s.engine.CreateRole(ctx, spec)
	if err != nil {
		logger.Error("Error creating role", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	if err := s.cacheService.SetRole(ctx, *role); err != nil {
		logger.Warn("Failed to cache role", zap.Error(err), zap.String("roleID", role.ID))
	}

	s.eventBus.Publish(ctx, "role.created", *role)

	logger.Info("Role created successfully", zap.String("roleID", role.ID), zap.String("creatorID", creatorID))
	return role, nil
}

// UpdateRole rewrites an existing custom role
func (s *RoleService) UpdateRole(ctx context.Context, roleID string, spec model.RoleSpec, updaterID string) (*model.Role, error) {
	if err := s.validationUtil.ValidateRoleSpec(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel_errors.ErrInvalidRoleData, err)
	}

	role, err := s.engine.UpdateRole(ctx, roleID, spec)
	if err != nil {
		logger.Error("Error updating role", zap.Error(err), zap.String("roleID", roleID), zap.String("updaterID", updaterID))
		return nil, err
	}

	if err := s.cacheService.SetRole(ctx, *role); err != nil {
		logger.Warn("Failed to update role in cache", zap.Error(err), zap.String("roleID", roleID))
	}

	s.eventBus.Publish(ctx, "role.updated", *role)

	logger.Info("Role updated successfully", zap.String("roleID", roleID), zap.String("updaterID", updaterID))
	return role, nil
}

// DeleteRole removes a custom role
func (s *RoleService) DeleteRole(ctx context.Context, roleID string, deleterID string) error {
	if err := s.engine.DeleteRole(ctx, roleID); err != nil {
		logger.Error("Error deleting role", zap.Error(err), zap.String("roleID", roleID), zap.String("deleterID", deleterID))
		return err
	}

	if err := s.cacheService.DeleteRole(ctx, roleID); err != nil {
		logger.Warn("Failed to delete role from cache", zap.Error(err), zap.String("roleID", roleID))
	}

	s.eventBus.Publish(ctx, "role.deleted", roleID)

	logger.Info("Role deleted successfully", zap.String("roleID", roleID), zap.String("deleterID", deleterID))
	return nil
}

// GetRole retrieves a role by its ID
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	cachedRole, err := s.cacheService.GetRole(ctx, roleID)
	if err == nil && cachedRole != nil {
		return cachedRole, nil
	}

	role, err := s.engine.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
			return nil, err
		}
		logger.Error("Error retrieving role", zap.Error(err), zap.String("roleID", roleID))
		return nil, sentinel_errors.ErrInternalServer
	}

	if err := s.cacheService.SetRole(ctx, *role); err != nil {
		logger.Warn("Failed to cache role", zap.Error(err), zap.String("roleID", roleID))
	}

	return role, nil
}

// ListRoles retrieves every registered role
func (s *RoleService) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.engine.GetAllRoles(ctx)
	if err != nil {
		logger.Error("Error listing roles", zap.Error(err))
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// GetEffectivePermissions resolves a role's own plus one-hop inherited
// permissions
func (s *RoleService) GetEffectivePermissions(ctx context.Context, roleID string) ([]*model.Permission, error) {
	permissions, err := s.engine.EffectivePermissions(ctx, roleID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
			return nil, err
		}
		logger.Error("Error resolving effective permissions", zap.Error(err), zap.String("roleID", roleID))
		return nil, sentinel_errors.ErrInternalServer
	}
	return permissions, nil
}
