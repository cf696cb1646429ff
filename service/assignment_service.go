// service/assignment_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	sentinel_errors "github.com/driftship/sentinel/errors"
	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/rbac"
	"github.com/driftship/sentinel/util"
)

// IAssignmentService defines the interface for grant/revoke operations
type IAssignmentService interface {
	AssignRole(ctx context.Context, userID, roleID, assignedBy string, expiresAt *time.Time, conditions map[string]string) error
	RevokeRole(ctx context.Context, userID, roleID, revokedBy string) error
	ListUserRoles(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error)
}

// AssignmentService handles business logic for role grants
type AssignmentService struct {
	engine          *rbac.Engine
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IAssignmentService = &AssignmentService{}

// NewAssignmentService creates a new instance of AssignmentService
func NewAssignmentService(engine *rbac.Engine, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *AssignmentService {
	service := &AssignmentService{
		engine:          engine,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("role.assigned", service.handleAssignmentChanged)
	eventBus.Subscribe("role.revoked", service.handleAssignmentChanged)

	return service
}

func (s *AssignmentService) handleAssignmentChanged(ctx context.Context, event util.Event) error {
	assignment := event.Payload.(model.UserRoleAssignment)
	logger.Info("Assignment change event received",
		zap.String("eventType", event.Type),
		zap.String("userID", assignment.UserID),
		zap.String("roleID", assignment.RoleID))

	if err := s.cacheService.DeleteUserPermissions(ctx, assignment.UserID); err != nil {
		logger.Error("Failed to invalidate cached permissions", zap.Error(err), zap.String("userID", assignment.UserID))
	}

	changeType := "granted"
	if event.Type == "role.revoked" {
		changeType = "revoked"
	}
	if err := s.notificationSvc.NotifyAssignmentChange(ctx, changeType, assignment); err != nil {
		logger.Warn("Failed to send assignment notification", zap.Error(err), zap.String("userID", assignment.UserID))
	}
	return nil
}

// AssignRole grants a role to a user
func (s *AssignmentService) AssignRole(ctx context.Context, userID, roleID, assignedBy string, expiresAt *time.Time, conditions map[string]string) error {
	if err := s.validationUtil.ValidateGrant(userID, roleID, assignedBy, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", sentinel_errors.ErrInvalidAssignmentData, err)
	}

	if err := s.engine.AssignRole(ctx, userID, roleID, assignedBy, expiresAt, conditions); err != nil {
		logger.Error("Error assigning role",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("roleID", roleID),
			zap.String("assignedBy", assignedBy))
		return err
	}

	s.eventBus.Publish(ctx, "role.assigned", model.UserRoleAssignment{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: assignedBy,
		ExpiresAt:  expiresAt,
		Conditions: conditions,
	})

	logger.Info("Role assigned successfully",
		zap.String("userID", userID),
		zap.String("roleID", roleID),
		zap.String("assignedBy", assignedBy))
	return nil
}

// RevokeRole removes a user's role grant; revoking an absent grant is a no-op
func (s *AssignmentService) RevokeRole(ctx context.Context, userID, roleID, revokedBy string) error {
	if err := s.engine.RevokeRole(ctx, userID, roleID); err != nil {
		logger.Error("Error revoking role",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("roleID", roleID),
			zap.String("revokedBy", revokedBy))
		return err
	}

	s.eventBus.Publish(ctx, "role.revoked", model.UserRoleAssignment{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: revokedBy,
	})

	logger.Info("Role revoked successfully",
		zap.String("userID", userID),
		zap.String("roleID", roleID),
		zap.String("revokedBy", revokedBy))
	return nil
}

// ListUserRoles returns the user's currently active assignments
func (s *AssignmentService) ListUserRoles(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error) {
	assignments, err := s.engine.ListUserAssignments(ctx, userID)
	if err != nil {
		logger.Error("Error listing user roles", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	return assignments, nil
}
