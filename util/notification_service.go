// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
)

// NotificationService fans role and assignment changes out to interested
// systems. The current transport is the log stream; the admin dashboard
// polls, and a queue-backed transport can slot in behind this interface
// without touching callers.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyRoleChange(ctx context.Context, changeType string, role model.Role) error {
	switch changeType {
	case "created", "updated", "deleted":
		logger.Info("NOTIFICATION: Role "+changeType,
			zap.String("roleID", role.ID),
			zap.String("roleName", role.Name))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyAssignmentChange(ctx context.Context, changeType string, assignment model.UserRoleAssignment) error {
	switch changeType {
	case "granted", "revoked":
		logger.Info("NOTIFICATION: Role "+changeType,
			zap.String("userID", assignment.UserID),
			zap.String("roleID", assignment.RoleID),
			zap.String("assignedBy", assignment.AssignedBy))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
