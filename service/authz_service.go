// service/authz_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/driftship/sentinel/audit"
	sentinel_errors "github.com/driftship/sentinel/errors"
	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/rbac"
	"github.com/driftship/sentinel/util"
)

// IAuthzService defines the authorization query surface
type IAuthzService interface {
	CheckAccess(ctx context.Context, req model.AccessRequest) (*model.AccessDecision, error)
	GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error)
}

// AuthzService answers access checks through the engine, records every
// decision in the audit trail, and caches unconditional capability listings.
type AuthzService struct {
	engine         *rbac.Engine
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	auditService   audit.Service
}

var _ IAuthzService = &AuthzService{}

// NewAuthzService creates a new instance of AuthzService
func NewAuthzService(engine *rbac.Engine, validationUtil *util.ValidationUtil, cacheService *util.CacheService, auditService audit.Service) *AuthzService {
	return &AuthzService{
		engine:         engine,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		auditService:   auditService,
	}
}

// CheckAccess answers "may this user exercise this permission under this
// context". A denial is a successful check with Allowed=false, never an
// error.
func (s *AuthzService) CheckAccess(ctx context.Context, req model.AccessRequest) (*model.AccessDecision, error) {
	if err := s.validationUtil.ValidateAccessRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel_errors.ErrInvalidAccessRequest, err)
	}

	allowed, err := s.engine.HasPermission(ctx, req.UserID, req.PermissionID, req.Context)
	if err != nil {
		logger.Error("Error evaluating access check",
			zap.Error(err),
			zap.String("userID", req.UserID),
			zap.String("permissionID", req.PermissionID))
		return nil, sentinel_errors.ErrInternalServer
	}

	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        req.UserID,
		Action:        audit.ActionAccessCheck,
		ResourceID:    req.PermissionID,
		AccessGranted: allowed,
	}
	if err := s.auditService.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record access check audit entry",
			zap.Error(err), zap.String("userID", req.UserID))
	}

	decision := &model.AccessDecision{Allowed: allowed}
	if !allowed {
		decision.Reason = "no active assignment grants this permission under the supplied context"
	}
	return decision, nil
}

// GetUserPermissions lists the user's unconditional effective permissions.
// The listing deliberately ignores assignment conditions; only CheckAccess
// applies those.
func (s *AuthzService) GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	cached, err := s.cacheService.GetUserPermissions(ctx, userID)
	if err == nil && cached != nil {
		return cached, nil
	}

	permissions, err := s.engine.GetUserPermissions(ctx, userID)
	if err != nil {
		logger.Error("Error listing user permissions", zap.Error(err), zap.String("userID", userID))
		return nil, sentinel_errors.ErrInternalServer
	}

	if err := s.cacheService.SetUserPermissions(ctx, userID, permissions); err != nil {
		logger.Warn("Failed to cache user permissions", zap.Error(err), zap.String("userID", userID))
	}

	return permissions, nil
}
