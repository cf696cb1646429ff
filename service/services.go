// service/services.go
package service

import (
	"github.com/driftship/sentinel/audit"
	"github.com/driftship/sentinel/rbac"
	"github.com/driftship/sentinel/util"
)

type Services struct {
	Authz      IAuthzService
	Role       IRoleService
	Assignment IAssignmentService
	Permission IPermissionService
}

func InitializeServices(
	engine *rbac.Engine,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	services := &Services{
		Authz:      NewAuthzService(engine, validationUtil, cacheService, auditService),
		Role:       NewRoleService(engine, validationUtil, cacheService, notificationSvc, eventBus),
		Assignment: NewAssignmentService(engine, validationUtil, cacheService, notificationSvc, eventBus),
		Permission: NewPermissionService(engine),
	}

	return services, nil
}
