// controller/controllers.go
package controller

import "github.com/driftship/sentinel/service"

type Controllers struct {
	Authz      *AuthzController
	Role       *RoleController
	Assignment *AssignmentController
	Permission *PermissionController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Authz:      NewAuthzController(services.Authz),
		Role:       NewRoleController(services.Role),
		Assignment: NewAssignmentController(services.Assignment),
		Permission: NewPermissionController(services.Permission),
	}
}
