// controller/role_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/util"
	helper_util "github.com/driftship/sentinel/util/helper"
)

type RoleController struct {
	roleService service.IRoleService
}

func NewRoleController(roleService service.IRoleService) *RoleController {
	return &RoleController{
		roleService: roleService,
	}
}

// RegisterRoutes registers the API routes for roles
func (rc *RoleController) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles")
	{
		roles.POST("", rc.CreateRole)
		roles.PUT("/:id", rc.UpdateRole)
		roles.DELETE("/:id", rc.DeleteRole)
		roles.GET("/:id", rc.GetRole)
		roles.GET("", rc.ListRoles)
		roles.GET("/:id/effective-permissions", rc.GetEffectivePermissions)
	}
}

// CreateRole endpoint
func (rc *RoleController) CreateRole(c *gin.Context) {
	var spec model.RoleSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", sentinel_errors.ErrInvalidRoleData)
		return
	}
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	createdRole, err := rc.roleService.CreateRole(c, spec, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrInvalidRoleData),
			errors.Is(err, sentinel_errors.ErrPermissionNotFound),
			errors.Is(err, sentinel_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusUnprocessableEntity, "Role references unknown definitions", err)
		case errors.Is(err, sentinel_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create role", err)
		}
		return
	}

	c.JSON(http.StatusCreated, createdRole)
}

// UpdateRole endpoint
func (rc *RoleController) UpdateRole(c *gin.Context) {
	roleID := c.Param("id")
	var spec model.RoleSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", sentinel_errors.ErrInvalidRoleData)
		return
	}
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	updatedRole, err := rc.roleService.UpdateRole(c, roleID, spec, updaterID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, sentinel_errors.ErrSystemRoleImmutable):
			util.RespondWithError(c, http.StatusForbidden, "System roles cannot be modified", err)
		case errors.Is(err, sentinel_errors.ErrInheritanceCycle),
			errors.Is(err, sentinel_errors.ErrInvalidRoleData),
			errors.Is(err, sentinel_errors.ErrPermissionNotFound):
			util.RespondWithError(c, http.StatusUnprocessableEntity, "Role definition is not valid", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update role", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedRole)
}

// DeleteRole endpoint
func (rc *RoleController) DeleteRole(c *gin.Context) {
	roleID := c.Param("id")
	deleterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	if err := rc.roleService.DeleteRole(c, roleID, deleterID); err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, sentinel_errors.ErrSystemRoleImmutable):
			util.RespondWithError(c, http.StatusForbidden, "System roles cannot be deleted", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete role", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRole endpoint
func (rc *RoleController) GetRole(c *gin.Context) {
	roleID := c.Param("id")

	role, err := rc.roleService.GetRole(c, roleID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve role", err)
		}
		return
	}

	c.JSON(http.StatusOK, role)
}

// ListRoles endpoint
func (rc *RoleController) ListRoles(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", sentinel_errors.ErrInvalidPagination)
		return
	}

	roles, err := rc.roleService.ListRoles(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}

	c.JSON(http.StatusOK, helper_util.Paginate(roles, limit, offset))
}

// GetEffectivePermissions endpoint
func (rc *RoleController) GetEffectivePermissions(c *gin.Context) {
	roleID := c.Param("id")

	permissions, err := rc.roleService.GetEffectivePermissions(c, roleID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve effective permissions", err)
		}
		return
	}

	c.JSON(http.StatusOK, permissions)
}
