// controller/permission_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/util"
	helper_util "github.com/driftship/sentinel/util/helper"
)

type PermissionController struct {
	permissionService service.IPermissionService
}

func NewPermissionController(permissionService service.IPermissionService) *PermissionController {
	return &PermissionController{
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the API routes for the permission catalog
func (pc *PermissionController) RegisterRoutes(r *gin.RouterGroup) {
	permissions := r.Group("/permissions")
	{
		permissions.GET("", pc.ListPermissions)
		permissions.GET("/:id", pc.GetPermission)
	}
}

// ListPermissions endpoint
func (pc *PermissionController) ListPermissions(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", sentinel_errors.ErrInvalidPagination)
		return
	}

	permissions, err := pc.permissionService.ListPermissions(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list permissions", err)
		return
	}

	c.JSON(http.StatusOK, helper_util.Paginate(permissions, limit, offset))
}

// GetPermission endpoint
func (pc *PermissionController) GetPermission(c *gin.Context) {
	permissionID := c.Param("id")

	permission, err := pc.permissionService.GetPermission(c, permissionID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve permission", err)
		}
		return
	}

	c.JSON(http.StatusOK, permission)
}
