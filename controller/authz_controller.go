// controller/authz_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/util"
)

type AuthzController struct {
	authzService service.IAuthzService
}

func NewAuthzController(authzService service.IAuthzService) *AuthzController {
	return &AuthzController{
		authzService: authzService,
	}
}

// RegisterRoutes registers the API routes for access checks
func (ac *AuthzController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/check", ac.CheckAccess)
	}
	r.GET("/users/:id/permissions", ac.GetUserPermissions)
}

// CheckAccess endpoint
func (ac *AuthzController) CheckAccess(c *gin.Context) {
	var req model.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access request", sentinel_errors.ErrInvalidAccessRequest)
		return
	}

	decision, err := ac.authzService.CheckAccess(c, req)
	if err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrInvalidAccessRequest):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid access request", err)
		case errors.Is(err, sentinel_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to evaluate access check", err)
		}
		return
	}

	c.JSON(http.StatusOK, decision)
}

// GetUserPermissions endpoint
func (ac *AuthzController) GetUserPermissions(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "User ID is required", sentinel_errors.ErrInvalidAccessRequest)
		return
	}

	permissions, err := ac.authzService.GetUserPermissions(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list user permissions", err)
		return
	}

	c.JSON(http.StatusOK, permissions)
}
