// controller/assignment_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/util"
	helper_util "github.com/driftship/sentinel/util/helper"
)

type AssignmentController struct {
	assignmentService service.IAssignmentService
}

func NewAssignmentController(assignmentService service.IAssignmentService) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
	}
}

// RegisterRoutes registers the API routes for user role grants
func (ac *AssignmentController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users/:id/roles")
	{
		users.POST("", ac.AssignRole)
		users.DELETE("/:roleId", ac.RevokeRole)
		users.GET("", ac.ListUserRoles)
	}
}

type assignRoleRequest struct {
	RoleID     string            `json:"role_id" binding:"required"`
	ExpiresAt  string            `json:"expires_at,omitempty"`
	Conditions map[string]string `json:"conditions,omitempty"`
}

// AssignRole endpoint
func (ac *AssignmentController) AssignRole(c *gin.Context) {
	userID := c.Param("id")
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", sentinel_errors.ErrInvalidAssignmentData)
		return
	}
	assignedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	var expiresAt *time.Time
	if expiresAt, err = helper_util.ParseNullableTime(req.ExpiresAt); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid expiry timestamp", sentinel_errors.ErrInvalidAssignmentData)
		return
	}

	if err := ac.assignmentService.AssignRole(c, userID, req.RoleID, assignedBy, expiresAt, req.Conditions); err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, sentinel_errors.ErrDuplicateAssignment):
			util.RespondWithError(c, http.StatusConflict, "User already holds this role", err)
		case errors.Is(err, sentinel_errors.ErrInvalidAssignmentData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to assign role", err)
		}
		return
	}

	c.Status(http.StatusCreated)
}

// RevokeRole endpoint
func (ac *AssignmentController) RevokeRole(c *gin.Context) {
	userID := c.Param("id")
	roleID := c.Param("roleId")
	revokedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	if err := ac.assignmentService.RevokeRole(c, userID, roleID, revokedBy); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke role", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUserRoles endpoint
func (ac *AssignmentController) ListUserRoles(c *gin.Context) {
	userID := c.Param("id")

	assignments, err := ac.assignmentService.ListUserRoles(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list user roles", err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}
