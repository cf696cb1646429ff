// controller/assignment_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/driftship/sentinel/controller"
	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/test/mock"
)

func TestAssignmentController(t *testing.T) {
	newRouter := func(svc *mock.MockAssignmentService) *gin.Engine {
		ac := controller.NewAssignmentController(svc)
		return setupRouter(ac.RegisterRoutes)
	}

	t.Run("AssignRole_Success", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("AssignRole", testify_mock.Anything, "u1", "analyst", "tester-1", testify_mock.Anything, testify_mock.Anything).
			Return(nil)
		router := newRouter(svc)

		body := strings.NewReader(`{"role_id":"analyst"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/u1/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("AssignRole_WithExpiryAndConditions", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("AssignRole", testify_mock.Anything, "u1", "content_manager", "tester-1", testify_mock.Anything, map[string]string{"department": "marketing"}).
			Return(nil)
		router := newRouter(svc)

		body := strings.NewReader(`{"role_id":"content_manager","expires_at":"2027-01-01T00:00:00Z","conditions":{"department":"marketing"}}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/u1/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("AssignRole_Failure_BadExpiry", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		router := newRouter(svc)

		body := strings.NewReader(`{"role_id":"analyst","expires_at":"tomorrow"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/u1/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "AssignRole")
	})

	t.Run("AssignRole_Failure_UnknownRole", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("AssignRole", testify_mock.Anything, "u1", "ghost", "tester-1", testify_mock.Anything, testify_mock.Anything).
			Return(sentinel_errors.ErrRoleNotFound)
		router := newRouter(svc)

		body := strings.NewReader(`{"role_id":"ghost"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/u1/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("AssignRole_Failure_Duplicate", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("AssignRole", testify_mock.Anything, "u1", "analyst", "tester-1", testify_mock.Anything, testify_mock.Anything).
			Return(sentinel_errors.ErrDuplicateAssignment)
		router := newRouter(svc)

		body := strings.NewReader(`{"role_id":"analyst"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/u1/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("RevokeRole_Success", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("RevokeRole", testify_mock.Anything, "u1", "analyst", "tester-1").Return(nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u1/roles/analyst", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("RevokeRole_AbsentGrant_StillNoContent", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("RevokeRole", testify_mock.Anything, "u1", "never_had_it", "tester-1").Return(nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u1/roles/never_had_it", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("ListUserRoles_Success", func(t *testing.T) {
		svc := new(mock.MockAssignmentService)
		svc.On("ListUserRoles", testify_mock.Anything, "u1").
			Return([]*model.UserRoleAssignment{
				{UserID: "u1", RoleID: "analyst", AssignedBy: "admin-1"},
			}, nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/users/u1/roles", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var assignments []*model.UserRoleAssignment
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignments))
		assert.Len(t, assignments, 1)
		assert.Equal(t, "analyst", assignments[0].RoleID)
	})
}
