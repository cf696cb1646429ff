// controller/role_controller_test.go
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

func setupRouter(register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("requestingUserID", "tester-1")
		c.Next()
	})
	api := r.Group("/")
	register(api)
	return r
}

func TestRoleController(t *testing.T) {
	newRouter := func(svc *mock.MockRoleService) *gin.Engine {
		rc := controller.NewRoleController(svc)
		return setupRouter(rc.RegisterRoutes)
	}

	t.Run("CreateRole_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("CreateRole", testify_mock.Anything, testify_mock.Anything, "tester-1").
			Return(&model.Role{ID: "custom_1", Name: "Marketing Lead"}, nil)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Marketing Lead","permissions":["marketing.manage"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created model.Role
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "custom_1", created.ID)
		svc.AssertExpectations(t)
	})

	t.Run("CreateRole_Failure_UnknownPermission", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("CreateRole", testify_mock.Anything, testify_mock.Anything, "tester-1").
			Return(nil, sentinel_errors.ErrPermissionNotFound)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Bad Role","permissions":["nope"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("CreateRole_Failure_BadJSON", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/roles", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CreateRole")
	})

	t.Run("UpdateRole_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("UpdateRole", testify_mock.Anything, "custom_1", testify_mock.Anything, "tester-1").
			Return(&model.Role{ID: "custom_1", Name: "Renamed"}, nil)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Renamed"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/roles/custom_1", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateRole_Failure_NotFound", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("UpdateRole", testify_mock.Anything, "missing", testify_mock.Anything, "tester-1").
			Return(nil, sentinel_errors.ErrRoleNotFound)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Renamed"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/roles/missing", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateRole_Failure_SystemRole", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("UpdateRole", testify_mock.Anything, "super_admin", testify_mock.Anything, "tester-1").
			Return(nil, sentinel_errors.ErrSystemRoleImmutable)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Hijacked"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/roles/super_admin", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("UpdateRole_Failure_Cycle", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("UpdateRole", testify_mock.Anything, "custom_1", testify_mock.Anything, "tester-1").
			Return(nil, sentinel_errors.ErrInheritanceCycle)
		router := newRouter(svc)

		body := strings.NewReader(`{"name":"Loop","inherits":["custom_1"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/roles/custom_1", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("DeleteRole_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("DeleteRole", testify_mock.Anything, "custom_1", "tester-1").Return(nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/roles/custom_1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("DeleteRole_Failure_SystemRole", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("DeleteRole", testify_mock.Anything, "admin", "tester-1").
			Return(sentinel_errors.ErrSystemRoleImmutable)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/roles/admin", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("GetRole_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("GetRole", testify_mock.Anything, "analyst").
			Return(&model.Role{ID: "analyst", Name: "Analyst", IsSystem: true}, nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/roles/analyst", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetRole_Failure_NotFound", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("GetRole", testify_mock.Anything, "missing").
			Return(nil, sentinel_errors.ErrRoleNotFound)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/roles/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListRoles_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("ListRoles", testify_mock.Anything).
			Return([]*model.Role{{ID: "admin"}, {ID: "analyst"}}, nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/roles", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var roles []*model.Role
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
		assert.Len(t, roles, 2)
	})

	t.Run("GetEffectivePermissions_Success", func(t *testing.T) {
		svc := new(mock.MockRoleService)
		svc.On("GetEffectivePermissions", testify_mock.Anything, "admin").
			Return([]*model.Permission{{ID: "products.view"}}, nil)
		router := newRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/roles/admin/effective-permissions", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleControllerRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rc := controller.NewRoleController(new(mock.MockRoleService))
	rc.RegisterRoutes(r.Group("/"))

	body := strings.NewReader(`{"name":"No Identity"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/roles", body)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
