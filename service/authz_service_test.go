// service/authz_service_test.go
package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/driftship/sentinel/audit"
	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/rbac"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/test/mock"
	"github.com/driftship/sentinel/util"
)

func newSeededEngine(t *testing.T) *rbac.Engine {
	t.Helper()
	store := rbac.NewMemoryStore()
	engine, err := rbac.NewEngine(context.Background(), store, store, store)
	require.NoError(t, err)
	return engine
}

func TestCheckAccessRecordsAuditEntry(t *testing.T) {
	engine := newSeededEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil))

	auditSvc := new(mock.MockAuditService)
	auditSvc.On("Record", testify_mock.Anything, testify_mock.MatchedBy(func(e audit.Entry) bool {
		return e.Action == audit.ActionAccessCheck && e.UserID == "u1" && e.AccessGranted
	})).Return(nil)

	svc := service.NewAuthzService(engine, util.NewValidationUtil(), util.NewCacheService(), auditSvc)

	decision, err := svc.CheckAccess(ctx, model.AccessRequest{
		UserID:       "u1",
		PermissionID: "analytics.view",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	auditSvc.AssertExpectations(t)
}

func TestCheckAccessDenialIsNotAnError(t *testing.T) {
	engine := newSeededEngine(t)
	ctx := context.Background()

	auditSvc := new(mock.MockAuditService)
	auditSvc.On("Record", testify_mock.Anything, testify_mock.MatchedBy(func(e audit.Entry) bool {
		return !e.AccessGranted
	})).Return(nil)

	svc := service.NewAuthzService(engine, util.NewValidationUtil(), util.NewCacheService(), auditSvc)

	decision, err := svc.CheckAccess(ctx, model.AccessRequest{
		UserID:       "nobody",
		PermissionID: "system.configure",
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
}

func TestCheckAccessValidatesRequest(t *testing.T) {
	engine := newSeededEngine(t)

	svc := service.NewAuthzService(engine, util.NewValidationUtil(), util.NewCacheService(), new(mock.MockAuditService))

	_, err := svc.CheckAccess(context.Background(), model.AccessRequest{})
	assert.ErrorIs(t, err, sentinel_errors.ErrInvalidAccessRequest)
}

func TestCheckAccessSurvivesAuditFailure(t *testing.T) {
	engine := newSeededEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil))

	auditSvc := new(mock.MockAuditService)
	auditSvc.On("Record", testify_mock.Anything, testify_mock.Anything).
		Return(assert.AnError)

	svc := service.NewAuthzService(engine, util.NewValidationUtil(), util.NewCacheService(), auditSvc)

	decision, err := svc.CheckAccess(ctx, model.AccessRequest{
		UserID:       "u1",
		PermissionID: "analytics.view",
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGetUserPermissionsFallsBackToEngine(t *testing.T) {
	engine := newSeededEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil))

	svc := service.NewAuthzService(engine, util.NewValidationUtil(), util.NewCacheService(), new(mock.MockAuditService))

	permissions, err := svc.GetUserPermissions(ctx, "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(permissions))
	for _, p := range permissions {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "analytics.view")
	assert.Contains(t, ids, "analytics.export")
}
