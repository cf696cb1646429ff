// service/assignment_service_test.go
package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/service"
	"github.com/driftship/sentinel/util"
)

func newAssignmentService(t *testing.T) service.IAssignmentService {
	t.Helper()
	engine := newSeededEngine(t)
	eventBus := util.NewEventBus()
	eventBus.Start(context.Background())
	return service.NewAssignmentService(engine, util.NewValidationUtil(), util.NewCacheService(), util.NewNotificationService(), eventBus)
}

func TestAssignRoleRejectsPastExpiry(t *testing.T) {
	svc := newAssignmentService(t)

	yesterday := time.Now().Add(-24 * time.Hour)
	err := svc.AssignRole(context.Background(), "u1", model.RoleAnalyst, "admin-1", &yesterday, nil)
	assert.ErrorIs(t, err, sentinel_errors.ErrInvalidAssignmentData)
}

func TestAssignRolePropagatesUnknownRole(t *testing.T) {
	svc := newAssignmentService(t)

	err := svc.AssignRole(context.Background(), "u1", "ghost", "admin-1", nil, nil)
	assert.ErrorIs(t, err, sentinel_errors.ErrRoleNotFound)
}

func TestAssignRolePropagatesDuplicate(t *testing.T) {
	svc := newAssignmentService(t)
	ctx := context.Background()

	require.NoError(t, svc.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil))
	err := svc.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil)
	assert.ErrorIs(t, err, sentinel_errors.ErrDuplicateAssignment)
}

func TestRevokeThenListUserRoles(t *testing.T) {
	svc := newAssignmentService(t)
	ctx := context.Background()

	require.NoError(t, svc.AssignRole(ctx, "u1", model.RoleAnalyst, "admin-1", nil, nil))
	require.NoError(t, svc.AssignRole(ctx, "u1", model.RoleContentManager, "admin-1", nil, nil))

	assignments, err := svc.ListUserRoles(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, assignments, 2)

	require.NoError(t, svc.RevokeRole(ctx, "u1", model.RoleAnalyst, "admin-1"))

	assignments, err = svc.ListUserRoles(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, model.RoleContentManager, assignments[0].RoleID)
}

func TestRevokeAbsentGrantIsNoError(t *testing.T) {
	svc := newAssignmentService(t)

	assert.NoError(t, svc.RevokeRole(context.Background(), "u1", model.RoleAnalyst, "admin-1"))
}
