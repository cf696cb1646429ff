// test/mock/services.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/driftship/sentinel/model"
)

// MockAuthzService is a mock implementation of service.IAuthzService
type MockAuthzService struct {
	mock.Mock
}

func (m *MockAuthzService) CheckAccess(ctx context.Context, req model.AccessRequest) (*model.AccessDecision, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessDecision), args.Error(1)
}

func (m *MockAuthzService) GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Permission), args.Error(1)
}

// MockRoleService is a mock implementation of service.IRoleService
type MockRoleService struct {
	mock.Mock
}

func (m *MockRoleService) CreateRole(ctx context.Context, spec model.RoleSpec, creatorID string) (*model.Role, error) {
	args := m.Called(ctx, spec, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleService) UpdateRole(ctx context.Context, roleID string, spec model.RoleSpec, updaterID string) (*model.Role, error) {
	args := m.Called(ctx, roleID, spec, updaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleService) DeleteRole(ctx context.Context, roleID string, deleterID string) error {
	args := m.Called(ctx, roleID, deleterID)
	return args.Error(0)
}

func (m *MockRoleService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleService) ListRoles(ctx context.Context) ([]*model.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Role), args.Error(1)
}

func (m *MockRoleService) GetEffectivePermissions(ctx context.Context, roleID string) ([]*model.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Permission), args.Error(1)
}

// MockPermissionService is a mock implementation of service.IPermissionService
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	args := m.Called(ctx, permissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Permission), args.Error(1)
}

func (m *MockPermissionService) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Permission), args.Error(1)
}

// MockAssignmentService is a mock implementation of service.IAssignmentService
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) AssignRole(ctx context.Context, userID, roleID, assignedBy string, expiresAt *time.Time, conditions map[string]string) error {
	args := m.Called(ctx, userID, roleID, assignedBy, expiresAt, conditions)
	return args.Error(0)
}

func (m *MockAssignmentService) RevokeRole(ctx context.Context, userID, roleID, revokedBy string) error {
	args := m.Called(ctx, userID, roleID, revokedBy)
	return args.Error(0)
}

func (m *MockAssignmentService) ListUserRoles(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserRoleAssignment), args.Error(1)
}
