// rbac/store.go
package rbac

import (
	"context"

	"github.com/driftship/sentinel/model"
)

// PermissionStore holds the permission catalog. The catalog is seeded once at
// engine construction and is a pure read surface afterwards.
type PermissionStore interface {
	GetPermission(ctx context.Context, id string) (*model.Permission, error)
	ListPermissions(ctx context.Context) ([]*model.Permission, error)
	PutPermission(ctx context.Context, permission model.Permission) error
}

// RoleStore holds roles, system and custom alike.
type RoleStore interface {
	GetRole(ctx context.Context, id string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	PutRole(ctx context.Context, role model.Role) error
	DeleteRole(ctx context.Context, id string) error
}

// AssignmentStore records which roles a user holds. Expired assignments stay
// in the store; filtering happens in the engine.
type AssignmentStore interface {
	ListAssignments(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error)
	PutAssignment(ctx context.Context, assignment model.UserRoleAssignment) error
	// DeleteAssignments removes every assignment matching (userID, roleID) and
	// returns how many were removed. Removing nothing is not an error.
	DeleteAssignments(ctx context.Context, userID, roleID string) (int, error)
}

// Store bundles the three entity stores for backends that implement all of
// them over one connection.
type Store interface {
	PermissionStore
	RoleStore
	AssignmentStore
}
