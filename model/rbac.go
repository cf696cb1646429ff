// model/rbac.go
package model

import "time"

// Permission is an atomic capability tied to a resource and an action.
// The catalog of permissions is seeded once and immutable afterwards.
type Permission struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Resource    string            `json:"resource"` // e.g. "products", "orders", "system"
	Action      string            `json:"action"`   // e.g. "read", "create", "publish"
	Conditions  map[string]string `json:"conditions,omitempty"`
}

// Role is a named bundle of permissions. Inherits lists role ids whose own
// permissions are also granted, one hop only: permissions that an inherited
// role itself inherits are NOT carried over.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"` // permission ids
	Inherits    []string  `json:"inherits,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleSpec is the caller-supplied shape for creating or updating a custom role.
type RoleSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Inherits    []string `json:"inherits,omitempty"`
}

// UserRoleAssignment grants one role to one user, optionally time-bounded and
// optionally conditional. An expired assignment stays in the ledger but is
// skipped by every permission computation.
type UserRoleAssignment struct {
	UserID     string            `json:"user_id"`
	RoleID     string            `json:"role_id"`
	AssignedBy string            `json:"assigned_by"`
	AssignedAt time.Time         `json:"assigned_at"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
	Conditions map[string]string `json:"conditions,omitempty"`
}

// Active reports whether the assignment is in force at the given instant.
func (a *UserRoleAssignment) Active(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// AccessRequest is the body of an authorization check.
type AccessRequest struct {
	UserID       string            `json:"user_id"`
	PermissionID string            `json:"permission_id"`
	Context      map[string]string `json:"context,omitempty"`
}

// AccessDecision is the outcome of an authorization check. A negative
// decision is a normal result, not an error.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// AssignmentSearchCriteria filters assignment listings.
type AssignmentSearchCriteria struct {
	UserID        string     `json:"user_id,omitempty"`
	RoleID        string     `json:"role_id,omitempty"`
	ActiveAt      *time.Time `json:"active_at,omitempty"`
	IncludeLapsed bool       `json:"include_lapsed,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}
