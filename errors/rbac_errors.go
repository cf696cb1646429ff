// errors/rbac_errors.go
package errors

import "errors"

var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrDuplicateAssignment = errors.New("user already holds an active assignment for this role")
	ErrInheritanceCycle    = errors.New("role inheritance would reference itself")
	ErrSystemRoleImmutable = errors.New("system roles cannot be modified or deleted")

	ErrInvalidRoleData       = errors.New("invalid role data")
	ErrInvalidAssignmentData = errors.New("invalid assignment data")
	ErrInvalidAccessRequest  = errors.New("invalid access request")

	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)
