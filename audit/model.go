// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Entry is one audit record: an authorization decision or a mutation of the
// role/assignment data. For decision entries ResourceID holds the permission
// id that was checked; for mutations it holds the affected role id.
type Entry struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	ResourceID    string          `json:"resource_id"`
	AccessGranted bool            `json:"access_granted"`
	RoleID        string          `json:"role_id,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}

// Audit action names.
const (
	ActionAccessCheck = "ACCESS_CHECK"
	ActionCreateRole  = "CREATE_ROLE"
	ActionUpdateRole  = "UPDATE_ROLE"
	ActionDeleteRole  = "DELETE_ROLE"
	ActionAssignRole  = "ASSIGN_ROLE"
	ActionRevokeRole  = "REVOKE_ROLE"
)
