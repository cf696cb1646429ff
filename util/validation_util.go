// util/validation_util.go

package util

import (
	"fmt"
	"time"

	"github.com/driftship/sentinel/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateRoleSpec(spec model.RoleSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	for _, id := range spec.Permissions {
		if id == "" {
			return fmt.Errorf("permission ids cannot be empty")
		}
	}
	for _, id := range spec.Inherits {
		if id == "" {
			return fmt.Errorf("inherited role ids cannot be empty")
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateAccessRequest(req model.AccessRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if req.PermissionID == "" {
		return fmt.Errorf("permission id cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateGrant(userID, roleID, assignedBy string, expiresAt *time.Time, now time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if roleID == "" {
		return fmt.Errorf("role id cannot be empty")
	}
	if assignedBy == "" {
		return fmt.Errorf("granting actor cannot be empty")
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return fmt.Errorf("expiry must be in the future")
	}
	return nil
}
