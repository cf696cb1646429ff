// rbac/engine.go
package rbac

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
)

// Engine is the authorization facade: it composes the permission catalog, the
// role registry and the assignment ledger to answer "can user U do permission
// P under context C?" and to expose role-authoring operations.
//
// One instance is constructed at startup and injected into the services that
// need it; there is no package-level singleton.
type Engine struct {
	permissions PermissionStore
	roles       RoleStore
	assignments AssignmentStore

	now    func() time.Time
	logger *zap.Logger

	// Grant is check-then-insert; serialize it per user so two concurrent
	// grants of the same role cannot both pass the duplicate check.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, used by expiry tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger attaches a zap logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine wires the stores together and seeds the permission catalog and
// the five system roles when they are absent. Seeding never overwrites an
// existing record, so restarting against a durable store is safe.
func NewEngine(ctx context.Context, permissions PermissionStore, roles RoleStore, assignments AssignmentStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		permissions: permissions,
		roles:       roles,
		assignments: assignments,
		now:         time.Now,
		logger:      zap.NewNop(),
		userLocks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.seed(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed authorization data: %w", err)
	}
	return e, nil
}

func (e *Engine) seed(ctx context.Context) error {
	for _, p := range model.SeedPermissions() {
		if _, err := e.permissions.GetPermission(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, sentinel_errors.ErrPermissionNotFound) {
			return err
		}
		if err := e.permissions.PutPermission(ctx, p); err != nil {
			return err
		}
	}

	for _, r := range model.SeedRoles(e.now()) {
		if _, err := e.roles.GetRole(ctx, r.ID); err == nil {
			continue
		} else if !errors.Is(err, sentinel_errors.ErrRoleNotFound) {
			return err
		}
		if err := e.roles.PutRole(ctx, r); err != nil {
			return err
		}
		e.logger.Info("Seeded system role", zap.String("roleID", r.ID))
	}
	return nil
}

// HasPermission reports whether the user can exercise the permission right
// now, optionally under a caller-supplied evaluation context. The first
// active assignment whose role carries the permission and whose conditions
// (if any) match evalCtx wins; a condition mismatch only disqualifies that
// assignment, not the whole check. A negative outcome is (false, nil), never
// an error.
func (e *Engine) HasPermission(ctx context.Context, userID, permissionID string, evalCtx map[string]string) (bool, error) {
	held, err := e.assignments.ListAssignments(ctx, userID)
	if err != nil {
		return false, err
	}

	now := e.now()
	for _, a := range held {
		if !a.Active(now) {
			continue
		}
		effective, err := e.effectivePermissionIDs(ctx, a.RoleID)
		if err != nil {
			if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
				// Dangling assignment; the role was deleted out from under it.
				e.logger.Warn("Assignment references unknown role",
					zap.String("userID", userID), zap.String("roleID", a.RoleID))
				continue
			}
			return false, err
		}
		if _, ok := effective[permissionID]; !ok {
			continue
		}
		if !conditionsMatch(a.Conditions, evalCtx) {
			continue
		}
		return true, nil
	}
	return false, nil
}

// GetUserPermissions returns the de-duplicated union of effective permissions
// across every currently active assignment.
//
// Unlike HasPermission this listing is unconditional: assignment-level
// conditions are not applied. A capability listing answers "what could this
// user ever do", an access check answers "may they do it under this exact
// context". Keep the asymmetry.
func (e *Engine) GetUserPermissions(ctx context.Context, userID string) ([]*model.Permission, error) {
	held, err := e.assignments.ListAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	union := make(map[string]struct{})
	for _, a := range held {
		if !a.Active(now) {
			continue
		}
		effective, err := e.effectivePermissionIDs(ctx, a.RoleID)
		if err != nil {
			if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
				continue
			}
			return nil, err
		}
		for id := range effective {
			union[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*model.Permission, 0, len(ids))
	for _, id := range ids {
		p, err := e.permissions.GetPermission(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel_errors.ErrPermissionNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// AssignRole grants roleID to userID. An active assignment for the same role
// is rejected with ErrDuplicateAssignment; a lapsed one is replaced in place,
// so re-granting an expired role does not require an explicit revoke first.
func (e *Engine) AssignRole(ctx context.Context, userID, roleID, assignedBy string, expiresAt *time.Time, conditions map[string]string) error {
	lock := e.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.roles.GetRole(ctx, roleID); err != nil {
		return err
	}

	held, err := e.assignments.ListAssignments(ctx, userID)
	if err != nil {
		return err
	}

	now := e.now()
	for _, a := range held {
		if a.RoleID != roleID {
			continue
		}
		if a.Active(now) {
			return fmt.Errorf("%w: user %q role %q", sentinel_errors.ErrDuplicateAssignment, userID, roleID)
		}
		// Lapsed grant for the same role: drop it and record the new one.
		if _, err := e.assignments.DeleteAssignments(ctx, userID, roleID); err != nil {
			return err
		}
		break
	}

	return e.assignments.PutAssignment(ctx, model.UserRoleAssignment{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: assignedBy,
		AssignedAt: now,
		ExpiresAt:  expiresAt,
		Conditions: conditions,
	})
}

// RevokeRole removes every assignment of roleID held by userID. Revoking a
// role the user does not hold is a no-op.
func (e *Engine) RevokeRole(ctx context.Context, userID, roleID string) error {
	lock := e.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	_, err := e.assignments.DeleteAssignments(ctx, userID, roleID)
	return err
}

// ListUserAssignments returns the user's currently active assignments.
func (e *Engine) ListUserAssignments(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error) {
	held, err := e.assignments.ListAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	active := make([]*model.UserRoleAssignment, 0, len(held))
	for _, a := range held {
		if a.Active(now) {
			active = append(active, a)
		}
	}
	return active, nil
}

// CreateRole registers a custom role. Permission ids must exist in the
// catalog and inherited role ids must resolve; both are validated here
// rather than at resolution time.
func (e *Engine) CreateRole(ctx context.Context, spec model.RoleSpec) (*model.Role, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: name is required", sentinel_errors.ErrInvalidRoleData)
	}
	if err := e.validateRoleSpec(ctx, "", spec); err != nil {
		return nil, err
	}

	now := e.now()
	role := model.Role{
		ID:          "custom_" + uuid.New().String(),
		Name:        spec.Name,
		Description: spec.Description,
		Permissions: dedupe(spec.Permissions),
		Inherits:    dedupe(spec.Inherits),
		IsSystem:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.roles.PutRole(ctx, role); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole rewrites a custom role's definition. System roles are immutable.
func (e *Engine) UpdateRole(ctx context.Context, roleID string, spec model.RoleSpec) (*model.Role, error) {
	existing, err := e.roles.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if existing.IsSystem {
		return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrSystemRoleImmutable, roleID)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: name is required", sentinel_errors.ErrInvalidRoleData)
	}
	if err := e.validateRoleSpec(ctx, roleID, spec); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = spec.Name
	updated.Description = spec.Description
	updated.Permissions = dedupe(spec.Permissions)
	updated.Inherits = dedupe(spec.Inherits)
	updated.UpdatedAt = e.now()
	if err := e.roles.PutRole(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRole removes a custom role. System roles are immutable.
func (e *Engine) DeleteRole(ctx context.Context, roleID string) error {
	existing, err := e.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("%w: %q", sentinel_errors.ErrSystemRoleImmutable, roleID)
	}
	return e.roles.DeleteRole(ctx, roleID)
}

// GetRole returns a single role by id.
func (e *Engine) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	return e.roles.GetRole(ctx, roleID)
}

// GetAllRoles lists every registered role, system and custom.
func (e *Engine) GetAllRoles(ctx context.Context) ([]*model.Role, error) {
	return e.roles.ListRoles(ctx)
}

// GetAllPermissions lists the permission catalog.
func (e *Engine) GetAllPermissions(ctx context.Context) ([]*model.Permission, error) {
	return e.permissions.ListPermissions(ctx)
}

// EffectivePermissions resolves a role's own permissions plus one hop of
// inheritance, de-duplicated by permission id.
func (e *Engine) EffectivePermissions(ctx context.Context, roleID string) ([]*model.Permission, error) {
	effective, err := e.effectivePermissionIDs(ctx, roleID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(effective))
	for id := range effective {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*model.Permission, 0, len(ids))
	for _, id := range ids {
		p, err := e.permissions.GetPermission(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel_errors.ErrPermissionNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// effectivePermissionIDs is the one-hop resolution rule: the role's own
// permission ids, plus the OWN ids of each directly inherited role.
// Permissions an inherited role itself inherits are deliberately excluded;
// that is the contract, not an oversight.
func (e *Engine) effectivePermissionIDs(ctx context.Context, roleID string) (map[string]struct{}, error) {
	role, err := e.roles.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(role.Permissions))
	for _, id := range role.Permissions {
		out[id] = struct{}{}
	}
	for _, inheritedID := range role.Inherits {
		inherited, err := e.roles.GetRole(ctx, inheritedID)
		if err != nil {
			if errors.Is(err, sentinel_errors.ErrRoleNotFound) {
				e.logger.Warn("Role inherits unknown role",
					zap.String("roleID", roleID), zap.String("inheritedID", inheritedID))
				continue
			}
			return nil, err
		}
		for _, id := range inherited.Permissions {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// validateRoleSpec checks that the spec's permission and role references
// resolve, and that inheritance cannot reach back to selfID within one hop.
func (e *Engine) validateRoleSpec(ctx context.Context, selfID string, spec model.RoleSpec) error {
	for _, pid := range spec.Permissions {
		if _, err := e.permissions.GetPermission(ctx, pid); err != nil {
			return err
		}
	}
	for _, rid := range spec.Inherits {
		if selfID != "" && rid == selfID {
			return fmt.Errorf("%w: %q", sentinel_errors.ErrInheritanceCycle, selfID)
		}
		inherited, err := e.roles.GetRole(ctx, rid)
		if err != nil {
			return err
		}
		if selfID != "" {
			for _, nested := range inherited.Inherits {
				if nested == selfID {
					return fmt.Errorf("%w: %q via %q", sentinel_errors.ErrInheritanceCycle, selfID, rid)
				}
			}
		}
	}
	return nil
}

func (e *Engine) lockFor(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// conditionsMatch requires every condition key/value to equal the supplied
// context exactly. Assignments without conditions always match.
func conditionsMatch(conditions, evalCtx map[string]string) bool {
	for key, want := range conditions {
		got, ok := evalCtx[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
