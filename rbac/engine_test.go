// rbac/engine_test.go
package rbac_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
	"github.com/driftship/sentinel/rbac"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*rbac.Engine, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := rbac.NewMemoryStore()
	engine, err := rbac.NewEngine(context.Background(), store, store, store, rbac.WithClock(clk.Now))
	require.NoError(t, err)
	return engine, clk
}

func TestSeededRoles(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	roles, err := engine.GetAllRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 5)

	byID := map[string]*model.Role{}
	for _, r := range roles {
		byID[r.ID] = r
	}
	for _, id := range []string{"super_admin", "admin", "content_manager", "customer_service", "analyst"} {
		r, ok := byID[id]
		require.True(t, ok, "missing system role %s", id)
		assert.True(t, r.IsSystem)
	}
}

func TestSeedingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := rbac.NewMemoryStore()

	_, err := rbac.NewEngine(ctx, store, store, store)
	require.NoError(t, err)
	engine, err := rbac.NewEngine(ctx, store, store, store)
	require.NoError(t, err)

	roles, err := engine.GetAllRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 5)
}

func TestSuperAdminHoldsEveryPermission(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AssignRole(ctx, "u-root", model.RoleSuperAdmin, "bootstrap", nil, nil))

	perms, err := engine.GetAllPermissions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, perms)

	for _, p := range perms {
		ok, err := engine.HasPermission(ctx, "u-root", p.ID, nil)
		require.NoError(t, err)
		assert.True(t, ok, "super_admin should hold %s", p.ID)
	}
}

func TestHasPermissionDeniesUnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t)

	ok, err := engine.HasPermission(context.Background(), "nobody", "products.view", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEffectivePermissionsOneHopUnion(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	grandparent, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "catalog-admin",
		Permissions: []string{"products.delete"},
	})
	require.NoError(t, err)

	parentA, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "catalog-editor",
		Permissions: []string{"products.edit"},
		Inherits:    []string{grandparent.ID},
	})
	require.NoError(t, err)

	parentB, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "content-editor",
		Permissions: []string{"content.edit"},
	})
	require.NoError(t, err)

	child, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "junior-editor",
		Permissions: []string{"products.view"},
		Inherits:    []string{parentA.ID, parentB.ID},
	})
	require.NoError(t, err)

	effective, err := engine.EffectivePermissions(ctx, child.ID)
	require.NoError(t, err)

	ids := make([]string, 0, len(effective))
	for _, p := range effective {
		ids = append(ids, p.ID)
	}
	// Own plus one hop: parentA and parentB's own permissions, but NOT
	// products.delete, which parentA merely inherits from grandparent.
	assert.ElementsMatch(t, []string{"products.view", "products.edit", "content.edit"}, ids)
}

func TestExpiredAssignmentIsInert(t *testing.T) {
	engine, clk := newTestEngine(t)
	ctx := context.Background()

	expiry := clk.Now().Add(time.Hour)
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin1", &expiry, nil))

	ok, err := engine.HasPermission(ctx, "u1", "analytics.view", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(2 * time.Hour)

	ok, err = engine.HasPermission(ctx, "u1", "analytics.view", nil)
	require.NoError(t, err)
	assert.False(t, ok, "expired assignment must not grant access")

	perms, err := engine.GetUserPermissions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, perms, "expired assignment must not appear in the listing")
}

func TestExpiryBoundaryIsStrict(t *testing.T) {
	engine, clk := newTestEngine(t)
	ctx := context.Background()

	// ExpiresAt exactly equal to now is already lapsed.
	expiry := clk.Now()
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin1", &expiry, nil))

	ok, err := engine.HasPermission(ctx, "u1", "analytics.view", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConditionalGrant(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	conditions := map[string]string{"storeId": "42"}
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleContentManager, "admin1", nil, conditions))

	t.Run("matching context", func(t *testing.T) {
		ok, err := engine.HasPermission(ctx, "u1", "content.publish", map[string]string{"storeId": "42"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong value", func(t *testing.T) {
		ok, err := engine.HasPermission(ctx, "u1", "content.publish", map[string]string{"storeId": "7"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty context", func(t *testing.T) {
		ok, err := engine.HasPermission(ctx, "u1", "content.publish", map[string]string{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("extra context keys are ignored", func(t *testing.T) {
		ok, err := engine.HasPermission(ctx, "u1", "content.publish",
			map[string]string{"storeId": "42", "region": "eu"})
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestConditionMismatchFallsThroughToOtherAssignments(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleContentManager, "admin1", nil,
		map[string]string{"storeId": "42"}))
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin1", nil, nil))

	// content.publish is carried by both roles; the conditional assignment
	// fails the context but the unconditional admin grant still satisfies it.
	ok, err := engine.HasPermission(ctx, "u1", "content.publish", map[string]string{"storeId": "7"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetUserPermissionsIgnoresConditions(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin1", nil,
		map[string]string{"storeId": "42"}))

	perms, err := engine.GetUserPermissions(ctx, "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	// The capability listing is unconditional even though every actual check
	// without storeId=42 would fail.
	assert.Contains(t, ids, "analytics.view")

	ok, err := engine.HasPermission(ctx, "u1", "analytics.view", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserPermissionsUnionAcrossRoles(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin1", nil, nil))
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleCustomerService, "admin1", nil, nil))

	perms, err := engine.GetUserPermissions(ctx, "u1")
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, p := range perms {
		require.False(t, ids[p.ID], "duplicate permission %s in union", p.ID)
		ids[p.ID] = true
	}
	assert.True(t, ids["analytics.view"])
	assert.True(t, ids["orders.refund"])
	// Shared between both roles, present exactly once.
	assert.True(t, ids["orders.view"])
}

func TestDuplicateAssignmentRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin1", nil, nil))

	err := engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin1", nil, nil)
	assert.ErrorIs(t, err, sentinel_errors.ErrDuplicateAssignment)
}

func TestExpiredAssignmentCanBeRegranted(t *testing.T) {
	engine, clk := newTestEngine(t)
	ctx := context.Background()

	expiry := clk.Now().Add(time.Hour)
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin1", &expiry, nil))

	clk.Advance(2 * time.Hour)

	// The lapsed grant is replaced rather than double-blocking the re-grant.
	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin2", nil, nil))

	ok, err := engine.HasPermission(ctx, "u1", "orders.view", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	active, err := engine.ListUserAssignments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "admin2", active[0].AssignedBy)
	assert.Nil(t, active[0].ExpiresAt)
}

func TestAssignUnknownRole(t *testing.T) {
	engine, _ := newTestEngine(t)

	err := engine.AssignRole(context.Background(), "u1", "no_such_role", "admin1", nil, nil)
	assert.ErrorIs(t, err, sentinel_errors.ErrRoleNotFound)
}

func TestRevokeIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.RevokeRole(ctx, "u1", model.RoleAdmin))

	require.NoError(t, engine.AssignRole(ctx, "u1", model.RoleAdmin, "admin1", nil, nil))
	require.NoError(t, engine.RevokeRole(ctx, "u1", model.RoleAdmin))
	require.NoError(t, engine.RevokeRole(ctx, "u1", model.RoleAdmin))

	ok, err := engine.HasPermission(ctx, "u1", "orders.view", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRoleValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		_, err := engine.CreateRole(ctx, model.RoleSpec{Permissions: []string{"products.view"}})
		assert.ErrorIs(t, err, sentinel_errors.ErrInvalidRoleData)
	})

	t.Run("unknown permission", func(t *testing.T) {
		_, err := engine.CreateRole(ctx, model.RoleSpec{
			Name:        "bogus",
			Permissions: []string{"warp.drive"},
		})
		assert.ErrorIs(t, err, sentinel_errors.ErrPermissionNotFound)
	})

	t.Run("unknown inherited role", func(t *testing.T) {
		_, err := engine.CreateRole(ctx, model.RoleSpec{
			Name:     "bogus",
			Inherits: []string{"no_such_role"},
		})
		assert.ErrorIs(t, err, sentinel_errors.ErrRoleNotFound)
	})

	t.Run("duplicate permission ids collapse", func(t *testing.T) {
		role, err := engine.CreateRole(ctx, model.RoleSpec{
			Name:        "viewer",
			Permissions: []string{"products.view", "products.view"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"products.view"}, role.Permissions)
	})
}

func TestCreateRoleStampsIdentityAndTimestamps(t *testing.T) {
	engine, clk := newTestEngine(t)
	ctx := context.Background()

	role, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "marketing_lead",
		Permissions: []string{"content.create", "content.publish"},
	})
	require.NoError(t, err)
	assert.Contains(t, role.ID, "custom_")
	assert.False(t, role.IsSystem)
	assert.Equal(t, clk.Now(), role.CreatedAt)
	assert.Equal(t, clk.Now(), role.UpdatedAt)
}

func TestUpdateRoleCycleGuard(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := engine.CreateRole(ctx, model.RoleSpec{Name: "a", Permissions: []string{"products.view"}})
	require.NoError(t, err)
	b, err := engine.CreateRole(ctx, model.RoleSpec{Name: "b", Inherits: []string{a.ID}})
	require.NoError(t, err)

	t.Run("direct self reference", func(t *testing.T) {
		_, err := engine.UpdateRole(ctx, a.ID, model.RoleSpec{Name: "a", Inherits: []string{a.ID}})
		assert.ErrorIs(t, err, sentinel_errors.ErrInheritanceCycle)
	})

	t.Run("one hop cycle", func(t *testing.T) {
		_, err := engine.UpdateRole(ctx, a.ID, model.RoleSpec{Name: "a", Inherits: []string{b.ID}})
		assert.ErrorIs(t, err, sentinel_errors.ErrInheritanceCycle)
	})
}

func TestSystemRolesAreImmutable(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.UpdateRole(ctx, model.RoleSuperAdmin, model.RoleSpec{Name: "renamed"})
	assert.ErrorIs(t, err, sentinel_errors.ErrSystemRoleImmutable)

	err = engine.DeleteRole(ctx, model.RoleAdmin)
	assert.ErrorIs(t, err, sentinel_errors.ErrSystemRoleImmutable)
}

func TestDeleteCustomRole(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	role, err := engine.CreateRole(ctx, model.RoleSpec{Name: "temp", Permissions: []string{"products.view"}})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteRole(ctx, role.ID))

	_, err = engine.GetRole(ctx, role.ID)
	assert.ErrorIs(t, err, sentinel_errors.ErrRoleNotFound)

	err = engine.DeleteRole(ctx, role.ID)
	assert.ErrorIs(t, err, sentinel_errors.ErrRoleNotFound)
}

func TestDeletedRoleLeavesDanglingAssignmentInert(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	role, err := engine.CreateRole(ctx, model.RoleSpec{Name: "temp", Permissions: []string{"products.view"}})
	require.NoError(t, err)
	require.NoError(t, engine.AssignRole(ctx, "u1", role.ID, "admin1", nil, nil))
	require.NoError(t, engine.DeleteRole(ctx, role.ID))

	ok, err := engine.HasPermission(ctx, "u1", "products.view", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	perms, err := engine.GetUserPermissions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestMarketingLeadScenario(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	role, err := engine.CreateRole(ctx, model.RoleSpec{
		Name:        "marketing_lead",
		Description: "Owns storefront content launches",
		Permissions: []string{"content.create", "content.publish"},
	})
	require.NoError(t, err)

	require.NoError(t, engine.AssignRole(ctx, "u1", role.ID, "admin1", nil, nil))

	ok, err := engine.HasPermission(ctx, "u1", "content.publish", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.HasPermission(ctx, "u1", "products.delete", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, engine.RevokeRole(ctx, "u1", role.ID))

	ok, err = engine.HasPermission(ctx, "u1", "content.publish", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentGrantsSingleWinner(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.AssignRole(ctx, "u1", model.RoleAnalyst, "admin1", nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	granted := 0
	for err := range errs {
		if err == nil {
			granted++
		} else {
			assert.ErrorIs(t, err, sentinel_errors.ErrDuplicateAssignment)
		}
	}
	assert.Equal(t, 1, granted)

	active, err := engine.ListUserAssignments(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
