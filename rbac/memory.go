// rbac/memory.go
package rbac

import (
	"context"
	"fmt"
	"sort"
	"sync"

	sentinel_errors "github.com/driftship/sentinel/errors"
	"github.com/driftship/sentinel/model"
)

// MemoryStore is the in-process Store implementation: three maps behind one
// RWMutex. It is the default backend for single-node deployments and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	permissions map[string]model.Permission
	roles       map[string]model.Role
	assignments map[string][]model.UserRoleAssignment // keyed by userID
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		permissions: make(map[string]model.Permission),
		roles:       make(map[string]model.Role),
		assignments: make(map[string][]model.UserRoleAssignment),
	}
}

func (s *MemoryStore) GetPermission(ctx context.Context, id string) (*model.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.permissions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrPermissionNotFound, id)
	}
	return &p, nil
}

func (s *MemoryStore) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Permission, 0, len(s.permissions))
	for id := range s.permissions {
		p := s.permissions[id]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) PutPermission(ctx context.Context, permission model.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions[permission.ID] = permission
	return nil
}

func (s *MemoryStore) GetRole(ctx context.Context, id string) (*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrRoleNotFound, id)
	}
	return &r, nil
}

func (s *MemoryStore) ListRoles(ctx context.Context) ([]*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Role, 0, len(s.roles))
	for id := range s.roles {
		r := s.roles[id]
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) PutRole(ctx context.Context, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[role.ID] = role
	return nil
}

func (s *MemoryStore) DeleteRole(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[id]; !ok {
		return fmt.Errorf("%w: %q", sentinel_errors.ErrRoleNotFound, id)
	}
	delete(s.roles, id)
	return nil
}

func (s *MemoryStore) ListAssignments(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held := s.assignments[userID]
	out := make([]*model.UserRoleAssignment, 0, len(held))
	for i := range held {
		a := held[i]
		out = append(out, &a)
	}
	return out, nil
}

func (s *MemoryStore) PutAssignment(ctx context.Context, assignment model.UserRoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[assignment.UserID] = append(s.assignments[assignment.UserID], assignment)
	return nil
}

func (s *MemoryStore) DeleteAssignments(ctx context.Context, userID, roleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := s.assignments[userID]
	kept := held[:0]
	removed := 0
	for _, a := range held {
		if a.RoleID == roleID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		delete(s.assignments, userID)
	} else {
		s.assignments[userID] = kept
	}
	return removed, nil
}
