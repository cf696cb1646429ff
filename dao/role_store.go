// dao/role_store.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/driftship/sentinel/audit"
	sentinel_errors "github.com/driftship/sentinel/errors"
	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
	sentinel_neo4j "github.com/driftship/sentinel/model/neo4j"
	"github.com/driftship/sentinel/rbac"
)

type RoleStore struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

var _ rbac.RoleStore = (*RoleStore)(nil)

func NewRoleStore(driver neo4j.Driver, auditService audit.Service) *RoleStore {
	store := &RoleStore{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := store.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Role", zap.Error(err))
	}
	return store
}

func (s *RoleStore) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Role ID")
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_role_id IF NOT EXISTS
        FOR (r:` + sentinel_neo4j.LabelRole + `) REQUIRE r.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Role ID", zap.Error(err))
		return err
	}

	return nil
}

func (s *RoleStore) GetRole(ctx context.Context, id string) (*model.Role, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:` + sentinel_neo4j.LabelRole + ` {id: $id})
        OPTIONAL MATCH (r)-[:` + sentinel_neo4j.RelHasPermission + `]->(p:` + sentinel_neo4j.LabelPermission + `)
        OPTIONAL MATCH (r)-[:` + sentinel_neo4j.RelInherits + `]->(i:` + sentinel_neo4j.LabelRole + `)
        RETURN r.id, r.name, r.description, r.isSystem, r.createdAt, r.updatedAt,
               collect(DISTINCT p.id) AS permissions,
               collect(DISTINCT i.id) AS inherits
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": id})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return roleFromValues(result.Record().Values)
		}
		return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrRoleNotFound, id)
	})

	if err != nil {
		return nil, err
	}
	return result.(*model.Role), nil
}

func (s *RoleStore) ListRoles(ctx context.Context) ([]*model.Role, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:` + sentinel_neo4j.LabelRole + `)
        OPTIONAL MATCH (r)-[:` + sentinel_neo4j.RelHasPermission + `]->(p:` + sentinel_neo4j.LabelPermission + `)
        OPTIONAL MATCH (r)-[:` + sentinel_neo4j.RelInherits + `]->(i:` + sentinel_neo4j.LabelRole + `)
        RETURN r.id, r.name, r.description, r.isSystem, r.createdAt, r.updatedAt,
               collect(DISTINCT p.id) AS permissions,
               collect(DISTINCT i.id) AS inherits
        ORDER BY r.id
        `
		result, err := transaction.Run(query, nil)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		var roles []*model.Role
		for result.Next() {
			role, err := roleFromValues(result.Record().Values)
			if err != nil {
				return nil, err
			}
			roles = append(roles, role)
		}
		return roles, result.Err()
	})

	if err != nil {
		logger.Error("Failed to list roles", zap.Error(err))
		return nil, err
	}
	return result.([]*model.Role), nil
}

func (s *RoleStore) PutRole(ctx context.Context, role model.Role) error {
	start := time.Now()
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// Rewrite the node and its outgoing definition edges wholesale; a
		// role's permission and inheritance sets are small.
		nodeQuery := `
        MERGE (r:` + sentinel_neo4j.LabelRole + ` {id: $id})
        SET r.name = $name,
            r.description = $description,
            r.isSystem = $isSystem,
            r.createdAt = $createdAt,
            r.updatedAt = $updatedAt
        WITH r
        OPTIONAL MATCH (r)-[hp:` + sentinel_neo4j.RelHasPermission + `]->()
        DELETE hp
        WITH DISTINCT r
        OPTIONAL MATCH (r)-[ih:` + sentinel_neo4j.RelInherits + `]->()
        DELETE ih
        RETURN DISTINCT r.id
        `
		nodeParams := map[string]interface{}{
			"id":          role.ID,
			"name":        role.Name,
			"description": role.Description,
			"isSystem":    role.IsSystem,
			"createdAt":   role.CreatedAt.Format(time.RFC3339Nano),
			"updatedAt":   role.UpdatedAt.Format(time.RFC3339Nano),
		}
		if _, err := transaction.Run(nodeQuery, nodeParams); err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		if len(role.Permissions) > 0 {
			permQuery := `
            MATCH (r:` + sentinel_neo4j.LabelRole + ` {id: $id})
            UNWIND $permissions AS permissionID
            MATCH (p:` + sentinel_neo4j.LabelPermission + ` {id: permissionID})
            MERGE (r)-[:` + sentinel_neo4j.RelHasPermission + `]->(p)
            `
			params := map[string]interface{}{"id": role.ID, "permissions": role.Permissions}
			if _, err := transaction.Run(permQuery, params); err != nil {
				return nil, sentinel_errors.ErrDatabaseOperation
			}
		}

		if len(role.Inherits) > 0 {
			inheritQuery := `
            MATCH (r:` + sentinel_neo4j.LabelRole + ` {id: $id})
            UNWIND $inherits AS inheritedID
            MATCH (i:` + sentinel_neo4j.LabelRole + ` {id: inheritedID})
            MERGE (r)-[:` + sentinel_neo4j.RelInherits + `]->(i)
            `
			params := map[string]interface{}{"id": role.ID, "inherits": role.Inherits}
			if _, err := transaction.Run(inheritQuery, params); err != nil {
				return nil, sentinel_errors.ErrDatabaseOperation
			}
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to store role",
			zap.Error(err),
			zap.String("roleID", role.ID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Role stored",
		zap.String("roleID", role.ID),
		zap.Duration("duration", duration))

	// A freshly created role carries identical timestamps.
	action := audit.ActionUpdateRole
	if role.CreatedAt.Equal(role.UpdatedAt) {
		action = audit.ActionCreateRole
	}
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        action,
		ResourceID:    role.ID,
		AccessGranted: true,
		RoleID:        role.ID,
	}
	if err := s.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func (s *RoleStore) DeleteRole(ctx context.Context, id string) error {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:` + sentinel_neo4j.LabelRole + ` {id: $id})
        DETACH DELETE r
        RETURN count(r) AS removed
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": id})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if result.Next() {
			if removed, ok := result.Record().Values[0].(int64); ok && removed == 0 {
				return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrRoleNotFound, id)
			}
		}
		return nil, nil
	})

	if err != nil {
		return err
	}

	logger.Info("Role deleted", zap.String("roleID", id))

	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        audit.ActionDeleteRole,
		ResourceID:    id,
		AccessGranted: true,
		RoleID:        id,
	}
	if err := s.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func roleFromValues(values []interface{}) (*model.Role, error) {
	createdAt, err := parseTimestamp(values[4])
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(values[5])
	if err != nil {
		return nil, err
	}

	isSystem, _ := values[3].(bool)
	return &model.Role{
		ID:          stringValue(values[0]),
		Name:        stringValue(values[1]),
		Description: stringValue(values[2]),
		IsSystem:    isSystem,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Permissions: stringSlice(values[6]),
		Inherits:    stringSlice(values[7]),
	}, nil
}

func parseTimestamp(v interface{}) (time.Time, error) {
	s := stringValue(v)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// requestingUser pulls the acting identity from the request context. Data
// written outside a request (seeding, migrations) is attributed to "system".
func requestingUser(ctx context.Context) string {
	if v := ctx.Value("requestingUserID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "system"
}
