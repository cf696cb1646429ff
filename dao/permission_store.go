// dao/permission_store.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	sentinel_errors "github.com/driftship/sentinel/errors"
	logger "github.com/driftship/sentinel/logging"
	"github.com/driftship/sentinel/model"
	sentinel_neo4j "github.com/driftship/sentinel/model/neo4j"
	"github.com/driftship/sentinel/rbac"
)

type PermissionStore struct {
	Driver neo4j.Driver
}

var _ rbac.PermissionStore = (*PermissionStore)(nil)

func NewPermissionStore(driver neo4j.Driver) *PermissionStore {
	store := &PermissionStore{Driver: driver}
	ctx := context.Background()
	if err := store.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Permission", zap.Error(err))
	}
	return store
}

func (s *PermissionStore) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Permission ID")
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_permission_id IF NOT EXISTS
        FOR (p:` + sentinel_neo4j.LabelPermission + `) REQUIRE p.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Permission ID", zap.Error(err))
		return err
	}

	return nil
}

func (s *PermissionStore) GetPermission(ctx context.Context, id string) (*model.Permission, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + sentinel_neo4j.LabelPermission + ` {id: $id})
        RETURN p.id, p.name, p.description, p.resource, p.action
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": id})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return permissionFromValues(result.Record().Values), nil
		}
		return nil, fmt.Errorf("%w: %q", sentinel_errors.ErrPermissionNotFound, id)
	})

	if err != nil {
		return nil, err
	}
	return result.(*model.Permission), nil
}

func (s *PermissionStore) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + sentinel_neo4j.LabelPermission + `)
        RETURN p.id, p.name, p.description, p.resource, p.action
        ORDER BY p.id
        `
		result, err := transaction.Run(query, nil)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		var permissions []*model.Permission
		for result.Next() {
			permissions = append(permissions, permissionFromValues(result.Record().Values))
		}
		return permissions, result.Err()
	})

	if err != nil {
		logger.Error("Failed to list permissions", zap.Error(err))
		return nil, err
	}
	return result.([]*model.Permission), nil
}

func (s *PermissionStore) PutPermission(ctx context.Context, permission model.Permission) error {
	start := time.Now()
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (p:` + sentinel_neo4j.LabelPermission + ` {id: $id})
        SET p += $props
        RETURN p.id
        `
		params := map[string]interface{}{
			"id": permission.ID,
			"props": map[string]interface{}{
				"name":        permission.Name,
				"description": permission.Description,
				"resource":    permission.Resource,
				"action":      permission.Action,
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, sentinel_errors.ErrInternalServer
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to store permission",
			zap.Error(err),
			zap.String("permissionID", permission.ID),
			zap.Duration("duration", time.Since(start)))
		return err
	}

	logger.Debug("Permission stored",
		zap.String("permissionID", permission.ID),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func permissionFromValues(values []interface{}) *model.Permission {
	return &model.Permission{
		ID:          stringValue(values[0]),
		Name:        stringValue(values[1]),
		Description: stringValue(values[2]),
		Resource:    stringValue(values[3]),
		Action:      stringValue(values[4]),
	}
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
