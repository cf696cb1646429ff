// dao/assignment_store.go
package dao

import (
	"context"
	"encoding/json"
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

type AssignmentStore struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

var _ rbac.AssignmentStore = (*AssignmentStore)(nil)

func NewAssignmentStore(driver neo4j.Driver, auditService audit.Service) *AssignmentStore {
	return &AssignmentStore{Driver: driver, AuditService: auditService}
}

func (s *AssignmentStore) ListAssignments(ctx context.Context, userID string) ([]*model.UserRoleAssignment, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + sentinel_neo4j.LabelUser + ` {id: $userId})-[h:` + sentinel_neo4j.RelHasRole + `]->(r:` + sentinel_neo4j.LabelRole + `)
        RETURN r.id, h.assignedBy, h.assignedAt, h.expiresAt, h.conditions
        `
		result, err := transaction.Run(query, map[string]interface{}{"userId": userID})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		var assignments []*model.UserRoleAssignment
		for result.Next() {
			assignment, err := assignmentFromValues(userID, result.Record().Values)
			if err != nil {
				return nil, err
			}
			assignments = append(assignments, assignment)
		}
		return assignments, result.Err()
	})

	if err != nil {
		logger.Error("Failed to list assignments", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}
	return result.([]*model.UserRoleAssignment), nil
}

func (s *AssignmentStore) PutAssignment(ctx context.Context, assignment model.UserRoleAssignment) error {
	start := time.Now()
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:` + sentinel_neo4j.LabelUser + ` {id: $userId})
        WITH u
        MATCH (r:` + sentinel_neo4j.LabelRole + ` {id: $roleId})
        CREATE (u)-[h:` + sentinel_neo4j.RelHasRole + `]->(r)
        SET h += $props
        RETURN r.id
        `

		props := map[string]interface{}{
			"assignedBy": assignment.AssignedBy,
			"assignedAt": assignment.AssignedAt.Format(time.RFC3339Nano),
		}
		if assignment.ExpiresAt != nil {
			props["expiresAt"] = assignment.ExpiresAt.Format(time.RFC3339Nano)
		}
		if len(assignment.Conditions) > 0 {
			conditionsJSON, err := json.Marshal(assignment.Conditions)
			if err != nil {
				return nil, err
			}
			props["conditions"] = string(conditionsJSON)
		}

		params := map[string]interface{}{
			"userId": assignment.UserID,
			"roleId": assignment.RoleID,
			"props":  props,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, sentinel_errors.ErrRoleNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to store assignment",
			zap.Error(err),
			zap.String("userID", assignment.UserID),
			zap.String("roleID", assignment.RoleID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Assignment stored",
		zap.String("userID", assignment.UserID),
		zap.String("roleID", assignment.RoleID),
		zap.Duration("duration", duration))

	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        assignment.AssignedBy,
		Action:        audit.ActionAssignRole,
		ResourceID:    assignment.UserID,
		AccessGranted: true,
		RoleID:        assignment.RoleID,
	}
	if err := s.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func (s *AssignmentStore) DeleteAssignments(ctx context.Context, userID, roleID string) (int, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + sentinel_neo4j.LabelUser + ` {id: $userId})-[h:` + sentinel_neo4j.RelHasRole + `]->(r:` + sentinel_neo4j.LabelRole + ` {id: $roleId})
        DELETE h
        RETURN count(h) AS removed
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId": userID,
			"roleId": roleID,
		})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		if result.Next() {
			if removed, ok := result.Record().Values[0].(int64); ok {
				return int(removed), nil
			}
		}
		return 0, nil
	})

	if err != nil {
		logger.Error("Failed to delete assignments",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("roleID", roleID))
		return 0, err
	}

	removed := result.(int)
	if removed > 0 {
		entry := audit.Entry{
			Timestamp:     time.Now(),
			UserID:        requestingUser(ctx),
			Action:        audit.ActionRevokeRole,
			ResourceID:    userID,
			AccessGranted: true,
			RoleID:        roleID,
		}
		if err := s.AuditService.Record(ctx, entry); err != nil {
			logger.Error("Failed to create audit log", zap.Error(err))
		}
	}
	return removed, nil
}

func assignmentFromValues(userID string, values []interface{}) (*model.UserRoleAssignment, error) {
	assignedAt, err := parseTimestamp(values[2])
	if err != nil {
		return nil, err
	}

	assignment := &model.UserRoleAssignment{
		UserID:     userID,
		RoleID:     stringValue(values[0]),
		AssignedBy: stringValue(values[1]),
		AssignedAt: assignedAt,
	}

	if expires := stringValue(values[3]); expires != "" {
		t, err := parseTimestamp(values[3])
		if err != nil {
			return nil, err
		}
		assignment.ExpiresAt = &t
	}

	if conditionsJSON := stringValue(values[4]); conditionsJSON != "" {
		if err := json.Unmarshal([]byte(conditionsJSON), &assignment.Conditions); err != nil {
			return nil, err
		}
	}

	return assignment, nil
}
