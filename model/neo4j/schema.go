// model/neo4j/schema.go
package sentinel_neo4j

// Node Labels
const (
	// LabelUser represents an identity known to the platform
	LabelUser = "User"

	// LabelRole represents a role that can be assigned to users
	LabelRole = "Role"

	// LabelPermission represents a specific permission in the catalog
	LabelPermission = "Permission"
)

// Relationship Types
const (
	// RelHasPermission represents the relationship between a role and its own permissions
	RelHasPermission = "HAS_PERMISSION"

	// RelInherits represents one-hop inheritance between roles
	RelInherits = "INHERITS"

	// RelHasRole represents an assignment between a user and a role; the grant
	// metadata (assignedBy, assignedAt, expiresAt, conditions) lives on the
	// relationship itself
	RelHasRole = "HAS_ROLE"
)
