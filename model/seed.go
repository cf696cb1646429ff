// model/seed.go
package model

import "time"

// System role ids. These five roles exist from engine construction onwards
// and can never be edited or deleted.
const (
	RoleSuperAdmin      = "super_admin"
	RoleAdmin           = "admin"
	RoleContentManager  = "content_manager"
	RoleCustomerService = "customer_service"
	RoleAnalyst         = "analyst"
)

// SeedPermissions returns the canonical permission catalog for the platform.
// Ids are stable keys of the form "<resource>.<action>".
func SeedPermissions() []Permission {
	return []Permission{
		{ID: "products.view", Name: "View Products", Description: "Browse the product catalog", Resource: "products", Action: "read"},
		{ID: "products.create", Name: "Create Products", Description: "Add products to the catalog", Resource: "products", Action: "create"},
		{ID: "products.edit", Name: "Edit Products", Description: "Modify product details and pricing", Resource: "products", Action: "update"},
		{ID: "products.delete", Name: "Delete Products", Description: "Remove products from the catalog", Resource: "products", Action: "delete"},
		{ID: "products.publish", Name: "Publish Products", Description: "Make products visible in the storefront", Resource: "products", Action: "publish"},

		{ID: "orders.view", Name: "View Orders", Description: "Read customer orders", Resource: "orders", Action: "read"},
		{ID: "orders.update", Name: "Update Orders", Description: "Change order status and shipping details", Resource: "orders", Action: "update"},
		{ID: "orders.refund", Name: "Refund Orders", Description: "Issue full or partial refunds", Resource: "orders", Action: "approve"},

		{ID: "suppliers.view", Name: "View Suppliers", Description: "Browse supplier directory", Resource: "suppliers", Action: "read"},
		{ID: "suppliers.manage", Name: "Manage Suppliers", Description: "Create and edit supplier records", Resource: "suppliers", Action: "update"},
		{ID: "suppliers.approve", Name: "Approve Suppliers", Description: "Approve new suppliers for fulfillment", Resource: "suppliers", Action: "approve"},

		{ID: "content.view", Name: "View Content", Description: "Read storefront pages and posts", Resource: "content", Action: "read"},
		{ID: "content.create", Name: "Create Content", Description: "Author storefront pages and posts", Resource: "content", Action: "create"},
		{ID: "content.edit", Name: "Edit Content", Description: "Modify storefront pages and posts", Resource: "content", Action: "update"},
		{ID: "content.publish", Name: "Publish Content", Description: "Publish storefront pages and posts", Resource: "content", Action: "publish"},

		{ID: "marketing.view", Name: "View Campaigns", Description: "Read marketing campaigns and coupons", Resource: "marketing", Action: "read"},
		{ID: "marketing.manage", Name: "Manage Campaigns", Description: "Create and edit campaigns and coupons", Resource: "marketing", Action: "update"},

		{ID: "analytics.view", Name: "View Analytics", Description: "Read sales and traffic dashboards", Resource: "analytics", Action: "read"},
		{ID: "analytics.export", Name: "Export Analytics", Description: "Export reports and raw metrics", Resource: "analytics", Action: "create"},

		{ID: "users.view", Name: "View Users", Description: "Read staff and customer accounts", Resource: "users", Action: "read"},
		{ID: "users.manage", Name: "Manage Users", Description: "Create, edit and deactivate accounts", Resource: "users", Action: "update"},

		{ID: "system.configure", Name: "Configure System", Description: "Change platform-wide settings", Resource: "system", Action: "configure"},
		{ID: "system.logs", Name: "View System Logs", Description: "Read operational and audit logs", Resource: "system", Action: "read"},
	}
}

// SeedRoles returns the five immutable system roles. super_admin carries
// every permission in the catalog.
func SeedRoles(now time.Time) []Role {
	all := SeedPermissions()
	allIDs := make([]string, 0, len(all))
	for _, p := range all {
		allIDs = append(allIDs, p.ID)
	}

	return []Role{
		{
			ID:          RoleSuperAdmin,
			Name:        "Super Administrator",
			Description: "Unrestricted access to every capability",
			Permissions: allIDs,
			IsSystem:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          RoleAdmin,
			Name:        "Administrator",
			Description: "Day-to-day store administration",
			Permissions: []string{
				"products.view", "products.create", "products.edit", "products.delete", "products.publish",
				"orders.view", "orders.update", "orders.refund",
				"suppliers.view", "suppliers.manage", "suppliers.approve",
				"content.view", "content.create", "content.edit", "content.publish",
				"marketing.view", "marketing.manage",
				"analytics.view", "analytics.export",
				"users.view", "users.manage",
				"system.logs",
			},
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          RoleContentManager,
			Name:        "Content Manager",
			Description: "Storefront content and product presentation",
			Permissions: []string{
				"content.view", "content.create", "content.edit", "content.publish",
				"products.view", "products.create", "products.edit", "products.publish",
				"marketing.view",
			},
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          RoleCustomerService,
			Name:        "Customer Service",
			Description: "Order handling and customer support",
			Permissions: []string{
				"orders.view", "orders.update", "orders.refund",
				"products.view",
				"users.view",
			},
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          RoleAnalyst,
			Name:        "Analyst",
			Description: "Read-only reporting access",
			Permissions: []string{
				"analytics.view", "analytics.export",
				"orders.view",
				"products.view",
				"marketing.view",
			},
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
