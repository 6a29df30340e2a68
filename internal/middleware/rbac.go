package middleware

import (
	"github.com/gofiber/fiber/v2"
)

func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !user.HasRole(requiredRole) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequireAnyRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		hasPermission := false
		for _, role := range roles {
			if user.HasRole(role) {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !hasPermission(user.Role, permission) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func hasPermission(role, permission string) bool {
	permissions := map[string]map[string]bool{
		"staff": {
			"view_requests":    true,
			"view_donors":      true,
			"view_donations":   true,
			"view_locations":   true,
			"view_dashboard":   true,
			"confirm_donation": true,
		},
		"hospital_admin": {
			"view_requests":    true,
			"view_donors":      true,
			"view_donations":   true,
			"view_locations":   true,
			"view_dashboard":   true,
			"confirm_donation": true,
			"create_request":   true,
			"update_request":   true,
			"cancel_request":   true,
			"invite_donors":    true,
			"manage_donors":    true,
			"manage_hospital":  true,
			"upload_documents": true,
			"manage_staff":     true,
		},
		"admin": {
			"view_requests":    true,
			"view_donors":      true,
			"view_donations":   true,
			"view_locations":   true,
			"view_dashboard":   true,
			"confirm_donation": true,
			"create_request":   true,
			"update_request":   true,
			"cancel_request":   true,
			"invite_donors":    true,
			"manage_donors":    true,
			"manage_hospital":  true,
			"upload_documents": true,
			"manage_staff":     true,
			"review_documents": true,
			"verify_hospitals": true,
			"view_audit_logs":  true,
			"manage_settings":  true,
		},
	}

	if rolePermissions, exists := permissions[role]; exists {
		return rolePermissions[permission]
	}
	return false
}

func GetCurrentUserRole(c *fiber.Ctx) string {
	user := GetCurrentUser(c)
	if user == nil {
		return ""
	}
	return user.Role
}

func IsAdmin(c *fiber.Ctx) bool {
	return GetCurrentUserRole(c) == "admin"
}

func IsHospitalAdmin(c *fiber.Ctx) bool {
	role := GetCurrentUserRole(c)
	return role == "hospital_admin" || role == "admin"
}
