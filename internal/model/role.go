package model

// RoleID is a closed identifier, validated at the boundary rather than
// passed through as a free-form string.
type RoleID string

const (
	RoleAdmin   RoleID = "admin"
	RoleFaculty RoleID = "faculty"
	RoleStudent RoleID = "student"
)

// ParseRoleID validates a role identifier against the closed set.
func ParseRoleID(s string) (RoleID, bool) {
	switch RoleID(s) {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return RoleID(s), true
	}
	return "", false
}

type Permission string

const (
	PermViewDashboard      Permission = "view-dashboard"
	PermManageCourses      Permission = "manage-courses"
	PermViewCourses        Permission = "view-courses"
	PermManageAppointments Permission = "manage-appointments"
	PermViewAppointments   Permission = "view-appointments"
	PermAccessLibrary      Permission = "access-library"
	PermViewAnalytics      Permission = "view-analytics"
	PermManageUsers        Permission = "manage-users"
	PermViewAuditLogs      Permission = "view-audit-logs"
	PermManageSettings     Permission = "manage-settings"
	PermManageAvailability Permission = "manage-availability"
)

type Role struct {
	ID          RoleID       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Has reports whether the role carries the given permission.
func (r *Role) Has(perm Permission) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// DefaultRoles is the seed role set used when the roles table has not been
// customized.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:   RoleAdmin,
			Name: "Super Admin",
			Permissions: []Permission{
				PermViewDashboard,
				PermManageCourses,
				PermManageAppointments,
				PermAccessLibrary,
				PermViewAnalytics,
				PermManageUsers,
				PermViewAuditLogs,
				PermManageSettings,
				PermManageAvailability,
			},
		},
		{
			ID:   RoleFaculty,
			Name: "Faculty",
			Permissions: []Permission{
				PermViewDashboard,
				PermManageCourses,
				PermManageAppointments,
				PermAccessLibrary,
				PermManageAvailability,
			},
		},
		{
			ID:   RoleStudent,
			Name: "Student",
			Permissions: []Permission{
				PermViewDashboard,
				PermViewCourses,
				PermViewAppointments,
				PermAccessLibrary,
			},
		},
	}
}
