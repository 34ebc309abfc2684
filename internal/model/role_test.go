package model

import "testing"

func TestParseRoleID(t *testing.T) {
	for _, valid := range []string{"admin", "faculty", "student"} {
		if _, ok := ParseRoleID(valid); !ok {
			t.Errorf("%s should parse", valid)
		}
	}
	for _, invalid := range []string{"", "Admin", "professor", "root"} {
		if _, ok := ParseRoleID(invalid); ok {
			t.Errorf("%q should not parse", invalid)
		}
	}
}

func TestDefaultRolePermissions(t *testing.T) {
	roles := make(map[RoleID]Role)
	for _, r := range DefaultRoles() {
		roles[r.ID] = r
	}

	admin := roles[RoleAdmin]
	faculty := roles[RoleFaculty]
	student := roles[RoleStudent]

	if !admin.Has(PermManageUsers) || !admin.Has(PermManageAvailability) {
		t.Error("admin is missing management permissions")
	}
	if !faculty.Has(PermManageAvailability) {
		t.Error("faculty should manage their own availability")
	}
	if faculty.Has(PermManageUsers) {
		t.Error("faculty should not manage users")
	}
	if student.Has(PermManageAvailability) || student.Has(PermManageUsers) {
		t.Error("student permissions too broad")
	}
	if !student.Has(PermAccessLibrary) {
		t.Error("every role accesses the library")
	}
}
