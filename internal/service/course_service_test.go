package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/repository/memory"
	"github.com/campushub/portal/internal/service"
)

func newCourses(t *testing.T) (*service.CourseService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := service.NewCourseService(store.Courses(), nil, zap.NewNop())
	return svc, store
}

func actorWithRole(t *testing.T, store *memory.Store, id string, roleID model.RoleID) (*model.User, *model.Role) {
	t.Helper()
	user := &model.User{ID: id, Name: id, Email: id + "@campus.edu", Role: roleID}
	store.PutUser(user)
	role, err := store.GetRoleByID(context.Background(), roleID)
	if err != nil || role == nil {
		t.Fatalf("role %s: %v", roleID, err)
	}
	return user, role
}

func TestCourseCreatePermissions(t *testing.T) {
	svc, store := newCourses(t)
	ctx := context.Background()

	faculty, facultyRole := actorWithRole(t, store, "fac-1", model.RoleFaculty)
	student, studentRole := actorWithRole(t, store, "stu-9", model.RoleStudent)
	admin, adminRole := actorWithRole(t, store, "adm-9", model.RoleAdmin)

	// Students cannot create courses.
	if _, err := svc.Create(ctx, student, studentRole, "CS101", "Intro", "", ""); !errors.Is(err, model.ErrPermissionDenied) {
		t.Fatalf("student create err = %v, want ErrPermissionDenied", err)
	}

	// Faculty create for themselves by default.
	course, err := svc.Create(ctx, faculty, facultyRole, "CS101", "Intro to Computer Science", "", "")
	if err != nil {
		t.Fatalf("faculty create: %v", err)
	}
	if course.InstructorID != faculty.ID {
		t.Fatalf("instructor = %s, want %s", course.InstructorID, faculty.ID)
	}

	// Faculty cannot create on behalf of someone else.
	if _, err := svc.Create(ctx, faculty, facultyRole, "CS102", "Data Structures", "", "fac-other"); !errors.Is(err, model.ErrPermissionDenied) {
		t.Fatalf("faculty on-behalf err = %v, want ErrPermissionDenied", err)
	}

	// Admins can.
	course, err = svc.Create(ctx, admin, adminRole, "CS102", "Data Structures", "", faculty.ID)
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if course.InstructorID != faculty.ID {
		t.Fatalf("instructor = %s, want %s", course.InstructorID, faculty.ID)
	}

	// Missing required fields.
	if _, err := svc.Create(ctx, faculty, facultyRole, "", "Nameless", "", ""); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("missing code err = %v, want ErrInvalidInput", err)
	}
}

func TestCourseUpdateOwnership(t *testing.T) {
	svc, store := newCourses(t)
	ctx := context.Background()

	owner, facultyRole := actorWithRole(t, store, "fac-1", model.RoleFaculty)
	other, _ := actorWithRole(t, store, "fac-2", model.RoleFaculty)
	admin, adminRole := actorWithRole(t, store, "adm-9", model.RoleAdmin)

	if _, err := svc.Create(ctx, owner, facultyRole, "CS101", "Intro", "old", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another faculty member cannot touch it.
	if _, err := svc.Update(ctx, other, facultyRole, "CS101", "Hijacked", ""); !errors.Is(err, model.ErrPermissionDenied) {
		t.Fatalf("other faculty err = %v, want ErrPermissionDenied", err)
	}

	// The owner can.
	course, err := svc.Update(ctx, owner, facultyRole, "CS101", "", "new description")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if course.Name != "Intro" || course.Description != "new description" {
		t.Fatalf("course = %+v, want name kept and description replaced", course)
	}

	// So can an admin, including delete.
	if err := svc.Delete(ctx, admin, adminRole, "CS101"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, "CS101"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestToggleEnrollment(t *testing.T) {
	svc, store := newCourses(t)
	ctx := context.Background()

	faculty, facultyRole := actorWithRole(t, store, "fac-1", model.RoleFaculty)
	if _, err := svc.Create(ctx, faculty, facultyRole, "CS101", "Intro", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	enrolled, err := svc.ToggleEnrollment(ctx, studentID, "CS101")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if !enrolled {
		t.Fatal("first toggle should enroll")
	}

	course, err := svc.Get(ctx, "CS101")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !course.IsEnrolled(studentID) {
		t.Fatalf("student %s not in roster %v", studentID, course.EnrolledStudents)
	}

	enrolled, err = svc.ToggleEnrollment(ctx, studentID, "CS101")
	if err != nil {
		t.Fatalf("unenroll: %v", err)
	}
	if enrolled {
		t.Fatal("second toggle should drop the enrollment")
	}

	if _, err := svc.ToggleEnrollment(ctx, studentID, "NOPE"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("unknown course err = %v, want ErrNotFound", err)
	}
}
