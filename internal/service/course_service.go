package service

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"go.uber.org/zap"
)

// CourseStore is the persistence collaborator for the course catalog.
type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, code string) error
	Enroll(ctx context.Context, code, studentID string) error
	Unenroll(ctx context.Context, code, studentID string) error
}

type CourseService struct {
	courses CourseStore
	audit   *AuditService
	logger  *zap.Logger
}

func NewCourseService(courses CourseStore, audit *AuditService, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		audit:   audit,
		logger:  logger,
	}
}

// List returns the whole catalog.
func (s *CourseService) List(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, model.NewStorageError("list courses", err)
	}
	return courses, nil
}

// Get returns a course by code.
func (s *CourseService) Get(ctx context.Context, code string) (*model.Course, error) {
	course, err := s.courses.GetByCode(ctx, code)
	if err != nil {
		return nil, model.NewStorageError("get course", err)
	}
	if course == nil {
		return nil, model.ErrNotFound
	}
	return course, nil
}

// Create adds a course owned by the acting instructor. Admins may create on
// behalf of any instructor.
func (s *CourseService) Create(ctx context.Context, actor *model.User, role *model.Role, code, name, description, instructorID string) (*model.Course, error) {
	if !role.Has(model.PermManageCourses) {
		return nil, model.ErrPermissionDenied
	}
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code and name are required", model.ErrInvalidInput)
	}
	if instructorID == "" {
		instructorID = actor.ID
	}
	if instructorID != actor.ID && actor.Role != model.RoleAdmin {
		return nil, model.ErrPermissionDenied
	}

	course := &model.Course{
		Code:         code,
		Name:         name,
		Description:  description,
		InstructorID: instructorID,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, model.NewStorageError("create course", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, "Course Created",
			fmt.Sprintf("Created course %s (%s)", course.Code, course.Name), model.AuditLevelInfo)
	}

	return course, nil
}

// Update changes name and description. Faculty may only touch their own
// courses; admins may touch any.
func (s *CourseService) Update(ctx context.Context, actor *model.User, role *model.Role, code, name, description string) (*model.Course, error) {
	course, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(actor, role, course); err != nil {
		return nil, err
	}

	if name != "" {
		course.Name = name
	}
	if description != "" {
		course.Description = description
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if err == model.ErrNotFound {
			return nil, model.ErrNotFound
		}
		return nil, model.NewStorageError("update course", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, "Course Update",
			fmt.Sprintf("Modified content in %q", course.Name), model.AuditLevelInfo)
	}

	return course, nil
}

// Delete removes a course and its enrollments.
func (s *CourseService) Delete(ctx context.Context, actor *model.User, role *model.Role, code string) error {
	course, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := s.canManage(actor, role, course); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, code); err != nil {
		if err == model.ErrNotFound {
			return model.ErrNotFound
		}
		return model.NewStorageError("delete course", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, "Course Deleted",
			fmt.Sprintf("Deleted course %s", code), model.AuditLevelWarning)
	}

	return nil
}

// ToggleEnrollment enrolls the student if not enrolled, and drops them
// otherwise.
func (s *CourseService) ToggleEnrollment(ctx context.Context, studentID, code string) (enrolled bool, err error) {
	course, err := s.Get(ctx, code)
	if err != nil {
		return false, err
	}

	if course.IsEnrolled(studentID) {
		if err := s.courses.Unenroll(ctx, code, studentID); err != nil {
			return false, model.NewStorageError("unenroll", err)
		}
		return false, nil
	}

	if err := s.courses.Enroll(ctx, code, studentID); err != nil {
		return false, model.NewStorageError("enroll", err)
	}
	return true, nil
}

func (s *CourseService) canManage(actor *model.User, role *model.Role, course *model.Course) error {
	if !role.Has(model.PermManageCourses) {
		return model.ErrPermissionDenied
	}
	if actor.Role != model.RoleAdmin && course.InstructorID != actor.ID {
		return model.ErrPermissionDenied
	}
	return nil
}
