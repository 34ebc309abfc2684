package service

import (
	"context"

	"github.com/campushub/portal/internal/model"
)

// Counter interfaces hang off the repositories; the stats service only needs
// the aggregate numbers.
type UserCounter interface {
	CountByRole(ctx context.Context) (map[model.RoleID]int, error)
}

type AppointmentCounter interface {
	CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error)
}

type CourseCounter interface {
	Count(ctx context.Context) (int, error)
}

type BookCounter interface {
	CountBorrowed(ctx context.Context) (int, error)
}

// PortalStats is the analytics snapshot shown on the dashboard.
type PortalStats struct {
	UsersByRole          map[model.RoleID]int            `json:"users_by_role"`
	AppointmentsByStatus map[model.AppointmentStatus]int `json:"appointments_by_status"`
	Courses              int                             `json:"courses"`
	BorrowedBooks        int                             `json:"borrowed_books"`
}

type StatsService struct {
	users  UserCounter
	appts  AppointmentCounter
	course CourseCounter
	books  BookCounter
}

func NewStatsService(users UserCounter, appts AppointmentCounter, course CourseCounter, books BookCounter) *StatsService {
	return &StatsService{
		users:  users,
		appts:  appts,
		course: course,
		books:  books,
	}
}

// Snapshot gathers the current portal counters.
func (s *StatsService) Snapshot(ctx context.Context) (*PortalStats, error) {
	usersByRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, model.NewStorageError("count users", err)
	}
	apptsByStatus, err := s.appts.CountByStatus(ctx)
	if err != nil {
		return nil, model.NewStorageError("count appointments", err)
	}
	courses, err := s.course.Count(ctx)
	if err != nil {
		return nil, model.NewStorageError("count courses", err)
	}
	borrowed, err := s.books.CountBorrowed(ctx)
	if err != nil {
		return nil, model.NewStorageError("count borrowed books", err)
	}

	return &PortalStats{
		UsersByRole:          usersByRole,
		AppointmentsByStatus: apptsByStatus,
		Courses:              courses,
		BorrowedBooks:        borrowed,
	}, nil
}
