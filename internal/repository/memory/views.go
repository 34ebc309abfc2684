package memory

import (
	"context"

	"github.com/campushub/portal/internal/model"
)

// Per-aggregate views over the shared store, matching the method sets of the
// pgx repositories so either can back the services.

type Slots struct{ s *Store }

func (s *Store) Slots() *Slots { return &Slots{s} }

func (v *Slots) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	return v.s.CreateSlot(ctx, slot)
}
func (v *Slots) Delete(ctx context.Context, id string) error { return v.s.DeleteSlot(ctx, id) }
func (v *Slots) GetByAdvisorDateTime(ctx context.Context, advisorID, date, timeOfDay string) (*model.AvailabilitySlot, error) {
	return v.s.GetSlotByAdvisorDateTime(ctx, advisorID, date, timeOfDay)
}
func (v *Slots) ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.AvailabilitySlot, error) {
	return v.s.ListSlotsByAdvisorDate(ctx, advisorID, date)
}

type Appointments struct{ s *Store }

func (s *Store) Appointments() *Appointments { return &Appointments{s} }

func (v *Appointments) CreateIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	return v.s.CreateAppointmentIfSlotFree(ctx, appt)
}
func (v *Appointments) UpdateIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	return v.s.UpdateAppointmentIfSlotFree(ctx, appt)
}
func (v *Appointments) Update(ctx context.Context, appt *model.Appointment) error {
	return v.s.UpdateAppointment(ctx, appt)
}
func (v *Appointments) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	return v.s.SetAppointmentStatus(ctx, id, status)
}
func (v *Appointments) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return v.s.GetAppointmentByID(ctx, id)
}
func (v *Appointments) ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.Appointment, error) {
	return v.s.ListAppointmentsByAdvisorDate(ctx, advisorID, date)
}
func (v *Appointments) ListForUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	return v.s.ListAppointmentsForUser(ctx, userID)
}
func (v *Appointments) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	return v.s.CountAppointmentsByStatus(ctx)
}

type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s} }

func (u *Users) Create(ctx context.Context, user *model.User) error { return u.s.CreateUser(ctx, user) }
func (u *Users) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.s.GetUserByID(ctx, id)
}
func (u *Users) List(ctx context.Context) ([]*model.User, error) { return u.s.ListUsers(ctx) }
func (u *Users) Update(ctx context.Context, user *model.User) error {
	return u.s.UpdateUser(ctx, user)
}
func (u *Users) Delete(ctx context.Context, id string) error { return u.s.DeleteUser(ctx, id) }
func (u *Users) CountByRole(ctx context.Context) (map[model.RoleID]int, error) {
	return u.s.CountUsersByRole(ctx)
}

type Roles struct{ s *Store }

func (s *Store) Roles() *Roles { return &Roles{s} }

func (r *Roles) GetByID(ctx context.Context, id model.RoleID) (*model.Role, error) {
	return r.s.GetRoleByID(ctx, id)
}
func (r *Roles) List(ctx context.Context) ([]*model.Role, error) { return r.s.ListRoles(ctx) }
func (r *Roles) UpdatePermissions(ctx context.Context, id model.RoleID, perms []model.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return model.ErrNotFound
	}
	role.Permissions = append([]model.Permission(nil), perms...)
	return nil
}

type Courses struct{ s *Store }

func (s *Store) Courses() *Courses { return &Courses{s} }

func (c *Courses) Create(ctx context.Context, course *model.Course) error {
	return c.s.CreateCourse(ctx, course)
}
func (c *Courses) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	return c.s.GetCourseByCode(ctx, code)
}
func (c *Courses) List(ctx context.Context) ([]*model.Course, error) { return c.s.ListCourses(ctx) }
func (c *Courses) Update(ctx context.Context, course *model.Course) error {
	return c.s.UpdateCourse(ctx, course)
}
func (c *Courses) Delete(ctx context.Context, code string) error { return c.s.DeleteCourse(ctx, code) }
func (c *Courses) Enroll(ctx context.Context, code, studentID string) error {
	return c.s.Enroll(ctx, code, studentID)
}
func (c *Courses) Unenroll(ctx context.Context, code, studentID string) error {
	return c.s.Unenroll(ctx, code, studentID)
}
func (c *Courses) Count(ctx context.Context) (int, error) { return c.s.CountCourses(ctx) }

type Books struct{ s *Store }

func (s *Store) Books() *Books { return &Books{s} }

func (b *Books) Create(ctx context.Context, book *model.Book) error {
	return b.s.CreateBook(ctx, book)
}
func (b *Books) GetByID(ctx context.Context, id string) (*model.Book, error) {
	return b.s.GetBookByID(ctx, id)
}
func (b *Books) List(ctx context.Context, search string) ([]*model.Book, error) {
	return b.s.ListBooks(ctx, search)
}
func (b *Books) Borrow(ctx context.Context, id, userID string) error {
	return b.s.BorrowBook(ctx, id, userID)
}
func (b *Books) Return(ctx context.Context, id, userID string) error {
	return b.s.ReturnBook(ctx, id, userID)
}
func (b *Books) CountBorrowed(ctx context.Context) (int, error) { return b.s.CountBorrowed(ctx) }

type AuditLogs struct{ s *Store }

func (s *Store) AuditLogs() *AuditLogs { return &AuditLogs{s} }

func (a *AuditLogs) Insert(ctx context.Context, entry *model.AuditLog) error {
	return a.s.InsertAuditLog(ctx, entry)
}
func (a *AuditLogs) ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	return a.s.ListRecentAuditLogs(ctx, limit)
}
