// Package memory holds a mutex-guarded in-memory implementation of the
// persistence collaborators. It is the reference implementation of the
// atomic conditional-write contract and backs the test suites; the maps
// keyed by (advisor, date, time) emulate the database uniqueness constraint.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campushub/portal/internal/model"
)

type Store struct {
	mu sync.Mutex

	slots    map[string]*model.AvailabilitySlot // by slot id
	slotKeys map[string]string                  // advisor|date|time -> slot id

	appts    map[string]*model.Appointment // by appointment id
	liveKeys map[string]string             // advisor|date|time -> live appointment id

	users map[string]*model.User
	roles map[model.RoleID]*model.Role

	courses     map[string]*model.Course
	enrollments map[string]map[string]bool // course code -> student ids

	books map[string]*model.Book

	logs []*model.AuditLog
}

func New() *Store {
	roles := make(map[model.RoleID]*model.Role)
	for _, r := range model.DefaultRoles() {
		role := r
		roles[role.ID] = &role
	}
	return &Store{
		slots:       make(map[string]*model.AvailabilitySlot),
		slotKeys:    make(map[string]string),
		appts:       make(map[string]*model.Appointment),
		liveKeys:    make(map[string]string),
		users:       make(map[string]*model.User),
		roles:       roles,
		courses:     make(map[string]*model.Course),
		enrollments: make(map[string]map[string]bool),
		books:       make(map[string]*model.Book),
	}
}

func slotKey(advisorID, date, timeOfDay string) string {
	return advisorID + "|" + date + "|" + timeOfDay
}

func apptKey(advisorID string, startsAt time.Time) string {
	at := startsAt.UTC()
	return slotKey(advisorID, at.Format(model.DateLayout), at.Format(model.TimeLayout))
}

// ----- availability slots -----

func (s *Store) CreateSlot(ctx context.Context, slot *model.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	cp := *slot
	s.slots[cp.ID] = &cp
	s.slotKeys[slotKey(cp.AdvisorID, cp.Date, cp.Time)] = cp.ID
	return nil
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return model.ErrNotFound
	}
	delete(s.slots, id)
	delete(s.slotKeys, slotKey(slot.AdvisorID, slot.Date, slot.Time))
	return nil
}

func (s *Store) GetSlotByAdvisorDateTime(ctx context.Context, advisorID, date, timeOfDay string) (*model.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.slotKeys[slotKey(advisorID, date, timeOfDay)]
	if !ok {
		return nil, nil
	}
	cp := *s.slots[id]
	return &cp, nil
}

func (s *Store) ListSlotsByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.AvailabilitySlot
	for _, slot := range s.slots {
		if slot.AdvisorID == advisorID && slot.Date == date {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

// ----- appointments -----

func (s *Store) CreateAppointmentIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := apptKey(appt.AdvisorID, appt.StartsAt)
	if _, taken := s.liveKeys[key]; taken {
		return model.ErrSlotUnavailable
	}

	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	cp := *appt
	s.appts[cp.ID] = &cp
	if cp.Live() {
		s.liveKeys[key] = cp.ID
	}
	return nil
}

func (s *Store) UpdateAppointmentIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.appts[appt.ID]
	if !ok {
		return model.ErrNotFound
	}

	newKey := apptKey(appt.AdvisorID, appt.StartsAt)
	if holder, taken := s.liveKeys[newKey]; taken && holder != appt.ID {
		return model.ErrSlotUnavailable
	}

	if existing.Live() {
		delete(s.liveKeys, apptKey(existing.AdvisorID, existing.StartsAt))
	}

	appt.UpdatedAt = time.Now().UTC()
	cp := *appt
	s.appts[cp.ID] = &cp
	if cp.Live() {
		s.liveKeys[newKey] = cp.ID
	}
	return nil
}

// UpdateAppointment writes the fields unconditionally. The uniqueness
// emulation still applies: a write that would produce a second live
// appointment on the same key is refused, as the partial unique index would.
func (s *Store) UpdateAppointment(ctx context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.appts[appt.ID]
	if !ok {
		return model.ErrNotFound
	}

	newKey := apptKey(appt.AdvisorID, appt.StartsAt)
	if appt.Live() {
		if holder, taken := s.liveKeys[newKey]; taken && holder != appt.ID {
			return model.ErrSlotUnavailable
		}
	}

	if existing.Live() {
		delete(s.liveKeys, apptKey(existing.AdvisorID, existing.StartsAt))
	}

	appt.UpdatedAt = time.Now().UTC()
	cp := *appt
	s.appts[cp.ID] = &cp
	if cp.Live() {
		s.liveKeys[newKey] = cp.ID
	}
	return nil
}

func (s *Store) SetAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts[id]
	if !ok {
		return model.ErrNotFound
	}

	key := apptKey(appt.AdvisorID, appt.StartsAt)
	wasLive := appt.Live()
	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()

	switch {
	case wasLive && !appt.Live():
		delete(s.liveKeys, key)
	case !wasLive && appt.Live():
		if holder, taken := s.liveKeys[key]; taken && holder != id {
			return model.ErrSlotUnavailable
		}
		s.liveKeys[key] = id
	}
	return nil
}

func (s *Store) GetAppointmentByID(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts[id]
	if !ok {
		return nil, nil
	}
	cp := *appt
	return &cp, nil
}

func (s *Store) ListAppointmentsByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Appointment
	for _, appt := range s.appts {
		if appt.AdvisorID == advisorID && appt.Date() == date {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *Store) ListAppointmentsForUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Appointment
	for _, appt := range s.appts {
		if appt.StudentID == userID || appt.AdvisorID == userID {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (s *Store) CountAppointmentsByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[model.AppointmentStatus]int)
	for _, appt := range s.appts {
		counts[appt.Status]++
	}
	return counts, nil
}

// ----- users and roles -----

func (s *Store) PutUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	s.users[cp.ID] = &cp
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.PutUser(user)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.User
	for _, user := range s.users {
		cp := *user
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *user
	s.users[cp.ID] = &cp
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[model.RoleID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[model.RoleID]int)
	for _, user := range s.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (s *Store) GetRoleByID(ctx context.Context, id model.RoleID) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	cp := *role
	return &cp, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Role
	for _, role := range s.roles {
		cp := *role
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- courses -----

func (s *Store) CreateCourse(ctx context.Context, course *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	cp := *course
	cp.EnrolledStudents = nil
	s.courses[cp.Code] = &cp
	if s.enrollments[cp.Code] == nil {
		s.enrollments[cp.Code] = make(map[string]bool)
	}
	return nil
}

func (s *Store) getCourseLocked(code string) *model.Course {
	course, ok := s.courses[code]
	if !ok {
		return nil
	}
	cp := *course
	cp.EnrolledStudents = nil
	var ids []string
	for id := range s.enrollments[code] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	cp.EnrolledStudents = ids
	return &cp
}

func (s *Store) GetCourseByCode(ctx context.Context, code string) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCourseLocked(code), nil
}

func (s *Store) ListCourses(ctx context.Context) ([]*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var codes []string
	for code := range s.courses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []*model.Course
	for _, code := range codes {
		out = append(out, s.getCourseLocked(code))
	}
	return out, nil
}

func (s *Store) UpdateCourse(ctx context.Context, course *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.courses[course.Code]
	if !ok {
		return model.ErrNotFound
	}
	existing.Name = course.Name
	existing.Description = course.Description
	return nil
}

func (s *Store) DeleteCourse(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[code]; !ok {
		return model.ErrNotFound
	}
	delete(s.courses, code)
	delete(s.enrollments, code)
	return nil
}

func (s *Store) Enroll(ctx context.Context, code, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enrollments[code] == nil {
		s.enrollments[code] = make(map[string]bool)
	}
	s.enrollments[code][studentID] = true
	return nil
}

func (s *Store) Unenroll(ctx context.Context, code, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.enrollments[code], studentID)
	return nil
}

func (s *Store) CountCourses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.courses), nil
}

// ----- books -----

func (s *Store) CreateBook(ctx context.Context, book *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	cp := *book
	s.books[cp.ID] = &cp
	return nil
}

func (s *Store) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, nil
	}
	cp := *book
	return &cp, nil
}

func (s *Store) ListBooks(ctx context.Context, search string) ([]*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(search)
	var out []*model.Book
	for _, book := range s.books {
		if needle != "" &&
			!strings.Contains(strings.ToLower(book.Title), needle) &&
			!strings.Contains(strings.ToLower(book.Author), needle) {
			continue
		}
		cp := *book
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) BorrowBook(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return model.ErrNotFound
	}
	if book.BorrowedBy != nil {
		return model.ErrBookUnavailable
	}
	book.BorrowedBy = &userID
	return nil
}

func (s *Store) ReturnBook(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok || book.BorrowedBy == nil || *book.BorrowedBy != userID {
		return model.ErrNotFound
	}
	book.BorrowedBy = nil
	return nil
}

func (s *Store) CountBorrowed(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, book := range s.books {
		if book.BorrowedBy != nil {
			n++
		}
	}
	return n, nil
}

// ----- audit logs -----

func (s *Store) InsertAuditLog(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *Store) ListRecentAuditLogs(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.AuditLog, 0, len(s.logs))
	for _, entry := range s.logs {
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
