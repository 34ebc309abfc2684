package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/campushub/portal/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotStore is the persistence collaborator for availability declarations.
type SlotStore interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	Delete(ctx context.Context, id string) error
	GetByAdvisorDateTime(ctx context.Context, advisorID, date, timeOfDay string) (*model.AvailabilitySlot, error)
	ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.AvailabilitySlot, error)
}

// AppointmentStore is the persistence collaborator for appointments.
// CreateIfSlotFree and UpdateIfSlotFree must perform the occupancy check and
// the write as one atomic unit: of two concurrent writes targeting the same
// (advisor, starts_at), at most one may succeed.
type AppointmentStore interface {
	CreateIfSlotFree(ctx context.Context, appt *model.Appointment) error
	UpdateIfSlotFree(ctx context.Context, appt *model.Appointment) error
	Update(ctx context.Context, appt *model.Appointment) error
	SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Appointment, error)
}

// UserSource resolves user identifiers; nil user means unknown.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RoleSource resolves a role to its permission set.
type RoleSource interface {
	GetByID(ctx context.Context, id model.RoleID) (*model.Role, error)
}

type ToggleOutcome string

const (
	ToggleDeclared ToggleOutcome = "declared"
	ToggleRevoked  ToggleOutcome = "revoked"
)

// UpdateAppointmentParams carries the optional fields of an appointment
// update; nil fields keep their current value.
type UpdateAppointmentParams struct {
	StudentID *string
	AdvisorID *string
	StartsAt  *time.Time
	Status    *model.AppointmentStatus
	Notes     *string
}

// SchedulingService reconciles advisor availability with booked
// appointments: it answers slot queries and commits booking mutations while
// preserving the no-double-booking invariant.
type SchedulingService struct {
	slots  SlotStore
	appts  AppointmentStore
	users  UserSource
	roles  RoleSource
	audit  *AuditService
	logger *zap.Logger
}

func NewSchedulingService(
	slots SlotStore,
	appts AppointmentStore,
	users UserSource,
	roles RoleSource,
	audit *AuditService,
	logger *zap.Logger,
) *SchedulingService {
	return &SchedulingService{
		slots:  slots,
		appts:  appts,
		users:  users,
		roles:  roles,
		audit:  audit,
		logger: logger,
	}
}

// ListBookableSlots returns the advisor's declared times for the date minus
// times occupied by a non-canceled appointment, ascending. An empty result
// is a valid state, not an error.
func (s *SchedulingService) ListBookableSlots(ctx context.Context, advisorID, date string) ([]string, error) {
	date, err := model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date: %v", model.ErrInvalidInput, err)
	}

	slots, err := s.slots.ListByAdvisorDate(ctx, advisorID, date)
	if err != nil {
		return nil, model.NewStorageError("list slots", err)
	}

	occupied, err := s.occupiedTimes(ctx, advisorID, date)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(slots))
	var times []string
	for _, slot := range slots {
		if occupied[slot.Time] || seen[slot.Time] {
			continue
		}
		seen[slot.Time] = true
		times = append(times, slot.Time)
	}
	sort.Strings(times)

	return times, nil
}

// IsOccupied reports whether a non-canceled appointment holds the exact
// (advisor, date, time). Callers use it to guard revoking a slot that backs
// a live appointment.
func (s *SchedulingService) IsOccupied(ctx context.Context, advisorID, date, timeOfDay string) (bool, error) {
	date, err := model.ParseDate(date)
	if err != nil {
		return false, fmt.Errorf("%w: bad date: %v", model.ErrInvalidInput, err)
	}
	timeOfDay, err = model.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, fmt.Errorf("%w: bad time: %v", model.ErrInvalidInput, err)
	}

	occupied, err := s.occupiedTimes(ctx, advisorID, date)
	if err != nil {
		return false, err
	}

	return occupied[timeOfDay], nil
}

// ToggleAvailability declares the slot if absent and revokes it if present.
// The actor must hold manage-availability; acting on another advisor's
// calendar additionally requires manage-users. Revoking a slot that backs a
// live appointment is permitted here and guarded by callers via IsOccupied.
func (s *SchedulingService) ToggleAvailability(ctx context.Context, actorID, advisorID, date, timeOfDay string) (ToggleOutcome, error) {
	date, err := model.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: bad date: %v", model.ErrInvalidInput, err)
	}
	timeOfDay, err = model.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return "", fmt.Errorf("%w: bad time: %v", model.ErrInvalidInput, err)
	}

	if err := s.checkManageAvailability(ctx, actorID, advisorID); err != nil {
		return "", err
	}

	slot, err := s.slots.GetByAdvisorDateTime(ctx, advisorID, date, timeOfDay)
	if err != nil {
		return "", model.NewStorageError("get slot", err)
	}

	if slot != nil {
		occupied, err := s.IsOccupied(ctx, advisorID, date, timeOfDay)
		if err != nil {
			return "", err
		}
		if occupied {
			s.logger.Warn("Revoking slot that backs a live appointment",
				zap.String("advisor_id", advisorID),
				zap.String("date", date),
				zap.String("time", timeOfDay),
			)
		}
		if err := s.slots.Delete(ctx, slot.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				// Someone else revoked it first; same net effect.
				return ToggleRevoked, nil
			}
			return "", model.NewStorageError("delete slot", err)
		}
		s.record(ctx, actorID, "Availability Revoked",
			fmt.Sprintf("Revoked %s %s for advisor %s", date, timeOfDay, advisorID), model.AuditLevelInfo)
		return ToggleRevoked, nil
	}

	newSlot := &model.AvailabilitySlot{
		ID:        uuid.NewString(),
		AdvisorID: advisorID,
		Date:      date,
		Time:      timeOfDay,
	}
	if err := s.slots.Create(ctx, newSlot); err != nil {
		return "", model.NewStorageError("create slot", err)
	}

	s.record(ctx, actorID, "Availability Declared",
		fmt.Sprintf("Declared %s %s for advisor %s", date, timeOfDay, advisorID), model.AuditLevelInfo)
	return ToggleDeclared, nil
}

// BookAppointment consumes a bookable slot and creates a Confirmed
// appointment. The occupancy re-check happens inside the store's conditional
// write, so of two concurrent bookings for the same slot exactly one
// succeeds and the other gets ErrSlotUnavailable.
func (s *SchedulingService) BookAppointment(ctx context.Context, studentID, advisorID string, startsAt time.Time, notes string) (*model.Appointment, error) {
	startsAt = startsAt.UTC().Truncate(time.Minute)
	date := startsAt.Format(model.DateLayout)
	timeOfDay := startsAt.Format(model.TimeLayout)

	slot, err := s.slots.GetByAdvisorDateTime(ctx, advisorID, date, timeOfDay)
	if err != nil {
		return nil, model.NewStorageError("get slot", err)
	}
	if slot == nil {
		return nil, model.ErrSlotUnavailable
	}

	appt := &model.Appointment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		AdvisorID: advisorID,
		StartsAt:  startsAt,
		Status:    model.AppointmentStatusConfirmed,
		Notes:     notes,
	}

	if err := s.appts.CreateIfSlotFree(ctx, appt); err != nil {
		if errors.Is(err, model.ErrSlotUnavailable) {
			return nil, model.ErrSlotUnavailable
		}
		return nil, model.NewStorageError("create appointment", err)
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("student_id", studentID),
		zap.String("advisor_id", advisorID),
		zap.Time("starts_at", startsAt),
	)
	s.record(ctx, studentID, "Appointment Booked",
		fmt.Sprintf("Booked %s %s with advisor %s", date, timeOfDay, advisorID), model.AuditLevelInfo)

	return appt, nil
}

// UpdateAppointment applies the given fields. Moving to a new advisor or
// time re-validates the no-double-booking invariant exactly as booking does;
// on conflict both appointments are left unchanged.
func (s *SchedulingService) UpdateAppointment(ctx context.Context, id string, params UpdateAppointmentParams) (*model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, model.NewStorageError("get appointment", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}

	updated := *appt
	if params.StudentID != nil {
		updated.StudentID = *params.StudentID
	}
	if params.AdvisorID != nil {
		updated.AdvisorID = *params.AdvisorID
	}
	if params.StartsAt != nil {
		updated.StartsAt = params.StartsAt.UTC().Truncate(time.Minute)
	}
	if params.Notes != nil {
		updated.Notes = *params.Notes
	}
	if params.Status != nil {
		if !appt.Status.CanTransitionTo(*params.Status) {
			return nil, fmt.Errorf("%w: cannot move %s appointment to %s",
				model.ErrInvalidInput, appt.Status, *params.Status)
		}
		updated.Status = *params.Status
	}

	if updated.Live() {
		err = s.appts.UpdateIfSlotFree(ctx, &updated)
	} else {
		// A canceled appointment occupies nothing; no invariant to check.
		err = s.appts.Update(ctx, &updated)
	}
	if err != nil {
		if errors.Is(err, model.ErrSlotUnavailable) || errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, model.NewStorageError("update appointment", err)
	}

	s.record(ctx, updated.StudentID, "Appointment Updated",
		fmt.Sprintf("Appointment %s now %s %s, status %s",
			updated.ID, updated.Date(), updated.TimeOfDay(), updated.Status), model.AuditLevelInfo)

	return &updated, nil
}

// CancelAppointment marks the appointment Canceled. The row is kept for
// audit history rather than deleted; its slot becomes bookable again if the
// availability declaration still exists.
func (s *SchedulingService) CancelAppointment(ctx context.Context, id string) error {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return model.NewStorageError("get appointment", err)
	}
	if appt == nil {
		return model.ErrNotFound
	}

	if appt.Status == model.AppointmentStatusCanceled {
		return nil
	}

	if err := s.appts.SetStatus(ctx, id, model.AppointmentStatusCanceled); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return model.NewStorageError("cancel appointment", err)
	}

	s.logger.Info("Appointment canceled", zap.String("appointment_id", id))
	s.record(ctx, appt.StudentID, "Appointment Canceled",
		fmt.Sprintf("Canceled %s %s with advisor %s", appt.Date(), appt.TimeOfDay(), appt.AdvisorID),
		model.AuditLevelInfo)

	return nil
}

// GetAppointment returns an appointment by id.
func (s *SchedulingService) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, model.NewStorageError("get appointment", err)
	}
	if appt == nil {
		return nil, model.ErrNotFound
	}
	return appt, nil
}

// ListAppointmentsForUser returns the user's appointments as student or
// advisor.
func (s *SchedulingService) ListAppointmentsForUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	appts, err := s.appts.ListForUser(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("list appointments", err)
	}
	return appts, nil
}

// ListDaySlots returns the advisor's declared slots for a date together with
// their occupancy, for schedule views.
func (s *SchedulingService) ListDaySlots(ctx context.Context, advisorID, date string) ([]*model.AvailabilitySlot, map[string]bool, error) {
	date, err := model.ParseDate(date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad date: %v", model.ErrInvalidInput, err)
	}

	slots, err := s.slots.ListByAdvisorDate(ctx, advisorID, date)
	if err != nil {
		return nil, nil, model.NewStorageError("list slots", err)
	}
	occupied, err := s.occupiedTimes(ctx, advisorID, date)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, occupied, nil
}

func (s *SchedulingService) occupiedTimes(ctx context.Context, advisorID, date string) (map[string]bool, error) {
	appts, err := s.appts.ListByAdvisorDate(ctx, advisorID, date)
	if err != nil {
		return nil, model.NewStorageError("list appointments", err)
	}

	occupied := make(map[string]bool, len(appts))
	for _, appt := range appts {
		if appt.Live() {
			occupied[appt.TimeOfDay()] = true
		}
	}
	return occupied, nil
}

func (s *SchedulingService) checkManageAvailability(ctx context.Context, actorID, advisorID string) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return model.NewStorageError("get actor", err)
	}
	if actor == nil {
		return model.ErrPermissionDenied
	}

	role, err := s.roles.GetByID(ctx, actor.Role)
	if err != nil {
		return model.NewStorageError("get role", err)
	}
	if role == nil || !role.Has(model.PermManageAvailability) {
		return model.ErrPermissionDenied
	}

	// Managing someone else's calendar is an admin action.
	if actorID != advisorID && !role.Has(model.PermManageUsers) {
		return model.ErrPermissionDenied
	}

	return nil
}

func (s *SchedulingService) record(ctx context.Context, actor, action, details string, level model.AuditLevel) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, actor, action, details, level)
}
