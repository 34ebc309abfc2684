package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCanceled  AppointmentStatus = "Canceled"
)

// ParseAppointmentStatus validates a status against the closed set.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCanceled:
		return AppointmentStatus(s), true
	}
	return "", false
}

// CanTransitionTo enforces the status machine:
// Pending -> Confirmed -> Canceled, Confirmed -> Canceled,
// and nothing leaves Canceled.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCanceled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCanceled
	}
	return false
}

type Appointment struct {
	ID        string            `json:"id"`
	StudentID string            `json:"student_id"`
	AdvisorID string            `json:"advisor_id"`
	StartsAt  time.Time         `json:"starts_at"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Date returns the appointment's calendar date key in UTC.
func (a *Appointment) Date() string {
	return a.StartsAt.UTC().Format(DateLayout)
}

// TimeOfDay returns the appointment's minute-granular time key in UTC.
func (a *Appointment) TimeOfDay() string {
	return a.StartsAt.UTC().Format(TimeLayout)
}

// Live reports whether the appointment still occupies its slot.
func (a *Appointment) Live() bool {
	return a.Status != AppointmentStatusCanceled
}
