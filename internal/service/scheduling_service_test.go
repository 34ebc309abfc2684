package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/repository/memory"
	"github.com/campushub/portal/internal/service"
)

const (
	advisorID = "adv-1"
	studentID = "stu-1"
	student2  = "stu-2"
	adminID   = "adm-1"
	testDate  = "2025-01-10"
)

func newScheduling(t *testing.T) (*service.SchedulingService, *memory.Store) {
	t.Helper()

	store := memory.New()
	store.PutUser(&model.User{ID: advisorID, Name: "Dr. Smith", Email: "dr.smith@campus.edu", Role: model.RoleFaculty})
	store.PutUser(&model.User{ID: studentID, Name: "John Doe", Email: "john.doe@campus.edu", Role: model.RoleStudent})
	store.PutUser(&model.User{ID: student2, Name: "Jane Smith", Email: "jane.smith@campus.edu", Role: model.RoleStudent})
	store.PutUser(&model.User{ID: adminID, Name: "Super Admin", Email: "admin@campus.edu", Role: model.RoleAdmin})

	svc := service.NewSchedulingService(store.Slots(), store.Appointments(), store.Users(), store.Roles(), nil, zap.NewNop())
	return svc, store
}

func declare(t *testing.T, svc *service.SchedulingService, timeOfDay string) {
	t.Helper()
	outcome, err := svc.ToggleAvailability(context.Background(), advisorID, advisorID, testDate, timeOfDay)
	if err != nil {
		t.Fatalf("declare %s: %v", timeOfDay, err)
	}
	if outcome != service.ToggleDeclared {
		t.Fatalf("declare %s: outcome = %s, want declared", timeOfDay, outcome)
	}
}

func at(t *testing.T, date, timeOfDay string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+timeOfDay, time.UTC)
	if err != nil {
		t.Fatalf("parse %s %s: %v", date, timeOfDay, err)
	}
	return ts
}

func TestListBookableSlotsEmptyStates(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	// No declarations at all.
	times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("got %v, want empty", times)
	}

	// All declared slots occupied.
	declare(t, svc, "09:00")
	if _, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), ""); err != nil {
		t.Fatalf("book: %v", err)
	}
	times, err = svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("got %v, want empty", times)
	}
}

func TestListBookableSlotsOrderedAndIdempotent(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "14:00")
	declare(t, svc, "09:00")
	declare(t, svc, "10:30")

	want := []string{"09:00", "10:30", "14:00"}
	for round := 0; round < 2; round++ {
		times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(times) != len(want) {
			t.Fatalf("round %d: got %v, want %v", round, times, want)
		}
		for i := range want {
			if times[i] != want[i] {
				t.Fatalf("round %d: got %v, want %v", round, times, want)
			}
		}
	}
}

func TestListBookableSlotsBadDate(t *testing.T) {
	svc, _ := newScheduling(t)

	_, err := svc.ListBookableSlots(context.Background(), advisorID, "10-01-2025")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestToggleAvailabilityDeclareThenRevoke(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	first, err := svc.ToggleAvailability(ctx, advisorID, advisorID, testDate, "09:00")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if first != service.ToggleDeclared {
		t.Fatalf("first outcome = %s, want declared", first)
	}

	second, err := svc.ToggleAvailability(ctx, advisorID, advisorID, testDate, "09:00")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second != service.ToggleRevoked {
		t.Fatalf("second outcome = %s, want revoked", second)
	}

	times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("net slots = %v, want none", times)
	}
}

func TestToggleAvailabilityPermissions(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		advisor string
		wantErr error
	}{
		{"advisor manages own calendar", advisorID, advisorID, nil},
		{"admin manages on behalf", adminID, advisorID, nil},
		{"student cannot manage availability", studentID, studentID, model.ErrPermissionDenied},
		{"student cannot touch advisor calendar", studentID, advisorID, model.ErrPermissionDenied},
		{"unknown actor denied", "ghost", advisorID, model.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleAvailability(ctx, tt.actor, tt.advisor, testDate, "11:00")
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("err = %v, want nil", err)
				}
				// Put the calendar back for the next case.
				if _, err := svc.ToggleAvailability(ctx, tt.actor, tt.advisor, testDate, "11:00"); err != nil {
					t.Fatalf("cleanup toggle: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingScenario(t *testing.T) {
	// The end-to-end flow: declare 09:00 and 10:00, book 09:00, watch it
	// disappear from the bookable list, reject a second booking, cancel,
	// and watch it come back.
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	declare(t, svc, "10:00")

	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "fall semester")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.Status != model.AppointmentStatusConfirmed {
		t.Fatalf("status = %s, want Confirmed", appt.Status)
	}

	times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 1 || times[0] != "10:00" {
		t.Fatalf("bookable = %v, want [10:00]", times)
	}

	if _, err := svc.BookAppointment(ctx, student2, advisorID, at(t, testDate, "09:00"), ""); !errors.Is(err, model.ErrSlotUnavailable) {
		t.Fatalf("second booking err = %v, want ErrSlotUnavailable", err)
	}

	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	times, err = svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 2 || times[0] != "09:00" || times[1] != "10:00" {
		t.Fatalf("bookable after cancel = %v, want [09:00 10:00]", times)
	}
}

func TestBookUndeclaredSlot(t *testing.T) {
	svc, _ := newScheduling(t)

	_, err := svc.BookAppointment(context.Background(), studentID, advisorID, at(t, testDate, "09:00"), "")
	if !errors.Is(err, model.ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestConcurrentBookingExactlyOneWins(t *testing.T) {
	svc, store := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, model.ErrSlotUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("wins = %d, conflicts = %d, want 1 and %d", wins, conflicts, attempts-1)
	}

	appts, err := store.ListAppointmentsByAdvisorDate(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	live := 0
	for _, appt := range appts {
		if appt.Live() {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("live appointments = %d, want 1", live)
	}
}

func TestUpdateAppointmentConflictLeavesBothUnchanged(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	declare(t, svc, "10:00")

	first, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "first")
	if err != nil {
		t.Fatalf("book first: %v", err)
	}
	second, err := svc.BookAppointment(ctx, student2, advisorID, at(t, testDate, "10:00"), "second")
	if err != nil {
		t.Fatalf("book second: %v", err)
	}

	target := at(t, testDate, "09:00")
	_, err = svc.UpdateAppointment(ctx, second.ID, service.UpdateAppointmentParams{StartsAt: &target})
	if !errors.Is(err, model.ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}

	got1, err := svc.GetAppointment(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	got2, err := svc.GetAppointment(ctx, second.ID)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if !got1.StartsAt.Equal(at(t, testDate, "09:00")) || !got2.StartsAt.Equal(at(t, testDate, "10:00")) {
		t.Fatalf("appointments moved: %v, %v", got1.StartsAt, got2.StartsAt)
	}
}

func TestUpdateAppointmentReschedule(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	declare(t, svc, "10:00")

	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	target := at(t, testDate, "10:00")
	updated, err := svc.UpdateAppointment(ctx, appt.ID, service.UpdateAppointmentParams{StartsAt: &target})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TimeOfDay() != "10:00" {
		t.Fatalf("time = %s, want 10:00", updated.TimeOfDay())
	}

	// The vacated time is bookable again.
	times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 1 || times[0] != "09:00" {
		t.Fatalf("bookable = %v, want [09:00]", times)
	}
}

func TestUpdateAppointmentStatusMachine(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	confirmed := model.AppointmentStatusConfirmed
	_, err = svc.UpdateAppointment(ctx, appt.ID, service.UpdateAppointmentParams{Status: &confirmed})
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput (nothing leaves Canceled)", err)
	}
}

func TestCancelAfterSlotRevoked(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// Advisor revokes the declaration while the appointment is live.
	if _, err := svc.ToggleAvailability(ctx, advisorID, advisorID, testDate, "09:00"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The time reappears only if the declaration still exists; it does not.
	times, err := svc.ListBookableSlots(ctx, advisorID, testDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(times) != 0 {
		t.Fatalf("bookable = %v, want empty", times)
	}
}

func TestIsOccupied(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")

	occupied, err := svc.IsOccupied(ctx, advisorID, testDate, "09:00")
	if err != nil {
		t.Fatalf("is occupied: %v", err)
	}
	if occupied {
		t.Fatal("slot occupied before any booking")
	}

	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	occupied, err = svc.IsOccupied(ctx, advisorID, testDate, "09:00")
	if err != nil {
		t.Fatalf("is occupied: %v", err)
	}
	if !occupied {
		t.Fatal("slot not occupied after booking")
	}

	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	occupied, err = svc.IsOccupied(ctx, advisorID, testDate, "09:00")
	if err != nil {
		t.Fatalf("is occupied: %v", err)
	}
	if occupied {
		t.Fatal("slot still occupied after cancel")
	}
}

func TestNotFoundErrors(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	if err := svc.CancelAppointment(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cancel err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetAppointment(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
	notes := "x"
	if _, err := svc.UpdateAppointment(ctx, "missing", service.UpdateAppointmentParams{Notes: &notes}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update err = %v, want ErrNotFound", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _ := newScheduling(t)
	ctx := context.Background()

	declare(t, svc, "09:00")
	appt, err := svc.BookAppointment(ctx, studentID, advisorID, at(t, testDate, "09:00"), "")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := svc.CancelAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
}
