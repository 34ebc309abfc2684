package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/repository/memory"
	"github.com/campushub/portal/internal/server"
	"github.com/campushub/portal/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*server.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	store.PutUser(&model.User{ID: "adv-1", Name: "Dr. Smith", Email: "dr.smith@campus.edu", Role: model.RoleFaculty})
	store.PutUser(&model.User{ID: "stu-1", Name: "John Doe", Email: "john.doe@campus.edu", Role: model.RoleStudent})
	store.PutUser(&model.User{ID: "stu-2", Name: "Jane Smith", Email: "jane.smith@campus.edu", Role: model.RoleStudent})
	store.PutUser(&model.User{ID: "adm-1", Name: "Super Admin", Email: "admin@campus.edu", Role: model.RoleAdmin})

	logger := zap.NewNop()
	audit := service.NewAuditService(store.AuditLogs(), nil, logger)
	users := service.NewUserService(store.Users(), audit, logger)
	scheduling := service.NewSchedulingService(store.Slots(), store.Appointments(), store.Users(), store.Roles(), audit, logger)
	courses := service.NewCourseService(store.Courses(), audit, logger)
	library := service.NewLibraryService(store.Books(), audit, logger)
	stats := service.NewStatsService(store.Users(), store.Appointments(), store.Courses(), store.Books())

	srv := server.New(users, store.Roles(), scheduling, courses, library, audit, stats, nil, logger)
	return srv, store
}

func do(t *testing.T, srv *server.Server, method, path, asUser string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser != "" {
		req.Header.Set("X-User-ID", asUser)
	}

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestIdentityRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	if w := do(t, srv, http.MethodGet, "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/api/me", "ghost", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d, want 401", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/api/me", "stu-1", nil); w.Code != http.StatusOK {
		t.Fatalf("known user: status = %d, want 200", w.Code)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	if w := do(t, srv, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestBookingFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Advisor declares two slots.
	for _, slotTime := range []string{"09:00", "10:00"} {
		w := do(t, srv, http.MethodPost, "/api/advisors/adv-1/availability", "adv-1",
			map[string]string{"date": "2025-01-10", "time": slotTime})
		if w.Code != http.StatusOK {
			t.Fatalf("toggle %s: status = %d, body %s", slotTime, w.Code, w.Body.String())
		}
	}

	// Student sees both.
	w := do(t, srv, http.MethodGet, "/api/advisors/adv-1/slots?date=2025-01-10", "stu-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("slots: status = %d", w.Code)
	}
	var slots struct {
		Times []string `json:"times"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots.Times) != 2 {
		t.Fatalf("times = %v, want two slots", slots.Times)
	}

	// Student books 09:00.
	w = do(t, srv, http.MethodPost, "/api/appointments", "stu-1",
		map[string]string{"advisor_id": "adv-1", "date": "2025-01-10", "time": "09:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("book: status = %d, body %s", w.Code, w.Body.String())
	}
	var appt model.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode appointment: %v", err)
	}
	if appt.StudentID != "stu-1" || appt.Status != model.AppointmentStatusConfirmed {
		t.Fatalf("appointment = %+v", appt)
	}

	// The second student hits the conflict.
	w = do(t, srv, http.MethodPost, "/api/appointments", "stu-2",
		map[string]string{"advisor_id": "adv-1", "date": "2025-01-10", "time": "09:00"})
	if w.Code != http.StatusConflict {
		t.Fatalf("double booking: status = %d, want 409", w.Code)
	}

	// Only one bookable slot left.
	w = do(t, srv, http.MethodGet, "/api/advisors/adv-1/slots?date=2025-01-10", "stu-2", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots.Times) != 1 || slots.Times[0] != "10:00" {
		t.Fatalf("times = %v, want [10:00]", slots.Times)
	}

	// Cancel frees it again.
	w = do(t, srv, http.MethodPost, "/api/appointments/"+appt.ID+"/cancel", "stu-1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("cancel: status = %d", w.Code)
	}
	w = do(t, srv, http.MethodGet, "/api/advisors/adv-1/slots?date=2025-01-10", "stu-2", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots.Times) != 2 {
		t.Fatalf("times after cancel = %v, want both slots", slots.Times)
	}
}

func TestStudentCannotBookForOthers(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/advisors/adv-1/availability", "adv-1",
		map[string]string{"date": "2025-01-10", "time": "09:00"})

	w := do(t, srv, http.MethodPost, "/api/appointments", "stu-1",
		map[string]string{"student_id": "stu-2", "advisor_id": "adv-1", "date": "2025-01-10", "time": "09:00"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCancelRequiresParticipantOrAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/advisors/adv-1/availability", "adv-1",
		map[string]string{"date": "2025-01-10", "time": "09:00"})
	w := do(t, srv, http.MethodPost, "/api/appointments", "stu-1",
		map[string]string{"advisor_id": "adv-1", "date": "2025-01-10", "time": "09:00"})
	var appt model.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode appointment: %v", err)
	}

	if w := do(t, srv, http.MethodPost, "/api/appointments/"+appt.ID+"/cancel", "stu-2", nil); w.Code != http.StatusForbidden {
		t.Fatalf("bystander cancel: status = %d, want 403", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/appointments/"+appt.ID+"/cancel", "adm-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin cancel: status = %d, want 204", w.Code)
	}
}

func TestPermissionGuards(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		asUser string
		want   int
	}{
		{"student cannot list users", http.MethodGet, "/api/users", "stu-1", http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/api/users", "adm-1", http.StatusOK},
		{"student cannot read audit logs", http.MethodGet, "/api/audit-logs", "stu-1", http.StatusForbidden},
		{"admin reads audit logs", http.MethodGet, "/api/audit-logs", "adm-1", http.StatusOK},
		{"student cannot read stats", http.MethodGet, "/api/stats", "stu-1", http.StatusForbidden},
		{"admin reads stats", http.MethodGet, "/api/stats", "adm-1", http.StatusOK},
		{"student browses the library", http.MethodGet, "/api/books", "stu-1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, srv, tt.method, tt.path, tt.asUser, nil); w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestToggleAvailabilityForbiddenForStudents(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/advisors/adv-1/availability", "stu-1",
		map[string]string{"date": "2025-01-10", "time": "09:00"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestScheduleImage(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/advisors/adv-1/availability", "adv-1",
		map[string]string{"date": "2025-01-10", "time": "09:00"})

	w := do(t, srv, http.MethodGet, "/api/advisors/adv-1/schedule.png?date=2025-01-10", "stu-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %s, want image/png", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty image body")
	}
}
