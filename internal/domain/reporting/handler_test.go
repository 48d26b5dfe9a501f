package reporting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func TestHandler_StaffDashboard(t *testing.T) {
	repo := &mockRepo{staff: &StaffStats{
		Stats:              StaffCounters{TodayTotal: 4, Waiting: 2, TotalEarnings: 1200},
		AppointmentTrends:  []*TrendPoint{},
		RecentAppointments: []*RecentAppointment{},
		RecentPatients:     []*RecentPatient{},
	}}
	h := NewHandler(NewService(repo))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/dashboard/stats", nil)
	req = req.WithContext(auth.WithActor(req.Context(), &auth.Actor{UserID: 5, Role: auth.RoleStaff}))
	rec := httptest.NewRecorder()

	if err := h.StaffDashboard(e.NewContext(req, rec)); err != nil {
		t.Fatalf("staff dashboard: %v", err)
	}

	var resp struct {
		Success bool       `json:"success"`
		Data    StaffStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Stats.TodayTotal != 4 || resp.Data.Stats.TotalEarnings != 1200 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_DoctorDashboard_NoProfile(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctor/dashboard", nil)
	req = req.WithContext(auth.WithActor(req.Context(), &auth.Actor{UserID: 5, Role: auth.RoleDoctor}))
	rec := httptest.NewRecorder()

	if err := h.DoctorDashboard(e.NewContext(req, rec)); err == nil {
		t.Error("expected error without doctor profile")
	}
}

func TestHandler_ReportingRegisterRoutes(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}))
	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))

	want := map[string]bool{
		"GET /api/v1/admin/dashboard/stats": false,
		"GET /api/v1/staff/dashboard/stats": false,
		"GET /api/v1/doctor/dashboard":      false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", key)
		}
	}
}
