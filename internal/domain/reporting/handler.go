package reporting

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/dashboard/stats", h.AdminDashboard, auth.RequireRole(auth.RoleAdmin))
	api.GET("/staff/dashboard/stats", h.StaffDashboard, auth.RequireRole(auth.RoleStaff))
	api.GET("/doctor/dashboard", h.DoctorDashboard, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) AdminDashboard(c echo.Context) error {
	stats, err := h.svc.AdminDashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return respond.OK(c, "Dashboard stats fetched successfully", stats)
}

func (h *Handler) StaffDashboard(c echo.Context) error {
	stats, err := h.svc.StaffDashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return respond.OK(c, "Dashboard data fetched successfully", stats)
}

func (h *Handler) DoctorDashboard(c echo.Context) error {
	stats, err := h.svc.DoctorDashboard(c.Request().Context(), auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.OK(c, "Dashboard data fetched successfully", stats)
}
