package scheduling

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
	"github.com/clinicdesk/clinicdesk/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Book)
	api.PATCH("/appointments/:id/status", h.UpdateStatus)

	d := api.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	d.GET("/appointments", h.DoctorList)
	d.GET("/appointments/today", h.DoctorToday)

	api.GET("/staff/appointments", h.StaffList, auth.RequireRole(auth.RoleStaff))
	api.GET("/admin/appointments", h.AdminList, auth.RequireRole(auth.RoleAdmin))
}

func filterFromContext(c echo.Context) ListFilter {
	pg := pagination.FromContext(c)
	return ListFilter{
		Date:   c.QueryParam("date"),
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
}

func (h *Handler) Book(c echo.Context) error {
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	var createdBy *int64
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil {
		createdBy = &actor.UserID
	}
	result, err := h.svc.Book(c.Request().Context(), in, createdBy)
	if err != nil {
		return err
	}
	return respond.Created(c, "Appointment booked successfully", result)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.Validationf("invalid id")
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, in.Status); err != nil {
		return err
	}
	return respond.OK(c, "Appointment status updated successfully", map[string]interface{}{
		"status": in.Status,
	})
}

func doctorIDFromContext(c echo.Context) (int64, error) {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil || actor.DoctorID == nil {
		return 0, apperr.NotFoundf("doctor profile not found")
	}
	return *actor.DoctorID, nil
}

func (h *Handler) DoctorList(c echo.Context) error {
	doctorID, err := doctorIDFromContext(c)
	if err != nil {
		return err
	}
	f := filterFromContext(c)
	items, total, err := h.svc.DoctorList(c.Request().Context(), doctorID, f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Detail{}
	}
	pg := pagination.FromContext(c)
	return respond.OK(c, "Appointments fetched successfully", map[string]interface{}{
		"appointments": items,
		"total":        total,
		"page":         pg.Page(),
		"totalPages":   pagination.TotalPages(total, pg.Limit),
	})
}

func (h *Handler) DoctorToday(c echo.Context) error {
	doctorID, err := doctorIDFromContext(c)
	if err != nil {
		return err
	}
	f := filterFromContext(c)
	today, err := h.svc.DoctorToday(c.Request().Context(), doctorID, f)
	if err != nil {
		return err
	}
	if today.Appointments == nil {
		today.Appointments = []*Detail{}
	}
	pg := pagination.FromContext(c)
	return respond.OK(c, "Today appointments fetched successfully", map[string]interface{}{
		"appointments": today.Appointments,
		"total":        today.Total,
		"pending":      today.Pending,
		"page":         pg.Page(),
		"totalPages":   pagination.TotalPages(today.Total, pg.Limit),
	})
}

func (h *Handler) StaffList(c echo.Context) error {
	f := filterFromContext(c)
	items, total, err := h.svc.StaffList(c.Request().Context(), f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Detail{}
	}
	return respond.OK(c, "Appointments fetched successfully", map[string]interface{}{
		"appointments": items,
		"total":        total,
	})
}

func (h *Handler) AdminList(c echo.Context) error {
	f := filterFromContext(c)
	items, total, err := h.svc.AdminList(c.Request().Context(), f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Detail{}
	}
	pg := pagination.FromContext(c)
	return respond.OK(c, "Appointments fetched successfully", map[string]interface{}{
		"appointments": items,
		"total":        total,
		"page":         pg.Page(),
		"totalPages":   pagination.TotalPages(total, pg.Limit),
	})
}
