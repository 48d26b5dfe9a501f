package staff

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
	admin := api.Group("/admin/staff", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.List)
	admin.POST("", h.Add)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/status", h.ToggleStatus)
	admin.GET("/:id/patients", h.Patients)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid id")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "Staff fetched successfully", pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Add(c echo.Context) error {
	var in AddInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	st, err := h.svc.Add(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "Staff added successfully", st)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in AddInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	st, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Staff updated successfully", st)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, "Staff deleted successfully", nil)
}

func (h *Handler) ToggleStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if err := h.svc.ToggleStatus(c.Request().Context(), id, in.Status); err != nil {
		return err
	}
	return respond.OK(c, "Staff status updated successfully", map[string]string{"status": in.Status})
}

func (h *Handler) Patients(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	st, patients, total, err := h.svc.PatientsOf(c.Request().Context(), id, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if patients == nil {
		patients = []*PatientSummary{}
	}
	return respond.OK(c, "Staff patients fetched successfully", map[string]interface{}{
		"staff":      st,
		"patients":   patients,
		"total":      total,
		"page":       pg.Page(),
		"totalPages": pagination.TotalPages(total, pg.Limit),
	})
}
