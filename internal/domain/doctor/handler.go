package doctor

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
	admin := api.Group("/admin/doctors", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.List)
	admin.POST("", h.Add)
	admin.GET("/specializations", h.Specializations)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/status", h.ToggleStatus)
	admin.GET("/:id/patients", h.Patients)

	api.GET("/doctors/available", h.Available)
	api.GET("/doctor/me", h.Me, auth.RequireRole(auth.RoleDoctor))
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
	return respond.OK(c, "Doctors fetched successfully", pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Add(c echo.Context) error {
	var in AddInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	d, err := h.svc.Add(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "Doctor added successfully", d)
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
	d, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Doctor updated successfully", d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, "Doctor deleted successfully", nil)
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
	return respond.OK(c, "Doctor status updated successfully", map[string]string{"status": in.Status})
}

func (h *Handler) Patients(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	d, patients, total, err := h.svc.PatientsOf(c.Request().Context(), id, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if patients == nil {
		patients = []*PatientSummary{}
	}
	return respond.OK(c, "Doctor patients fetched successfully", map[string]interface{}{
		"doctor":     d,
		"patients":   patients,
		"total":      total,
		"page":       pg.Page(),
		"totalPages": pagination.TotalPages(total, pg.Limit),
	})
}

func (h *Handler) Available(c echo.Context) error {
	items, err := h.svc.Available(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Ref{}
	}
	return respond.OK(c, "Doctors fetched successfully", items)
}

func (h *Handler) Specializations(c echo.Context) error {
	items, err := h.svc.Specializations(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	return respond.OK(c, "Specializations fetched successfully", items)
}

// Me returns the doctor profile for the signed-in doctor account.
func (h *Handler) Me(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return apperr.Authf("authentication required")
	}
	d, err := h.svc.GetByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respond.OK(c, "Current doctor fetched successfully", d)
}
