package patient

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
	g := api.Group("/patients")
	g.GET("/search", h.SearchByMobile)
	g.GET("", h.List)
	g.POST("", h.Add)
	g.GET("/:id", h.GetWithHistory)
	g.PUT("/:id", h.Update, auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))

	api.GET("/admin/patients", h.List, auth.RequireRole(auth.RoleAdmin))
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid id")
	}
	return id, nil
}

func (h *Handler) SearchByMobile(c echo.Context) error {
	p, found, err := h.svc.SearchByMobile(c.Request().Context(), c.QueryParam("mobile"))
	if err != nil {
		return err
	}
	msg := "Patient found"
	if !found {
		msg = "Patient not found"
	}
	return respond.OK(c, msg, map[string]interface{}{
		"found":   found,
		"patient": p,
	})
}

func (h *Handler) Add(c echo.Context) error {
	var in AddInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil {
		in.CreatedBy = &actor.UserID
	}
	p, err := h.svc.Add(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "Patient added successfully", p)
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
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Patient updated successfully", p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, "Patient deleted successfully", nil)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Patient{}
	}
	return respond.OK(c, "Patients fetched successfully", map[string]interface{}{
		"patients":   items,
		"total":      total,
		"page":       pg.Page(),
		"totalPages": pagination.TotalPages(total, pg.Limit),
	})
}

func (h *Handler) GetWithHistory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, history, err := h.svc.GetWithHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if history == nil {
		history = []*HistoryEntry{}
	}
	return respond.OK(c, "Patient fetched successfully", map[string]interface{}{
		"patient": p,
		"history": history,
	})
}
