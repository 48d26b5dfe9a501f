package consultation

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
	"github.com/clinicdesk/clinicdesk/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the consultation workspace under /doctor. Role
// scoping happens in the service: doctors see their own appointments,
// admin and staff see all.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	d := api.Group("/doctor")
	d.GET("/consultation/:appointmentId", h.GetForAppointment)
	d.POST("/consultation/:appointmentId", h.Save)
	d.GET("/consultations/recent", h.Recent)
	d.GET("/consultation/:consultationId/print", h.PrintData)
	d.GET("/patient/:patientId/print", h.PrintDataByPatient)
	d.GET("/patients/:patientId/full-history", h.FullHistory)
	d.GET("/templates", h.Templates)
	d.POST("/templates", h.AddTemplate)
	d.DELETE("/templates/:id", h.DeleteTemplate)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

func (h *Handler) GetForAppointment(c echo.Context) error {
	appointmentID, err := pathID(c, "appointmentId")
	if err != nil {
		return err
	}
	ws, err := h.svc.GetForAppointment(c.Request().Context(), appointmentID, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.OK(c, "", ws)
}

func (h *Handler) Save(c echo.Context) error {
	appointmentID, err := pathID(c, "appointmentId")
	if err != nil {
		return err
	}
	var in SaveInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	cons, warnings, err := h.svc.Save(c.Request().Context(), appointmentID, in, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	data := echo.Map{"consultation": cons}
	if len(warnings) > 0 {
		data["warnings"] = warnings
	}
	return respond.OK(c, "Consultation saved successfully", data)
}

func (h *Handler) Recent(c echo.Context) error {
	entries, err := h.svc.Recent(c.Request().Context(), auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*RecentEntry{}
	}
	return respond.OK(c, "", echo.Map{"consultations": entries})
}

func (h *Handler) PrintData(c echo.Context) error {
	consultationID, err := pathID(c, "consultationId")
	if err != nil {
		return err
	}
	pd, settings, err := h.svc.PrintData(c.Request().Context(), consultationID, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.OK(c, "", echo.Map{"printData": pd, "clinic": settings})
}

func (h *Handler) PrintDataByPatient(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	pd, settings, err := h.svc.PrintDataByPatient(c.Request().Context(), patientID, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.OK(c, "", echo.Map{"printData": pd, "clinic": settings})
}

func (h *Handler) FullHistory(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	pt, history, err := h.svc.FullHistory(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	if history == nil {
		history = []*FullHistoryEntry{}
	}
	return respond.OK(c, "", echo.Map{"patient": pt, "consultations": history})
}

func (h *Handler) Templates(c echo.Context) error {
	templates, err := h.svc.Templates(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), c.QueryParam("fieldType"))
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []*Template{}
	}
	return respond.OK(c, "", echo.Map{"templates": templates})
}

func (h *Handler) AddTemplate(c echo.Context) error {
	var in TemplateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	t, err := h.svc.AddTemplate(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "Template saved successfully", t)
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTemplate(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), id); err != nil {
		return err
	}
	return respond.OK(c, "Template deleted successfully", nil)
}
