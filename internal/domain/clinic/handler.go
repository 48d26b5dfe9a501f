package clinic

import (
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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin/settings", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.Get)
	admin.PUT("", h.Update)
	admin.POST("/upload", h.Upload)

	api.GET("/staff/settings", h.Get, auth.RequireRole(auth.RoleStaff))
	api.PUT("/doctor/print-preferences", h.UpdatePrintPreferences, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Get(c echo.Context) error {
	settings, err := h.svc.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return respond.OK(c, "Settings fetched successfully", settings)
}

func (h *Handler) Update(c echo.Context) error {
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	settings, err := h.svc.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Settings updated successfully", settings)
}

func (h *Handler) UpdatePrintPreferences(c echo.Context) error {
	var in PrintPrefsInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	settings, err := h.svc.UpdatePrintPreferences(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.OK(c, "Print preferences updated successfully", settings)
}

func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validationf("no file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.svc.UploadFile(c.Request().Context(),
		c.FormValue("type"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return err
	}
	return respond.OK(c, "File uploaded successfully", map[string]interface{}{
		"url": url,
	})
}
