package media

import (
	"fmt"
	"net/http"
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

// RegisterRoutes mounts media endpoints. Access is role-scoped inside
// the service: doctors only reach their own consultations and treated
// patients, admin and staff are unrestricted.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	c := api.Group("/doctor/consultation/:consultationId/media")
	c.GET("", h.ListForConsultation)
	c.POST("", h.UploadForConsultation)
	c.GET("/:mediaId/file", h.ServeFile)
	c.DELETE("/:mediaId", h.DeleteFromConsultation)

	r := api.Group("/doctor/reports")
	r.GET("", h.ListReports)
	r.POST("", h.UploadReport)
	r.GET("/:id/download", h.DownloadReport)
	r.DELETE("/:id", h.DeleteReport)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

func (h *Handler) UploadForConsultation(c echo.Context) error {
	consultationID, err := pathID(c, "consultationId")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validationf("file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	var description *string
	if d := c.FormValue("description"); d != "" {
		description = &d
	}
	f, err := h.svc.UploadForConsultation(c.Request().Context(), consultationID, UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     src,
		Description: description,
	}, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.Created(c, "File uploaded successfully", f)
}

func (h *Handler) ListForConsultation(c echo.Context) error {
	consultationID, err := pathID(c, "consultationId")
	if err != nil {
		return err
	}
	files, err := h.svc.ListForConsultation(c.Request().Context(), consultationID, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	if files == nil {
		files = []*File{}
	}
	return respond.OK(c, "", echo.Map{"files": files})
}

func (h *Handler) ServeFile(c echo.Context) error {
	consultationID, err := pathID(c, "consultationId")
	if err != nil {
		return err
	}
	mediaID, err := pathID(c, "mediaId")
	if err != nil {
		return err
	}
	rc, f, err := h.svc.OpenFile(c.Request().Context(), consultationID, mediaID, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", f.FileName))
	return c.Stream(http.StatusOK, ContentTypeFor(f), rc)
}

func (h *Handler) DeleteFromConsultation(c echo.Context) error {
	consultationID, err := pathID(c, "consultationId")
	if err != nil {
		return err
	}
	mediaID, err := pathID(c, "mediaId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteFromConsultation(c.Request().Context(), consultationID, mediaID, auth.ActorFromContext(c.Request().Context())); err != nil {
		return err
	}
	return respond.OK(c, "File deleted successfully", nil)
}

func (h *Handler) UploadReport(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.FormValue("patientId"), 10, 64)
	if err != nil {
		return apperr.Validationf("patient ID is required")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validationf("file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	var description *string
	if d := c.FormValue("description"); d != "" {
		description = &d
	}
	f, err := h.svc.UploadReport(c.Request().Context(), ReportInput{
		PatientID:   patientID,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     src,
		Description: description,
	}, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return respond.Created(c, "Report uploaded successfully", f)
}

func (h *Handler) ListReports(c echo.Context) error {
	p := pagination.FromContext(c)

	var patientID *int64
	if raw := c.QueryParam("patientId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperr.Validationf("invalid patientId")
		}
		patientID = &id
	}
	reports, total, err := h.svc.ListReports(c.Request().Context(), patientID, auth.ActorFromContext(c.Request().Context()), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*ReportEntry{}
	}
	return respond.OK(c, "", echo.Map{
		"reports":    reports,
		"total":      total,
		"page":       p.Page(),
		"totalPages": pagination.TotalPages(total, p.Limit),
	})
}

func (h *Handler) DownloadReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rc, f, err := h.svc.DownloadReport(c.Request().Context(), id, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.FileName))
	return c.Stream(http.StatusOK, ContentTypeFor(f), rc)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReport(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, "Report deleted successfully", nil)
}
