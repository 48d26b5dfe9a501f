package billing

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
	p := api.Group("/payments")
	p.GET("/list", h.Ledger)
	p.GET("/range", h.PaymentsByRange)
	p.GET("", h.ListPayments)
	p.POST("", h.RecordPayment)
	p.POST("/sync", h.Sync)

	api.GET("/doctor/payments", h.DoctorPayments, auth.RequireRole(auth.RoleDoctor))

	i := api.Group("/invoices")
	i.GET("", h.ListInvoices)
	i.POST("/generate", h.GenerateInvoice)
	i.GET("/:id", h.InvoiceByID)
}

func creatorID(c echo.Context) *int64 {
	if actor := auth.ActorFromContext(c.Request().Context()); actor != nil {
		return &actor.UserID
	}
	return nil
}

func (h *Handler) Ledger(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, total, totalAmount, err := h.svc.Ledger(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*LedgerEntry{}
	}
	return respond.OK(c, "Payment & invoice list fetched successfully", map[string]interface{}{
		"records":     records,
		"totalAmount": totalAmount,
		"total":       total,
		"page":        pg.Page(),
		"totalPages":  pagination.TotalPages(total, pg.Limit),
	})
}

func (h *Handler) DoctorPayments(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, totalAmount, err := h.svc.DoctorPayments(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), pg)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*PaymentDetail{}
	}
	return respond.OK(c, "Payments fetched successfully", map[string]interface{}{
		"records":     records,
		"totalAmount": totalAmount,
	})
}

func (h *Handler) ListPayments(c echo.Context) error {
	pg := pagination.FromContext(c)
	payments, total, totalAmount, err := h.svc.ListPayments(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	if payments == nil {
		payments = []*PaymentDetail{}
	}
	return respond.OK(c, "Payments fetched successfully", map[string]interface{}{
		"payments":    payments,
		"totalAmount": totalAmount,
		"total":       total,
		"page":        pg.Page(),
		"totalPages":  pagination.TotalPages(total, pg.Limit),
	})
}

func (h *Handler) PaymentsByRange(c echo.Context) error {
	payments, totalAmount, err := h.svc.PaymentsByRange(
		c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	if payments == nil {
		payments = []*PaymentDetail{}
	}
	return respond.OK(c, "Payments fetched successfully", map[string]interface{}{
		"payments":    payments,
		"totalAmount": totalAmount,
	})
}

func (h *Handler) RecordPayment(c echo.Context) error {
	var in RecordPaymentInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	pd, err := h.svc.RecordPayment(c.Request().Context(), in, creatorID(c))
	if err != nil {
		return err
	}
	return respond.Created(c, "Payment recorded successfully", pd)
}

func (h *Handler) Sync(c echo.Context) error {
	synced, err := h.svc.SyncFromAppointments(c.Request().Context(), creatorID(c))
	if err != nil {
		return err
	}
	return respond.OK(c, "Synced "+strconv.Itoa(synced)+" payments from appointments", map[string]interface{}{
		"synced": synced,
	})
}

func (h *Handler) ListInvoices(c echo.Context) error {
	invoices, totalAmount, err := h.svc.Invoices(c.Request().Context())
	if err != nil {
		return err
	}
	if invoices == nil {
		invoices = []*InvoiceDetail{}
	}
	return respond.OK(c, "Invoices fetched successfully", map[string]interface{}{
		"invoices":    invoices,
		"totalAmount": totalAmount,
	})
}

type generateInvoiceInput struct {
	AppointmentID int64 `json:"appointmentId"`
}

func (h *Handler) GenerateInvoice(c echo.Context) error {
	var in generateInvoiceInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validationf("invalid request body")
	}
	inv, err := h.svc.GenerateInvoice(c.Request().Context(), in.AppointmentID)
	if err != nil {
		return err
	}
	return respond.Created(c, "Invoice generated successfully", inv)
}

func (h *Handler) InvoiceByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.Validationf("invalid id")
	}
	inv, clinic, err := h.svc.InvoiceByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"invoice": inv}
	if clinic != nil {
		body["clinic"] = clinic
	} else {
		body["clinic"] = map[string]interface{}{}
	}
	return respond.OK(c, "Invoice fetched successfully", body)
}
