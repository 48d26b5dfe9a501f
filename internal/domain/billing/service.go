package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// BillBooking records the at-booking payment and its invoice for a
// charged appointment. It is idempotent: an appointment that already
// has a payment is left untouched.
func (s *Service) BillBooking(ctx context.Context, appointmentID, patientID, doctorID int64, date time.Time, fee float64, createdBy *int64) error {
	if fee <= 0 {
		return nil
	}
	exists, err := s.repo.PaymentExists(ctx, appointmentID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	p := &Payment{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		DoctorID:      doctorID,
		Amount:        fee,
		PaymentDate:   date,
		PaymentMethod: "Cash",
		Status:        "Completed",
		CreatedBy:     createdBy,
	}
	if _, err = s.repo.CreatePaymentAndInvoice(ctx, p); err != nil {
		return err
	}
	metrics.PaymentRecorded(p.PaymentMethod)
	metrics.InvoiceGenerated()
	return nil
}

// EnsurePayment backfills the payment for a single fee-bearing
// appointment if none exists yet. Used when a consultation closes an
// appointment that was never billed at booking.
func (s *Service) EnsurePayment(ctx context.Context, appointmentID int64, createdBy *int64) error {
	ab, err := s.repo.AppointmentBilling(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("appointment not found")
		}
		return err
	}
	if ab.Fee <= 0 {
		return nil
	}
	exists, err := s.repo.PaymentExists(ctx, appointmentID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.repo.CreatePayment(ctx, &Payment{
		AppointmentID: ab.AppointmentID,
		PatientID:     ab.PatientID,
		DoctorID:      ab.DoctorID,
		Amount:        ab.Fee,
		PaymentDate:   ab.Date,
		PaymentMethod: "Cash",
		Status:        "Completed",
		CreatedBy:     createdBy,
	}); err != nil {
		return err
	}
	metrics.PaymentRecorded("Cash")
	return nil
}

type RecordPaymentInput struct {
	AppointmentID int64    `json:"appointmentId"`
	Amount        *float64 `json:"amount"`
	PaymentMethod string   `json:"paymentMethod"`
	Notes         *string  `json:"notes"`
}

func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput, createdBy *int64) (*PaymentDetail, error) {
	if in.AppointmentID == 0 || in.Amount == nil {
		return nil, apperr.Validationf("appointment ID and amount are required")
	}
	ab, err := s.repo.AppointmentBilling(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("appointment not found")
		}
		return nil, err
	}

	amount := *in.Amount
	if amount == 0 {
		amount = ab.Fee
	}
	method := in.PaymentMethod
	if method == "" {
		method = "Cash"
	}

	p := &Payment{
		AppointmentID: ab.AppointmentID,
		PatientID:     ab.PatientID,
		DoctorID:      ab.DoctorID,
		Amount:        amount,
		PaymentDate:   ab.Date,
		PaymentMethod: method,
		Status:        "Completed",
		Notes:         in.Notes,
		CreatedBy:     createdBy,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	metrics.PaymentRecorded(p.PaymentMethod)
	return s.repo.GetPaymentDetail(ctx, p.ID)
}

func (s *Service) ListPayments(ctx context.Context, pg pagination.Params) ([]*PaymentDetail, int, float64, error) {
	return s.repo.ListPayments(ctx, pg.Limit, pg.Offset)
}

func (s *Service) Ledger(ctx context.Context, pg pagination.Params) ([]*LedgerEntry, int, float64, error) {
	return s.repo.Ledger(ctx, pg.Limit, pg.Offset)
}

// DoctorPayments is the doctor-facing earnings view: own payments plus
// the completed total.
func (s *Service) DoctorPayments(ctx context.Context, actor *auth.Actor, pg pagination.Params) ([]*PaymentDetail, float64, error) {
	if actor == nil || actor.DoctorID == nil {
		return nil, 0, apperr.NotFoundf("doctor profile not found")
	}
	return s.repo.DoctorPayments(ctx, *actor.DoctorID, pg.Limit, pg.Offset)
}

func (s *Service) PaymentsByRange(ctx context.Context, startDate, endDate string) ([]*PaymentDetail, float64, error) {
	if startDate == "" || endDate == "" {
		return nil, 0, apperr.Validationf("start date and end date are required")
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, 0, apperr.Validationf("invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, 0, apperr.Validationf("invalid end date, expected YYYY-MM-DD")
	}
	return s.repo.PaymentsByDateRange(ctx, start, end)
}

func (s *Service) Invoices(ctx context.Context) ([]*InvoiceDetail, float64, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) GenerateInvoice(ctx context.Context, appointmentID int64) (*InvoiceDetail, error) {
	if appointmentID == 0 {
		return nil, apperr.Validationf("appointment ID is required")
	}
	ab, err := s.repo.AppointmentBilling(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("appointment not found")
		}
		return nil, err
	}

	seq, err := s.repo.NextInvoiceSeq(ctx)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%06d", seq),
		AppointmentID: ab.AppointmentID,
		PatientID:     ab.PatientID,
		DoctorID:      ab.DoctorID,
		Amount:        ab.Fee,
		InvoiceDate:   ab.Date,
		Status:        "Generated",
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	metrics.InvoiceGenerated()
	return s.repo.GetInvoice(ctx, inv.ID)
}

// InvoiceByID returns the printable invoice together with the clinic
// letterhead. The clinic info may be nil when settings were never set.
func (s *Service) InvoiceByID(ctx context.Context, id int64) (*InvoiceDetail, *ClinicInfo, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("invoice not found")
		}
		return nil, nil, err
	}
	clinic, err := s.repo.ClinicInfo(ctx)
	if err != nil {
		return nil, nil, err
	}
	return inv, clinic, nil
}

// SyncFromAppointments backfills payments for completed, fee-bearing
// appointments that have no payment row, and reports how many were
// created.
func (s *Service) SyncFromAppointments(ctx context.Context, createdBy *int64) (int, error) {
	pending, err := s.repo.UnbilledCompleted(ctx)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, ab := range pending {
		p := &Payment{
			AppointmentID: ab.AppointmentID,
			PatientID:     ab.PatientID,
			DoctorID:      ab.DoctorID,
			Amount:        ab.Fee,
			PaymentDate:   ab.Date,
			PaymentMethod: "Cash",
			Status:        "Completed",
			CreatedBy:     createdBy,
		}
		if err := s.repo.CreatePayment(ctx, p); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}
