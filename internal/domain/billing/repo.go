package billing

import (
	"context"
	"time"
)

type Repository interface {
	// CreatePaymentAndInvoice writes both rows atomically, drawing the
	// invoice number from the invoice sequence.
	CreatePaymentAndInvoice(ctx context.Context, p *Payment) (*Invoice, error)
	CreatePayment(ctx context.Context, p *Payment) error
	PaymentExists(ctx context.Context, appointmentID int64) (bool, error)
	GetPaymentDetail(ctx context.Context, id int64) (*PaymentDetail, error)
	ListPayments(ctx context.Context, limit, offset int) ([]*PaymentDetail, int, float64, error)
	PaymentsByDateRange(ctx context.Context, start, end time.Time) ([]*PaymentDetail, float64, error)
	Ledger(ctx context.Context, limit, offset int) ([]*LedgerEntry, int, float64, error)
	// DoctorPayments lists one doctor's payments with their completed
	// earnings total.
	DoctorPayments(ctx context.Context, doctorID int64, limit, offset int) ([]*PaymentDetail, float64, error)

	CreateInvoice(ctx context.Context, inv *Invoice) error
	NextInvoiceSeq(ctx context.Context) (int64, error)
	ListInvoices(ctx context.Context) ([]*InvoiceDetail, float64, error)
	GetInvoice(ctx context.Context, id int64) (*InvoiceDetail, error)

	AppointmentBilling(ctx context.Context, appointmentID int64) (*ApptBilling, error)
	// UnbilledCompleted lists completed appointments with a fee but no
	// payment row.
	UnbilledCompleted(ctx context.Context) ([]*ApptBilling, error)
	ClinicInfo(ctx context.Context) (*ClinicInfo, error)
}
