package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const paymentCols = "p.id, p.appointment_id, p.patient_id, p.doctor_id, p.amount, p.payment_date, p.payment_method, p.status, p.notes, p.created_by, p.created_at"

const paymentDetailCols = paymentCols + `,
	pt.name, pt.mobile, d.name, d.specialization,
	a.appointment_date, a.appointment_time::text, a.reason`

const paymentDetailFrom = ` FROM payments p
	JOIN patients pt ON p.patient_id = pt.id
	JOIN doctors d ON p.doctor_id = d.id
	LEFT JOIN appointments a ON p.appointment_id = a.id`

func scanPaymentDetail(row pgx.Row) (*PaymentDetail, error) {
	var pd PaymentDetail
	err := row.Scan(
		&pd.ID, &pd.AppointmentID, &pd.PatientID, &pd.DoctorID, &pd.Amount,
		&pd.PaymentDate, &pd.PaymentMethod, &pd.Status, &pd.Notes, &pd.CreatedBy, &pd.CreatedAt,
		&pd.PatientName, &pd.PatientMobile, &pd.DoctorName, &pd.Specialization,
		&pd.AppointmentDate, &pd.AppointmentTime, &pd.Reason,
	)
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

func (r *repoPG) CreatePayment(ctx context.Context, p *Payment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO payments (appointment_id, patient_id, doctor_id, amount, payment_date, payment_method, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		p.AppointmentID, p.PatientID, p.DoctorID, p.Amount, p.PaymentDate,
		p.PaymentMethod, p.Status, p.Notes, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repoPG) NextInvoiceSeq(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&n)
	return n, err
}

func (r *repoPG) CreateInvoice(ctx context.Context, inv *Invoice) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, appointment_id, patient_id, doctor_id, amount, invoice_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		inv.InvoiceNumber, inv.AppointmentID, inv.PatientID, inv.DoctorID,
		inv.Amount, inv.InvoiceDate, inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt)
}

func (r *repoPG) CreatePaymentAndInvoice(ctx context.Context, p *Payment) (*Invoice, error) {
	var inv *Invoice
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if err := r.CreatePayment(ctx, p); err != nil {
			return err
		}
		seq, err := r.NextInvoiceSeq(ctx)
		if err != nil {
			return err
		}
		inv = &Invoice{
			InvoiceNumber: fmt.Sprintf("INV-%06d", seq),
			AppointmentID: p.AppointmentID,
			PatientID:     p.PatientID,
			DoctorID:      p.DoctorID,
			Amount:        p.Amount,
			InvoiceDate:   p.PaymentDate,
			Status:        "Generated",
		}
		return r.CreateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repoPG) PaymentExists(ctx context.Context, appointmentID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE appointment_id = $1)`,
		appointmentID,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) GetPaymentDetail(ctx context.Context, id int64) (*PaymentDetail, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+paymentDetailCols+paymentDetailFrom+" WHERE p.id = $1", id)
	return scanPaymentDetail(row)
}

func (r *repoPG) ListPayments(ctx context.Context, limit, offset int) ([]*PaymentDetail, int, float64, error) {
	q := r.conn(ctx)

	var total int
	var totalAmount float64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM payments`,
	).Scan(&total, &totalAmount)
	if err != nil {
		return nil, 0, 0, err
	}

	rows, err := q.Query(ctx,
		"SELECT "+paymentDetailCols+paymentDetailFrom+`
		ORDER BY p.payment_date DESC, p.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var out []*PaymentDetail
	for rows.Next() {
		pd, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		out = append(out, pd)
	}
	return out, total, totalAmount, rows.Err()
}

func (r *repoPG) PaymentsByDateRange(ctx context.Context, start, end time.Time) ([]*PaymentDetail, float64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		"SELECT "+paymentDetailCols+paymentDetailFrom+`
		WHERE p.payment_date BETWEEN $1 AND $2
		ORDER BY p.payment_date DESC, p.created_at DESC`, start, end)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*PaymentDetail
	var totalAmount float64
	for rows.Next() {
		pd, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		totalAmount += pd.Amount
		out = append(out, pd)
	}
	return out, totalAmount, rows.Err()
}

func (r *repoPG) Ledger(ctx context.Context, limit, offset int) ([]*LedgerEntry, int, float64, error) {
	q := r.conn(ctx)

	var total int
	var totalAmount float64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM payments`,
	).Scan(&total, &totalAmount)
	if err != nil {
		return nil, 0, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT p.id, p.appointment_id, p.amount, p.payment_date, p.status,
			pt.name, pt.mobile, d.name, d.specialization,
			i.invoice_number, i.id
		FROM payments p
		JOIN patients pt ON p.patient_id = pt.id
		JOIN doctors d ON p.doctor_id = d.id
		LEFT JOIN invoices i ON i.appointment_id = p.appointment_id
		ORDER BY p.payment_date DESC, p.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var out []*LedgerEntry
	for rows.Next() {
		var le LedgerEntry
		err := rows.Scan(
			&le.PaymentID, &le.AppointmentID, &le.Amount, &le.PaymentDate, &le.PaymentStatus,
			&le.PatientName, &le.PatientMobile, &le.DoctorName, &le.Specialization,
			&le.InvoiceNumber, &le.InvoiceID,
		)
		if err != nil {
			return nil, 0, 0, err
		}
		out = append(out, &le)
	}
	return out, total, totalAmount, rows.Err()
}

func (r *repoPG) DoctorPayments(ctx context.Context, doctorID int64, limit, offset int) ([]*PaymentDetail, float64, error) {
	q := r.conn(ctx)

	var totalAmount float64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE doctor_id = $1 AND status = 'Completed'`,
		doctorID,
	).Scan(&totalAmount)
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		"SELECT "+paymentDetailCols+paymentDetailFrom+`
		WHERE p.doctor_id = $1
		ORDER BY p.payment_date DESC, p.id DESC
		LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*PaymentDetail
	for rows.Next() {
		pd, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pd)
	}
	return out, totalAmount, rows.Err()
}

const invoiceCols = "i.id, i.invoice_number, i.appointment_id, i.patient_id, i.doctor_id, i.amount, i.invoice_date, i.status, i.created_at"

const invoiceDetailCols = invoiceCols + `,
	pt.name, pt.mobile, pt.age, pt.gender, pt.address,
	d.name, d.specialization, d.qualification,
	a.appointment_date, a.appointment_time::text, a.reason`

const invoiceDetailFrom = ` FROM invoices i
	JOIN patients pt ON i.patient_id = pt.id
	JOIN doctors d ON i.doctor_id = d.id
	LEFT JOIN appointments a ON i.appointment_id = a.id`

func scanInvoiceDetail(row pgx.Row) (*InvoiceDetail, error) {
	var id InvoiceDetail
	err := row.Scan(
		&id.ID, &id.InvoiceNumber, &id.AppointmentID, &id.PatientID, &id.DoctorID,
		&id.Amount, &id.InvoiceDate, &id.Status, &id.CreatedAt,
		&id.PatientName, &id.PatientMobile, &id.PatientAge, &id.PatientGender, &id.PatientAddress,
		&id.DoctorName, &id.Specialization, &id.Qualification,
		&id.AppointmentDate, &id.AppointmentTime, &id.Reason,
	)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *repoPG) ListInvoices(ctx context.Context) ([]*InvoiceDetail, float64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		"SELECT "+invoiceDetailCols+invoiceDetailFrom+`
		ORDER BY i.invoice_date DESC, i.created_at DESC`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*InvoiceDetail
	var totalAmount float64
	for rows.Next() {
		iv, err := scanInvoiceDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		totalAmount += iv.Amount
		out = append(out, iv)
	}
	return out, totalAmount, rows.Err()
}

func (r *repoPG) GetInvoice(ctx context.Context, id int64) (*InvoiceDetail, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+invoiceDetailCols+invoiceDetailFrom+" WHERE i.id = $1", id)
	return scanInvoiceDetail(row)
}

func (r *repoPG) AppointmentBilling(ctx context.Context, appointmentID int64) (*ApptBilling, error) {
	var ab ApptBilling
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, appointment_date, fee
		FROM appointments WHERE id = $1`, appointmentID,
	).Scan(&ab.AppointmentID, &ab.PatientID, &ab.DoctorID, &ab.Date, &ab.Fee)
	if err != nil {
		return nil, err
	}
	return &ab, nil
}

func (r *repoPG) UnbilledCompleted(ctx context.Context) ([]*ApptBilling, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.fee
		FROM appointments a
		WHERE a.fee > 0 AND a.status = 'Completed'
		  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.appointment_id = a.id)
		ORDER BY a.appointment_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ApptBilling
	for rows.Next() {
		var ab ApptBilling
		if err := rows.Scan(&ab.AppointmentID, &ab.PatientID, &ab.DoctorID, &ab.Date, &ab.Fee); err != nil {
			return nil, err
		}
		out = append(out, &ab)
	}
	return out, rows.Err()
}

func (r *repoPG) ClinicInfo(ctx context.Context) (*ClinicInfo, error) {
	var ci ClinicInfo
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT clinic_name, address, phone, email FROM clinic_settings ORDER BY id LIMIT 1`,
	).Scan(&ci.ClinicName, &ci.Address, &ci.Phone, &ci.Email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ci, nil
}
