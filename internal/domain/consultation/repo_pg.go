package consultation

import (
	"context"
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

const consultationCols = `c.id, c.appointment_id, c.patient_id, c.doctor_id, c.visit_number,
	c.chief_complaints, c.comorbidities, c.imaging_findings, c.diagnosis,
	c.treatment_plan, c.follow_up_notes, c.vitals, c.created_at, c.updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(
		&c.ID, &c.AppointmentID, &c.PatientID, &c.DoctorID, &c.VisitNumber,
		&c.ChiefComplaints, &c.Comorbidities, &c.ImagingFindings, &c.Diagnosis,
		&c.TreatmentPlan, &c.FollowUpNotes, &c.Vitals, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Appointment(ctx context.Context, appointmentID int64, doctorID *int64) (*ApptInfo, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time::text, a.reason, a.status, a.fee
		FROM appointments a
		WHERE a.id = $1`
	args := []interface{}{appointmentID}
	if doctorID != nil {
		query += " AND a.doctor_id = $2"
		args = append(args, *doctorID)
	}

	var a ApptInfo
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.AppointmentTime,
		&a.Reason, &a.Status, &a.Fee,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID int64) (*Consultation, error) {
	return scanConsultation(r.conn(ctx).QueryRow(ctx,
		"SELECT "+consultationCols+" FROM consultations c WHERE c.appointment_id = $1",
		appointmentID))
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Consultation, error) {
	return scanConsultation(r.conn(ctx).QueryRow(ctx,
		"SELECT "+consultationCols+" FROM consultations c WHERE c.id = $1", id))
}

func (r *repoPG) CountForPatient(ctx context.Context, patientID int64) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM consultations WHERE patient_id = $1", patientID).Scan(&n)
	return n, err
}

func (r *repoPG) Create(ctx context.Context, c *Consultation) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultations (appointment_id, patient_id, doctor_id, visit_number,
			chief_complaints, comorbidities, imaging_findings, diagnosis,
			treatment_plan, follow_up_notes, vitals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		c.AppointmentID, c.PatientID, c.DoctorID, c.VisitNumber,
		c.ChiefComplaints, c.Comorbidities, c.ImagingFindings, c.Diagnosis,
		c.TreatmentPlan, c.FollowUpNotes, c.Vitals,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) Update(ctx context.Context, c *Consultation) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE consultations SET
			chief_complaints = $2, comorbidities = $3, imaging_findings = $4,
			diagnosis = $5, treatment_plan = $6, follow_up_notes = $7, vitals = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.ChiefComplaints, c.Comorbidities, c.ImagingFindings,
		c.Diagnosis, c.TreatmentPlan, c.FollowUpNotes, c.Vitals,
	).Scan(&c.UpdatedAt)
}

func (r *repoPG) History(ctx context.Context, patientID, excludeAppointmentID int64, limit int) ([]*HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT c.id, c.appointment_id, a.appointment_date, c.visit_number,
			c.chief_complaints, c.diagnosis, c.treatment_plan
		FROM consultations c
		JOIN appointments a ON c.appointment_id = a.id
		WHERE c.patient_id = $1 AND c.appointment_id <> $2
		ORDER BY a.appointment_date DESC, c.id DESC
		LIMIT $3`,
		patientID, excludeAppointmentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(
			&h.ConsultationID, &h.AppointmentID, &h.AppointmentDate, &h.VisitNumber,
			&h.Notes.ChiefComplaints, &h.Notes.Diagnosis, &h.Notes.TreatmentPlan,
		); err != nil {
			return nil, err
		}
		h.VisitLabel = VisitLabelFor(h.VisitNumber)
		out = append(out, &h)
	}
	return out, rows.Err()
}

func (r *repoPG) FullHistory(ctx context.Context, patientID int64) ([]*FullHistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+`, a.appointment_date, a.appointment_time::text, d.name
		FROM consultations c
		JOIN appointments a ON c.appointment_id = a.id
		JOIN doctors d ON c.doctor_id = d.id
		WHERE c.patient_id = $1
		ORDER BY a.appointment_date DESC, c.id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FullHistoryEntry
	for rows.Next() {
		var e FullHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.AppointmentID, &e.PatientID, &e.DoctorID, &e.VisitNumber,
			&e.ChiefComplaints, &e.Comorbidities, &e.ImagingFindings, &e.Diagnosis,
			&e.TreatmentPlan, &e.FollowUpNotes, &e.Vitals, &e.CreatedAt, &e.UpdatedAt,
			&e.AppointmentDate, &e.AppointmentTime, &e.DoctorName,
		); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *repoPG) Recent(ctx context.Context, doctorID *int64, limit int) ([]*RecentEntry, error) {
	query := `
		SELECT ` + consultationCols + `, pt.name, d.name, a.appointment_date, a.appointment_time::text
		FROM consultations c
		JOIN patients pt ON c.patient_id = pt.id
		JOIN doctors d ON c.doctor_id = d.id
		JOIN appointments a ON c.appointment_id = a.id`
	args := []interface{}{limit}
	if doctorID != nil {
		query += " WHERE c.doctor_id = $2"
		args = append(args, *doctorID)
	}
	query += " ORDER BY c.updated_at DESC LIMIT $1"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RecentEntry
	for rows.Next() {
		var e RecentEntry
		if err := rows.Scan(
			&e.ID, &e.AppointmentID, &e.PatientID, &e.DoctorID, &e.VisitNumber,
			&e.ChiefComplaints, &e.Comorbidities, &e.ImagingFindings, &e.Diagnosis,
			&e.TreatmentPlan, &e.FollowUpNotes, &e.Vitals, &e.CreatedAt, &e.UpdatedAt,
			&e.PatientName, &e.DoctorName, &e.AppointmentDate, &e.AppointmentTime,
		); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *repoPG) PrintData(ctx context.Context, consultationID int64, doctorID *int64) (*PrintData, error) {
	query := `
		SELECT ` + consultationCols + `, a.appointment_date, a.appointment_time::text,
			pt.name, pt.age, pt.gender, pt.mobile, d.name, d.specialization
		FROM consultations c
		JOIN appointments a ON c.appointment_id = a.id
		JOIN patients pt ON c.patient_id = pt.id
		JOIN doctors d ON c.doctor_id = d.id
		WHERE c.id = $1`
	args := []interface{}{consultationID}
	if doctorID != nil {
		query += " AND c.doctor_id = $2"
		args = append(args, *doctorID)
	}

	var (
		pd PrintData
		c  Consultation
	)
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.AppointmentID, &c.PatientID, &c.DoctorID, &c.VisitNumber,
		&c.ChiefComplaints, &c.Comorbidities, &c.ImagingFindings, &c.Diagnosis,
		&c.TreatmentPlan, &c.FollowUpNotes, &c.Vitals, &c.CreatedAt, &c.UpdatedAt,
		&pd.AppointmentDate, &pd.AppointmentTime,
		&pd.PatientName, &pd.PatientAge, &pd.PatientGender, &pd.PatientMobile,
		&pd.DoctorName, &pd.Specialization,
	)
	if err != nil {
		return nil, err
	}
	pd.Consultation = &c
	return &pd, nil
}

// PrintDataByPatient targets the patient's most recent appointment; the
// consultation joins in when notes exist for it.
func (r *repoPG) PrintDataByPatient(ctx context.Context, patientID int64, doctorID *int64) (*PrintData, error) {
	query := `
		SELECT a.appointment_date, a.appointment_time::text,
			pt.name, pt.age, pt.gender, pt.mobile, d.name, d.specialization,
			c.id, c.appointment_id, c.patient_id, c.doctor_id, c.visit_number,
			c.chief_complaints, c.comorbidities, c.imaging_findings, c.diagnosis,
			c.treatment_plan, c.follow_up_notes, c.vitals, c.created_at, c.updated_at
		FROM appointments a
		JOIN patients pt ON a.patient_id = pt.id
		JOIN doctors d ON a.doctor_id = d.id
		LEFT JOIN consultations c ON c.appointment_id = a.id
		WHERE a.patient_id = $1`
	args := []interface{}{patientID}
	if doctorID != nil {
		query += " AND a.doctor_id = $2"
		args = append(args, *doctorID)
	}
	query += " ORDER BY a.appointment_date DESC, a.appointment_time DESC LIMIT 1"

	var (
		pd          PrintData
		id          *int64
		apptID      *int64
		ptID        *int64
		docID       *int64
		visitNumber *int
		c           Consultation
		createdAt   *time.Time
		updatedAt   *time.Time
	)
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&pd.AppointmentDate, &pd.AppointmentTime,
		&pd.PatientName, &pd.PatientAge, &pd.PatientGender, &pd.PatientMobile,
		&pd.DoctorName, &pd.Specialization,
		&id, &apptID, &ptID, &docID, &visitNumber,
		&c.ChiefComplaints, &c.Comorbidities, &c.ImagingFindings, &c.Diagnosis,
		&c.TreatmentPlan, &c.FollowUpNotes, &c.Vitals, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id != nil {
		c.ID = *id
		c.AppointmentID = *apptID
		c.PatientID = *ptID
		c.DoctorID = *docID
		c.VisitNumber = *visitNumber
		c.CreatedAt = *createdAt
		c.UpdatedAt = *updatedAt
		pd.Consultation = &c
	}
	return &pd, nil
}

func (r *repoPG) CompleteAppointment(ctx context.Context, appointmentID int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"UPDATE appointments SET status = 'Completed' WHERE id = $1", appointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) TouchPatientLastVisit(ctx context.Context, patientID int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		"UPDATE patients SET last_visit = CURRENT_DATE WHERE id = $1", patientID)
	return err
}

func (r *repoPG) ListTemplates(ctx context.Context, doctorID int64, fieldType string) ([]*Template, error) {
	query := "SELECT id, doctor_id, field_type, name, content, created_at FROM templates WHERE doctor_id = $1"
	args := []interface{}{doctorID}
	if fieldType != "" {
		query += " AND field_type = $2"
		args = append(args, fieldType)
	}
	query += " ORDER BY id DESC"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.DoctorID, &t.FieldType, &t.Name, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *repoPG) CreateTemplate(ctx context.Context, t *Template) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO templates (doctor_id, field_type, name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		t.DoctorID, t.FieldType, t.Name, t.Content,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *repoPG) DeleteTemplate(ctx context.Context, doctorID, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"DELETE FROM templates WHERE id = $1 AND doctor_id = $2", id, doctorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
