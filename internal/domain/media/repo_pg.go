package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const fileCols = "cm.id, cm.consultation_id, cm.patient_id, cm.blob_id, cm.file_name, cm.file_type, cm.file_url, cm.description, cm.uploaded_by, cm.created_at"

func scanFile(row pgx.Row) (*File, error) {
	var f File
	err := row.Scan(&f.ID, &f.ConsultationID, &f.PatientID, &f.BlobID, &f.FileName,
		&f.FileType, &f.FileURL, &f.Description, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repoPG) Create(ctx context.Context, f *File) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultation_media (consultation_id, patient_id, blob_id, file_name, file_type, file_url, description, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		f.ConsultationID, f.PatientID, f.BlobID, f.FileName, f.FileType,
		f.FileURL, f.Description, f.UploadedBy,
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *repoPG) Get(ctx context.Context, id int64) (*File, error) {
	return scanFile(r.conn(ctx).QueryRow(ctx,
		"SELECT "+fileCols+" FROM consultation_media cm WHERE cm.id = $1", id))
}

func (r *repoPG) GetForConsultation(ctx context.Context, consultationID, mediaID int64) (*File, error) {
	return scanFile(r.conn(ctx).QueryRow(ctx,
		"SELECT "+fileCols+" FROM consultation_media cm WHERE cm.id = $1 AND cm.consultation_id = $2",
		mediaID, consultationID))
}

func (r *repoPG) ListForConsultation(ctx context.Context, consultationID int64) ([]*File, error) {
	rows, err := r.conn(ctx).Query(ctx,
		"SELECT "+fileCols+" FROM consultation_media cm WHERE cm.consultation_id = $1 ORDER BY cm.created_at DESC, cm.id DESC",
		consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultation_media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Consultation(ctx context.Context, consultationID int64) (*ConsultationRef, error) {
	var ref ConsultationRef
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, patient_id, doctor_id FROM consultations WHERE id = $1`, consultationID,
	).Scan(&ref.ID, &ref.PatientID, &ref.DoctorID)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *repoPG) DoctorTreatedPatient(ctx context.Context, doctorID, patientID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consultations c
			JOIN appointments a ON c.appointment_id = a.id
			WHERE a.patient_id = $1 AND c.doctor_id = $2
		)`, patientID, doctorID).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListReports(ctx context.Context, patientID, doctorID *int64, limit, offset int) ([]*ReportEntry, int, error) {
	where := " WHERE 1=1"
	var args []interface{}

	if patientID != nil {
		where += fmt.Sprintf(" AND cm.patient_id = $%d", len(args)+1)
		args = append(args, *patientID)
	}
	if doctorID != nil {
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM consultations c
			JOIN appointments a ON c.appointment_id = a.id
			WHERE a.patient_id = cm.patient_id AND c.doctor_id = $%d
		)`, len(args)+1)
		args = append(args, *doctorID)
	}

	from := " FROM consultation_media cm JOIN patients p ON cm.patient_id = p.id"

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + fileCols + ", p.name, p.mobile" + from + where +
		fmt.Sprintf(" ORDER BY cm.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*ReportEntry
	for rows.Next() {
		var re ReportEntry
		err := rows.Scan(&re.ID, &re.ConsultationID, &re.PatientID, &re.BlobID, &re.FileName,
			&re.FileType, &re.FileURL, &re.Description, &re.UploadedBy, &re.CreatedAt,
			&re.PatientName, &re.PatientMobile)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, &re)
	}
	return out, total, rows.Err()
}
