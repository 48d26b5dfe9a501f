package media

import "context"

type Repository interface {
	Create(ctx context.Context, f *File) error
	Get(ctx context.Context, id int64) (*File, error)
	GetForConsultation(ctx context.Context, consultationID, mediaID int64) (*File, error)
	ListForConsultation(ctx context.Context, consultationID int64) ([]*File, error)
	Delete(ctx context.Context, id int64) error

	Consultation(ctx context.Context, consultationID int64) (*ConsultationRef, error)
	// DoctorTreatedPatient reports whether the doctor has at least one
	// consultation with the patient; the access check for reports.
	DoctorTreatedPatient(ctx context.Context, doctorID, patientID int64) (bool, error)

	ListReports(ctx context.Context, patientID, doctorID *int64, limit, offset int) ([]*ReportEntry, int, error)
}
