package consultation

import "context"

// Repository persists consultations and templates. Methods taking a
// doctorID pointer scope the query to that doctor when non-nil.
type Repository interface {
	Appointment(ctx context.Context, appointmentID int64, doctorID *int64) (*ApptInfo, error)
	GetByAppointment(ctx context.Context, appointmentID int64) (*Consultation, error)
	Get(ctx context.Context, id int64) (*Consultation, error)
	CountForPatient(ctx context.Context, patientID int64) (int, error)
	Create(ctx context.Context, c *Consultation) error
	Update(ctx context.Context, c *Consultation) error

	History(ctx context.Context, patientID, excludeAppointmentID int64, limit int) ([]*HistoryEntry, error)
	FullHistory(ctx context.Context, patientID int64) ([]*FullHistoryEntry, error)
	Recent(ctx context.Context, doctorID *int64, limit int) ([]*RecentEntry, error)
	PrintData(ctx context.Context, consultationID int64, doctorID *int64) (*PrintData, error)
	PrintDataByPatient(ctx context.Context, patientID int64, doctorID *int64) (*PrintData, error)

	CompleteAppointment(ctx context.Context, appointmentID int64) error
	TouchPatientLastVisit(ctx context.Context, patientID int64) error

	ListTemplates(ctx context.Context, doctorID int64, fieldType string) ([]*Template, error)
	CreateTemplate(ctx context.Context, t *Template) error
	DeleteTemplate(ctx context.Context, doctorID, id int64) error
}
