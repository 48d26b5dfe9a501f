package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/domain/clinic"
	"github.com/clinicdesk/clinicdesk/internal/domain/media"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// PatientDirectory is the slice of the patient service the recorder needs.
type PatientDirectory interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

// PaymentRecorder creates the payment for a billable completed visit.
// billing.Service satisfies it.
type PaymentRecorder interface {
	EnsurePayment(ctx context.Context, appointmentID int64, createdBy *int64) error
}

// MediaLister fetches files attached to a consultation. media.Service
// satisfies it.
type MediaLister interface {
	FilesForConsultation(ctx context.Context, consultationID int64) ([]*media.File, error)
}

// ClinicProvider supplies the settings row for printable output.
// clinic.Service satisfies it.
type ClinicProvider interface {
	Current(ctx context.Context) (*clinic.Settings, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	payments PaymentRecorder
	files    MediaLister
	clinics  ClinicProvider
}

func NewService(repo Repository, patients PatientDirectory, payments PaymentRecorder, files MediaLister, clinics ClinicProvider) *Service {
	return &Service{repo: repo, patients: patients, payments: payments, files: files, clinics: clinics}
}

// scopeDoctorID returns the doctor filter for the caller: doctors are
// pinned to their own profile, admin and staff see everything.
func scopeDoctorID(actor *auth.Actor) (*int64, error) {
	if actor == nil || !actor.IsDoctor() {
		return nil, nil
	}
	if actor.DoctorID == nil {
		return nil, apperr.NotFoundf("doctor profile not found")
	}
	return actor.DoctorID, nil
}

// requireDoctorID is for doctor-owned resources like templates.
func requireDoctorID(actor *auth.Actor) (int64, error) {
	if actor == nil || actor.DoctorID == nil {
		return 0, apperr.NotFoundf("doctor profile not found")
	}
	return *actor.DoctorID, nil
}

func (s *Service) GetForAppointment(ctx context.Context, appointmentID int64, actor *auth.Actor) (*Workspace, error) {
	doctorID, err := scopeDoctorID(actor)
	if err != nil {
		return nil, err
	}
	appt, err := s.repo.Appointment(ctx, appointmentID, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("appointment not found")
		}
		return nil, err
	}

	pt, err := s.patients.Get(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	history, err := s.repo.History(ctx, appt.PatientID, appointmentID, historyLimit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*HistoryEntry{}
	}

	mediaFiles := []*media.File{}
	if existing != nil {
		mediaFiles, err = s.files.FilesForConsultation(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if mediaFiles == nil {
			mediaFiles = []*media.File{}
		}
	}

	return &Workspace{
		Patient:     pt,
		Appointment: appt,
		History:     history,
		Existing:    existing,
		MediaFiles:  mediaFiles,
	}, nil
}

type SaveInput struct {
	ChiefComplaints *string         `json:"chiefComplaints"`
	Comorbidities   *string         `json:"comorbidities"`
	ImagingFindings *string         `json:"imagingFindings"`
	Diagnosis       *string         `json:"diagnosis"`
	TreatmentPlan   *string         `json:"treatmentPlan"`
	FollowUpNotes   *string         `json:"followUpNotes"`
	Vitals          json.RawMessage `json:"vitals"`
}

// Save upserts the consultation for an appointment. The visit number is
// fixed when the consultation is first created; later saves update the
// notes in place. The appointment is marked Completed and, for billable
// visits, a payment is recorded best-effort.
func (s *Service) Save(ctx context.Context, appointmentID int64, in SaveInput, actor *auth.Actor) (*Consultation, []string, error) {
	doctorID, err := scopeDoctorID(actor)
	if err != nil {
		return nil, nil, err
	}
	appt, err := s.repo.Appointment(ctx, appointmentID, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("appointment not found")
		}
		return nil, nil, err
	}

	cons, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	if cons == nil {
		visits, err := s.repo.CountForPatient(ctx, appt.PatientID)
		if err != nil {
			return nil, nil, err
		}
		cons = &Consultation{
			AppointmentID: appointmentID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			VisitNumber:   visits + 1,
		}
		applyNotes(cons, in)
		if err := s.repo.Create(ctx, cons); err != nil {
			return nil, nil, err
		}
	} else {
		applyNotes(cons, in)
		if err := s.repo.Update(ctx, cons); err != nil {
			return nil, nil, err
		}
	}

	if err := s.repo.CompleteAppointment(ctx, appointmentID); err != nil {
		return nil, nil, err
	}
	metrics.ConsultationSaved()

	var warnings []string
	if appt.Fee > 0 {
		var createdBy *int64
		if actor != nil {
			createdBy = &actor.UserID
		}
		if err := s.payments.EnsurePayment(ctx, appointmentID, createdBy); err != nil {
			warnings = append(warnings, fmt.Sprintf("payment could not be recorded: %v", err))
		}
	}

	if err := s.repo.TouchPatientLastVisit(ctx, appt.PatientID); err != nil {
		return nil, nil, err
	}
	return cons, warnings, nil
}

func applyNotes(c *Consultation, in SaveInput) {
	c.ChiefComplaints = in.ChiefComplaints
	c.Comorbidities = in.Comorbidities
	c.ImagingFindings = in.ImagingFindings
	c.Diagnosis = in.Diagnosis
	c.TreatmentPlan = in.TreatmentPlan
	c.FollowUpNotes = in.FollowUpNotes
	c.Vitals = in.Vitals
}

func (s *Service) Recent(ctx context.Context, actor *auth.Actor) ([]*RecentEntry, error) {
	doctorID, err := scopeDoctorID(actor)
	if err != nil {
		return nil, err
	}
	return s.repo.Recent(ctx, doctorID, recentLimit)
}

func (s *Service) FullHistory(ctx context.Context, patientID int64) (*patient.Patient, []*FullHistoryEntry, error) {
	pt, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.repo.FullHistory(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	return pt, history, nil
}

func (s *Service) PrintData(ctx context.Context, consultationID int64, actor *auth.Actor) (*PrintData, *clinic.Settings, error) {
	doctorID, err := scopeDoctorID(actor)
	if err != nil {
		return nil, nil, err
	}
	pd, err := s.repo.PrintData(ctx, consultationID, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("consultation not found")
		}
		return nil, nil, err
	}
	settings, err := s.clinics.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pd, settings, nil
}

// PrintDataByPatient prints from the patient's latest appointment even
// when no consultation has been saved for it yet.
func (s *Service) PrintDataByPatient(ctx context.Context, patientID int64, actor *auth.Actor) (*PrintData, *clinic.Settings, error) {
	doctorID, err := scopeDoctorID(actor)
	if err != nil {
		return nil, nil, err
	}
	pd, err := s.repo.PrintDataByPatient(ctx, patientID, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("no appointments found for this patient")
		}
		return nil, nil, err
	}
	settings, err := s.clinics.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pd, settings, nil
}

func (s *Service) Templates(ctx context.Context, actor *auth.Actor, fieldType string) ([]*Template, error) {
	doctorID, err := requireDoctorID(actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTemplates(ctx, doctorID, fieldType)
}

type TemplateInput struct {
	FieldType string `json:"fieldType"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}

func (s *Service) AddTemplate(ctx context.Context, actor *auth.Actor, in TemplateInput) (*Template, error) {
	doctorID, err := requireDoctorID(actor)
	if err != nil {
		return nil, err
	}
	if in.FieldType == "" || in.Name == "" || in.Content == "" {
		return nil, apperr.Validationf("field type, name and content are required")
	}
	t := &Template{DoctorID: doctorID, FieldType: in.FieldType, Name: in.Name, Content: in.Content}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, actor *auth.Actor, id int64) error {
	doctorID, err := requireDoctorID(actor)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTemplate(ctx, doctorID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("template not found")
		}
		return err
	}
	return nil
}
