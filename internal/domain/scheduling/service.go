package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/platform/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// unique_violation on the live-slot index
const pgUniqueViolation = "23505"

// PatientDirectory is the slice of the patient service booking needs.
type PatientDirectory interface {
	ResolveOrCreate(ctx context.Context, in patient.AddInput) (*patient.Patient, error)
	Get(ctx context.Context, id int64) (*patient.Patient, error)
	RecordVisit(ctx context.Context, id int64, visitDate time.Time) error
}

// Biller records the at-booking payment and invoice for a charged
// appointment.
type Biller interface {
	BillBooking(ctx context.Context, appointmentID, patientID, doctorID int64, date time.Time, fee float64, createdBy *int64) error
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	biller   Biller
}

func NewService(repo Repository, patients PatientDirectory, biller Biller) *Service {
	return &Service{repo: repo, patients: patients, biller: biller}
}

type BookInput struct {
	PatientID     *int64   `json:"patientId"`
	PatientName   string   `json:"patientName"`
	PatientMobile string   `json:"patientMobile"`
	PatientAge    *int     `json:"patientAge"`
	PatientGender string   `json:"patientGender"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	DoctorID      int64    `json:"doctorId"`
	Reason        *string  `json:"reason"`
	Fee           *float64 `json:"fee"`
}

// Book takes the slot and runs the full booking flow: resolve the
// patient, create the appointment in Waiting, bump the patient's
// visit counters and bill the visit when a fee is charged. Billing
// failures do not unwind the booking; they come back as warnings.
func (s *Service) Book(ctx context.Context, in BookInput, createdBy *int64) (*BookingResult, error) {
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Time) == "" || in.DoctorID == 0 {
		return nil, apperr.Validationf("date, time and doctor are required")
	}
	if in.PatientID == nil && (strings.TrimSpace(in.PatientName) == "" || strings.TrimSpace(in.PatientMobile) == "") {
		return nil, apperr.Validationf("patient name and mobile are required for new patients")
	}

	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	slot, err := NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}

	var pt *patient.Patient
	if in.PatientID != nil {
		pt, err = s.patients.Get(ctx, *in.PatientID)
	} else {
		pt, err = s.patients.ResolveOrCreate(ctx, patient.AddInput{
			Name:      in.PatientName,
			Mobile:    in.PatientMobile,
			Age:       in.PatientAge,
			Gender:    in.PatientGender,
			CreatedBy: createdBy,
		})
	}
	if err != nil {
		return nil, err
	}

	var fee float64
	if in.Fee != nil {
		fee = *in.Fee
	}

	a := &Appointment{
		PatientID:       pt.ID,
		DoctorID:        in.DoctorID,
		AppointmentDate: date,
		AppointmentTime: slot,
		Reason:          in.Reason,
		Fee:             fee,
		Status:          StatusWaiting,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflictf("this time slot is already booked for this doctor")
		}
		return nil, err
	}
	metrics.AppointmentBooked()

	if err := s.patients.RecordVisit(ctx, pt.ID, date); err != nil {
		return nil, err
	}

	var warnings []string
	if fee > 0 {
		if err := s.biller.BillBooking(ctx, a.ID, pt.ID, a.DoctorID, date, fee, createdBy); err != nil {
			warnings = append(warnings, fmt.Sprintf("payment could not be recorded: %v", err))
		}
	}

	detail, err := s.repo.GetDetail(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	fresh, err := s.patients.Get(ctx, pt.ID)
	if err != nil {
		return nil, err
	}

	return &BookingResult{Appointment: detail, Patient: fresh, Warnings: warnings}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status == "" {
		return apperr.Validationf("status is required")
	}
	if !ValidStatus(status) {
		return apperr.Validationf("invalid status")
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("appointment not found")
		}
		return err
	}
	metrics.AppointmentStatusChanged(status)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	dt, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("appointment not found")
		}
		return nil, err
	}
	return dt, nil
}

func (s *Service) AdminList(ctx context.Context, f ListFilter) ([]*Detail, int, error) {
	return s.repo.ListAdmin(ctx, f)
}

func (s *Service) StaffList(ctx context.Context, f ListFilter) ([]*Detail, int, error) {
	return s.repo.ListStaff(ctx, f)
}

func (s *Service) DoctorList(ctx context.Context, doctorID int64, f ListFilter) ([]*Detail, int, error) {
	return s.repo.ListForDoctor(ctx, doctorID, f)
}

func (s *Service) DoctorToday(ctx context.Context, doctorID int64, f ListFilter) (*TodayList, error) {
	return s.repo.TodayForDoctor(ctx, doctorID, f)
}
