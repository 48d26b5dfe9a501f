package doctor

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type AddInput struct {
	Name            string   `json:"name"`
	Mobile          string   `json:"mobile"`
	Email           string   `json:"email"`
	Specialization  string   `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	ConsultationFee *float64 `json:"consultation_fee"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Status          string   `json:"status"`
}

func (s *Service) Add(ctx context.Context, in AddInput) (*Doctor, error) {
	if in.Name == "" || in.Mobile == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, apperr.Validationf("name, mobile, email, username and password are required")
	}

	taken, err := s.repo.ExistsUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflictf("username or email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	spec := in.Specialization
	if spec == "" {
		spec = DefaultSpecialization
	}
	fee := 0.0
	if in.ConsultationFee != nil {
		fee = *in.ConsultationFee
	}
	status := in.Status
	if status == "" {
		status = "Active"
	}
	if err := validStatus(status); err != nil {
		return nil, err
	}

	d := &Doctor{
		Name:            in.Name,
		Mobile:          &in.Mobile,
		Email:           &in.Email,
		Specialization:  &spec,
		Qualification:   in.Qualification,
		ConsultationFee: fee,
		Username:        &in.Username,
		Status:          status,
	}
	if err := s.repo.CreateWithAccount(ctx, d, hash); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, id int64, in AddInput) (*Doctor, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("doctor not found")
		}
		return nil, err
	}

	if in.Name == "" || in.Mobile == "" || in.Email == "" {
		return nil, apperr.Validationf("name, mobile and email are required")
	}
	status := in.Status
	if status == "" {
		status = existing.Status
	}
	if err := validStatus(status); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Mobile = &in.Mobile
	existing.Email = &in.Email
	if in.Specialization != "" {
		existing.Specialization = &in.Specialization
	}
	if in.Qualification != nil {
		existing.Qualification = in.Qualification
	}
	if in.ConsultationFee != nil {
		existing.ConsultationFee = *in.ConsultationFee
	}
	if in.Username != "" {
		existing.Username = &in.Username
	}
	existing.Status = status

	var hash string
	if in.Password != "" {
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, existing, hash); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteWithAccount(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("doctor not found")
		}
		return err
	}
	return nil
}

// ToggleStatus flips the doctor between Active and Inactive, keeping
// the login account in the same state so inactive doctors cannot sign
// in.
func (s *Service) ToggleStatus(ctx context.Context, id int64, status string) error {
	if err := validStatus(status); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("doctor not found")
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("doctor not found")
		}
		return nil, err
	}
	return d, nil
}

// GetByUser resolves the doctor profile behind a login account.
func (s *Service) GetByUser(ctx context.Context, userID int64) (*Doctor, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("doctor profile not found")
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

// Available lists active doctors for the booking dropdown.
func (s *Service) Available(ctx context.Context) ([]*Ref, error) {
	return s.repo.Available(ctx)
}

func (s *Service) Specializations(ctx context.Context) ([]string, error) {
	return s.repo.Specializations(ctx)
}

// PatientsOf lists the patients a doctor has seen, with visit counts
// and the latest diagnosis.
func (s *Service) PatientsOf(ctx context.Context, doctorID int64, search string, limit, offset int) (*Doctor, []*PatientSummary, int, error) {
	d, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, nil, 0, err
	}
	patients, total, err := s.repo.Patients(ctx, doctorID, search, limit, offset)
	if err != nil {
		return nil, nil, 0, err
	}
	return d, patients, total, nil
}

func validStatus(status string) error {
	if status != "Active" && status != "Inactive" {
		return apperr.Validationf("status must be either Active or Inactive")
	}
	return nil
}
