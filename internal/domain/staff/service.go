package staff

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
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Status   string `json:"status"`
}

func (s *Service) Add(ctx context.Context, in AddInput) (*Staff, error) {
	if in.Name == "" || in.Mobile == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validationf("name, mobile, email and password are required")
	}

	taken, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflictf("email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = "Active"
	}
	if err := validStatus(status); err != nil {
		return nil, err
	}

	st := &Staff{
		Name:   in.Name,
		Mobile: &in.Mobile,
		Email:  &in.Email,
		Status: status,
	}
	if err := s.repo.CreateWithAccount(ctx, st, hash); err != nil {
		return nil, err
	}
	st.Username = st.Email
	return st, nil
}

func (s *Service) Update(ctx context.Context, id int64, in AddInput) (*Staff, error) {
	if in.Name == "" || in.Mobile == "" || in.Email == "" {
		return nil, apperr.Validationf("name, mobile and email are required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("staff not found")
		}
		return nil, err
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
	existing.Username = &in.Email
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
			return apperr.NotFoundf("staff not found")
		}
		return err
	}
	return nil
}

// ToggleStatus flips the staff member between Active and Inactive and
// keeps the login account in step.
func (s *Service) ToggleStatus(ctx context.Context, id int64, status string) error {
	if err := validStatus(status); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("staff not found")
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Staff, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("staff not found")
		}
		return nil, err
	}
	return st, nil
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

// PatientsOf lists the patients whose appointments this staff member
// booked.
func (s *Service) PatientsOf(ctx context.Context, staffID int64, search string, limit, offset int) (*Staff, []*PatientSummary, int, error) {
	st, err := s.Get(ctx, staffID)
	if err != nil {
		return nil, nil, 0, err
	}
	if st.UserID == nil {
		return nil, nil, 0, apperr.NotFoundf("staff user account not found")
	}
	patients, total, err := s.repo.Patients(ctx, *st.UserID, search, limit, offset)
	if err != nil {
		return nil, nil, 0, err
	}
	return st, patients, total, nil
}

func validStatus(status string) error {
	if status != "Active" && status != "Inactive" {
		return apperr.Validationf("status must be either Active or Inactive")
	}
	return nil
}
