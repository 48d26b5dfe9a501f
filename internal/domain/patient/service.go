package patient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddInput carries the fields accepted at registration.
type AddInput struct {
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile"`
	Age        *int    `json:"age"`
	Gender     string  `json:"gender"`
	BloodGroup *string `json:"blood_group"`
	Address    *string `json:"address"`
	CreatedBy  *int64  `json:"-"`
}

func (s *Service) Add(ctx context.Context, in AddInput) (*Patient, error) {
	if strings.TrimSpace(in.Name) == "" || in.Mobile == "" {
		return nil, apperr.Validationf("name and mobile are required")
	}
	mobile, err := NormalizeMobile(in.Mobile)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByMobile(ctx, mobile); err == nil {
		return nil, apperr.Conflictf("patient with this mobile number already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	gender := in.Gender
	if gender == "" {
		gender = DefaultGender
	}

	p := &Patient{
		Name:       strings.TrimSpace(in.Name),
		Mobile:     mobile,
		Age:        in.Age,
		Gender:     gender,
		BloodGroup: in.BloodGroup,
		Address:    in.Address,
		CreatedBy:  in.CreatedBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in AddInput) (*Patient, error) {
	if strings.TrimSpace(in.Name) == "" || in.Mobile == "" {
		return nil, apperr.Validationf("name and mobile are required")
	}
	mobile, err := NormalizeMobile(in.Mobile)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("patient not found")
		}
		return nil, err
	}

	if other, err := s.repo.GetByMobile(ctx, mobile); err == nil && other.ID != id {
		return nil, apperr.Conflictf("another patient with this mobile number already exists")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	gender := in.Gender
	if gender == "" {
		gender = DefaultGender
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Mobile = mobile
	p.Age = in.Age
	p.Gender = gender
	p.BloodGroup = in.BloodGroup
	p.Address = in.Address
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete refuses to remove a patient that still has appointments; the
// booking history stays intact until those are cancelled and cleaned up.
func (s *Service) Delete(ctx context.Context, id int64) error {
	has, err := s.repo.HasAppointments(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return apperr.Conflictf("cannot delete patient with active/past appointments")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("patient not found")
		}
		return err
	}
	return nil
}

// SearchByMobile reports found=false rather than an error when no
// patient matches, since booking flows probe for existence.
func (s *Service) SearchByMobile(ctx context.Context, mobile string) (*Patient, bool, error) {
	if mobile == "" {
		return nil, false, apperr.Validationf("mobile number is required")
	}
	p, err := s.repo.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) GetWithHistory(ctx context.Context, id int64) (*Patient, []*HistoryEntry, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("patient not found")
		}
		return nil, nil, err
	}
	history, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, history, nil
}

// ResolveOrCreate finds a patient by mobile or registers one on the fly.
// Existing patients win unchanged: booking details never overwrite the
// registry.
func (s *Service) ResolveOrCreate(ctx context.Context, in AddInput) (*Patient, error) {
	mobile, err := NormalizeMobile(in.Mobile)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByMobile(ctx, mobile)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validationf("patient name and mobile are required for new patients")
	}

	gender := in.Gender
	if gender == "" {
		gender = DefaultGender
	}
	p = &Patient{
		Name:      strings.TrimSpace(in.Name),
		Mobile:    mobile,
		Age:       in.Age,
		Gender:    gender,
		CreatedBy: in.CreatedBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("patient not found")
		}
		return nil, err
	}
	return p, nil
}

// RecordVisit is called by the scheduler when a booking lands.
func (s *Service) RecordVisit(ctx context.Context, id int64, visitDate time.Time) error {
	return s.repo.RecordVisit(ctx, id, visitDate)
}

// MarkSeen stamps the last visit date, used when a consultation is saved.
func (s *Service) MarkSeen(ctx context.Context, id int64, visitDate time.Time) error {
	return s.repo.SetLastVisit(ctx, id, visitDate)
}
