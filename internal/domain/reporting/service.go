package reporting

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AdminDashboard(ctx context.Context) (*AdminStats, error) {
	return s.repo.AdminStats(ctx)
}

func (s *Service) StaffDashboard(ctx context.Context) (*StaffStats, error) {
	return s.repo.StaffStats(ctx)
}

func (s *Service) DoctorDashboard(ctx context.Context, actor *auth.Actor) (*DoctorStats, error) {
	if actor == nil || actor.DoctorID == nil {
		return nil, apperr.NotFoundf("doctor profile not found")
	}
	return s.repo.DoctorStats(ctx, *actor.DoctorID)
}
