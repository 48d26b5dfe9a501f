package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

const minPasswordLen = 6

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
}

func NewService(repo Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login authenticates an account for a specific role. The role is part
// of the credential: the same email may exist once per role and a
// doctor login never matches an admin account.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, apperr.Validationf("email, password and role are required")
	}
	if !auth.ValidRole(in.Role) {
		return nil, apperr.Validationf("unknown role")
	}

	u, err := s.repo.GetByEmailAndRole(ctx, in.Email, in.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Authf("invalid credentials")
		}
		return nil, err
	}
	if u.Status != "Active" {
		return nil, apperr.Forbiddenf("account is inactive, contact admin")
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Authf("invalid credentials")
	}

	profile, err := s.profileFor(ctx, u)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.Role, u.Name, profile.DoctorID, profile.StaffID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: profile}, nil
}

// Me returns the role-enriched profile for the signed-in account.
func (s *Service) Me(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	return s.profileFor(ctx, u)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if err := s.repo.SetName(ctx, userID, name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validationf("current password and new password are required")
	}
	if len(next) < minPasswordLen {
		return apperr.Validationf("new password must be at least 6 characters long")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("user not found")
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return apperr.Authf("current password is incorrect")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, userID, hash)
}

func (s *Service) profileFor(ctx context.Context, u *User) (*Profile, error) {
	p := &Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}

	switch u.Role {
	case auth.RoleDoctor:
		link, err := s.repo.DoctorLink(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if link != nil {
			p.DoctorID = &link.ID
			p.Specialization = link.Specialization
			p.Qualification = link.Qualification
			p.Mobile = link.Mobile
		}
	case auth.RoleStaff:
		link, err := s.repo.StaffLink(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if link != nil {
			p.StaffID = &link.ID
			p.Mobile = link.Mobile
		}
	}
	return p, nil
}
