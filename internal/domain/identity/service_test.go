package identity

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	users   map[int64]*User
	doctors map[int64]*DoctorLink
	staff   map[int64]*StaffLink
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:   make(map[int64]*User),
		doctors: make(map[int64]*DoctorLink),
		staff:   make(map[int64]*StaffLink),
	}
}

func (m *mockRepo) addUser(email, password, role, status string) *User {
	m.nextID++
	hash, _ := auth.HashPassword(password)
	u := &User{ID: m.nextID, Email: email, PasswordHash: hash, Name: "Test User",
		Role: role, Status: status, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u
}

func (m *mockRepo) GetByEmailAndRole(_ context.Context, email, role string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Role == role {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockRepo) SetName(_ context.Context, id int64, name string) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Name = name
	return nil
}

func (m *mockRepo) SetPassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockRepo) DoctorLink(_ context.Context, userID int64) (*DoctorLink, error) {
	return m.doctors[userID], nil
}

func (m *mockRepo) StaffLink(_ context.Context, userID int64) (*StaffLink, error) {
	return m.staff[userID], nil
}

// -- Tests --

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", time.Hour)
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	result, err := svc.Login(context.Background(), LoginInput{
		Email: "admin@clinic.test", Password: "secret123", Role: auth.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a signed token")
	}
	if result.User == nil || result.User.Role != auth.RoleAdmin {
		t.Error("expected admin profile in result")
	}

	claims, err := testIssuer().Parse(result.Token)
	if err != nil {
		t.Fatalf("token must parse: %v", err)
	}
	if claims.UserID != result.User.ID || claims.Role != auth.RoleAdmin {
		t.Error("claims must match the account")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	_, err := svc.Login(context.Background(), LoginInput{
		Email: "admin@clinic.test", Password: "wrong", Role: auth.RoleAdmin,
	})
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestLogin_RoleIsPartOfCredential(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	// Right email and password, wrong role.
	_, err := svc.Login(context.Background(), LoginInput{
		Email: "admin@clinic.test", Password: "secret123", Role: auth.RoleDoctor,
	})
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newMockRepo()
	repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Inactive")
	svc := NewService(repo, testIssuer())

	_, err := svc.Login(context.Background(), LoginInput{
		Email: "admin@clinic.test", Password: "secret123", Role: auth.RoleAdmin,
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestLogin_DoctorEnrichment(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("doc@clinic.test", "secret123", auth.RoleDoctor, "Active")
	spec := "Cardiology"
	repo.doctors[u.ID] = &DoctorLink{ID: 7, Specialization: &spec}
	svc := NewService(repo, testIssuer())

	result, err := svc.Login(context.Background(), LoginInput{
		Email: "doc@clinic.test", Password: "secret123", Role: auth.RoleDoctor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.DoctorID == nil || *result.User.DoctorID != 7 {
		t.Error("expected doctorId in profile")
	}
	if result.User.Specialization == nil || *result.User.Specialization != "Cardiology" {
		t.Error("expected specialization in profile")
	}

	claims, err := testIssuer().Parse(result.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.DoctorID == nil || *claims.DoctorID != 7 {
		t.Error("expected doctor_id claim")
	}
}

func TestLogin_StaffEnrichment(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("staff@clinic.test", "secret123", auth.RoleStaff, "Active")
	repo.staff[u.ID] = &StaffLink{ID: 3}
	svc := NewService(repo, testIssuer())

	result, err := svc.Login(context.Background(), LoginInput{
		Email: "staff@clinic.test", Password: "secret123", Role: auth.RoleStaff,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.StaffID == nil || *result.User.StaffID != 3 {
		t.Error("expected staffId in profile")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo(), testIssuer())

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestMe(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("doc@clinic.test", "secret123", auth.RoleDoctor, "Active")
	repo.doctors[u.ID] = &DoctorLink{ID: 7}
	svc := NewService(repo, testIssuer())

	p, err := svc.Me(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != u.ID || p.DoctorID == nil {
		t.Error("expected enriched profile")
	}

	if _, err := svc.Me(context.Background(), 99); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	updated, err := svc.UpdateProfile(context.Background(), u.ID, "  New Name  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("expected trimmed name, got %q", updated.Name)
	}

	if _, err := svc.UpdateProfile(context.Background(), u.ID, "   "); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	if err := svc.ChangePassword(context.Background(), u.ID, "secret123", "newsecret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !auth.CheckPassword(repo.users[u.ID].PasswordHash, "newsecret") {
		t.Error("expected new password to verify")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	err := svc.ChangePassword(context.Background(), u.ID, "wrong", "newsecret")
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestChangePassword_TooShort(t *testing.T) {
	repo := newMockRepo()
	u := repo.addUser("admin@clinic.test", "secret123", auth.RoleAdmin, "Active")
	svc := NewService(repo, testIssuer())

	err := svc.ChangePassword(context.Background(), u.ID, "secret123", "abc")
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
