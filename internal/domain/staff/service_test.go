package staff

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// -- Mock Repository --

type mockAccount struct {
	email  string
	status string
	hash   string
}

type mockRepo struct {
	staff      map[int64]*Staff
	users      map[int64]*mockAccount
	patients   map[int64][]*PatientSummary
	nextID     int64
	nextUserID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		staff:    make(map[int64]*Staff),
		users:    make(map[int64]*mockAccount),
		patients: make(map[int64][]*PatientSummary),
	}
}

func (m *mockRepo) CreateWithAccount(_ context.Context, s *Staff, passwordHash string) error {
	m.nextUserID++
	userID := m.nextUserID
	m.users[userID] = &mockAccount{email: *s.Email, status: s.Status, hash: passwordHash}
	s.UserID = &userID

	m.nextID++
	s.ID = m.nextID
	s.Username = s.Email
	s.CreatedAt = time.Now()
	m.staff[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID int64) (*Staff, error) {
	for _, s := range m.staff {
		if s.UserID != nil && *s.UserID == userID {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Update(_ context.Context, s *Staff, passwordHash string) error {
	if _, ok := m.staff[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.staff[s.ID] = s
	if s.UserID != nil {
		if u, ok := m.users[*s.UserID]; ok {
			u.email = *s.Email
			u.status = s.Status
			if passwordHash != "" {
				u.hash = passwordHash
			}
		}
	}
	return nil
}

func (m *mockRepo) DeleteWithAccount(_ context.Context, id int64) error {
	s, ok := m.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.staff, id)
	if s.UserID != nil {
		delete(m.users, *s.UserID)
	}
	return nil
}

func (m *mockRepo) SetStatus(_ context.Context, id int64, status string) error {
	s, ok := m.staff[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Status = status
	if s.UserID != nil {
		if u, ok := m.users[*s.UserID]; ok {
			u.status = status
		}
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, _ string, _, _ int) ([]*Staff, int, error) {
	var items []*Staff
	for _, s := range m.staff {
		items = append(items, s)
	}
	return items, len(items), nil
}

func (m *mockRepo) Patients(_ context.Context, staffUserID int64, _ string, _, _ int) ([]*PatientSummary, int, error) {
	list := m.patients[staffUserID]
	return list, len(list), nil
}

// -- Tests --

func validAdd() AddInput {
	return AddInput{
		Name:     "Meera Pillai",
		Mobile:   "9876543210",
		Email:    "meera@clinic.test",
		Password: "secret123",
	}
}

func TestAddStaff(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ID == 0 || st.UserID == nil {
		t.Fatal("expected staff with linked account")
	}
	if st.Username == nil || *st.Username != "meera@clinic.test" {
		t.Error("expected username to mirror the email")
	}

	acct := repo.users[*st.UserID]
	if acct == nil {
		t.Fatal("expected user account row")
	}
	if !auth.CheckPassword(acct.hash, "secret123") {
		t.Error("stored hash must verify against the original password")
	}
}

func TestAddStaff_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Add(context.Background(), validAdd()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(context.Background(), validAdd()); !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAddStaff_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validAdd()
	in.Email = ""
	if _, err := svc.Add(context.Background(), in); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateStaff(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	in := validAdd()
	in.Name = "Meera P"
	in.Email = "meera.p@clinic.test"
	in.Password = ""
	updated, err := svc.Update(context.Background(), st.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Meera P" {
		t.Errorf("expected name update, got %s", updated.Name)
	}
	if repo.users[*st.UserID].email != "meera.p@clinic.test" {
		t.Error("expected account email to follow the profile")
	}

	if _, err := svc.Update(context.Background(), 99, validAdd()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateStaff_BadStatus(t *testing.T) {
	svc := NewService(newMockRepo())

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	in := validAdd()
	in.Status = "Retired"
	if _, err := svc.Update(context.Background(), st.ID, in); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteStaff_RemovesAccount(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}
	userID := *st.UserID

	if err := svc.Delete(context.Background(), st.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.users[userID]; ok {
		t.Error("expected linked user account to be removed")
	}
}

func TestToggleStaffStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ToggleStatus(context.Background(), st.ID, "Inactive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.users[*st.UserID].status != "Inactive" {
		t.Error("expected account status to follow the profile")
	}
}

func TestStaffPatientsOf(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}
	repo.patients[*st.UserID] = []*PatientSummary{
		{ID: 1, Name: "Asha", Mobile: "9876500000", TotalAppointments: 2, DoctorsSeen: 1},
	}

	got, patients, total, err := svc.PatientsOf(context.Background(), st.ID, "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != st.ID || total != 1 || len(patients) != 1 {
		t.Errorf("unexpected roster: staff=%d total=%d", got.ID, total)
	}

	if _, _, _, err := svc.PatientsOf(context.Background(), 99, "", 10, 0); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
