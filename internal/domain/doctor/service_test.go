package doctor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// -- Mock Repository --

type mockAccount struct {
	id     int64
	status string
	hash   string
}

type mockRepo struct {
	doctors    map[int64]*Doctor
	users      map[int64]*mockAccount
	patients   map[int64][]*PatientSummary
	nextID     int64
	nextUserID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:  make(map[int64]*Doctor),
		users:    make(map[int64]*mockAccount),
		patients: make(map[int64][]*PatientSummary),
	}
}

func (m *mockRepo) CreateWithAccount(_ context.Context, d *Doctor, passwordHash string) error {
	m.nextUserID++
	userID := m.nextUserID
	m.users[userID] = &mockAccount{id: userID, status: d.Status, hash: passwordHash}
	d.UserID = &userID

	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID int64) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID != nil && *d.UserID == userID {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) ExistsUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, d := range m.doctors {
		if d.Username != nil && *d.Username == username {
			return true, nil
		}
		if d.Email != nil && *d.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor, passwordHash string) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.doctors[d.ID] = d
	if d.UserID != nil {
		if u, ok := m.users[*d.UserID]; ok {
			u.status = d.Status
			if passwordHash != "" {
				u.hash = passwordHash
			}
		}
	}
	return nil
}

func (m *mockRepo) DeleteWithAccount(_ context.Context, id int64) error {
	d, ok := m.doctors[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.doctors, id)
	if d.UserID != nil {
		delete(m.users, *d.UserID)
	}
	return nil
}

func (m *mockRepo) SetStatus(_ context.Context, id int64, status string) error {
	d, ok := m.doctors[id]
	if !ok {
		return pgx.ErrNoRows
	}
	d.Status = status
	if d.UserID != nil {
		if u, ok := m.users[*d.UserID]; ok {
			u.status = status
		}
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		if search == "" || strings.Contains(d.Name, search) {
			items = append(items, d)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) Available(_ context.Context) ([]*Ref, error) {
	var items []*Ref
	for _, d := range m.doctors {
		if d.Status == "Active" {
			items = append(items, &Ref{ID: d.ID, Name: d.Name, Specialization: d.Specialization, ConsultationFee: d.ConsultationFee})
		}
	}
	return items, nil
}

func (m *mockRepo) Specializations(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var items []string
	for _, d := range m.doctors {
		if d.Specialization != nil && !seen[*d.Specialization] {
			seen[*d.Specialization] = true
			items = append(items, *d.Specialization)
		}
	}
	return items, nil
}

func (m *mockRepo) Patients(_ context.Context, doctorID int64, _ string, _, _ int) ([]*PatientSummary, int, error) {
	list := m.patients[doctorID]
	return list, len(list), nil
}

// -- Tests --

func validAdd() AddInput {
	return AddInput{
		Name:     "Dr. Asha Rao",
		Mobile:   "9876543210",
		Email:    "asha@clinic.test",
		Username: "asha.rao",
		Password: "secret123",
	}
}

func TestAddDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if d.UserID == nil {
		t.Fatal("expected linked user account")
	}
	if d.Specialization == nil || *d.Specialization != DefaultSpecialization {
		t.Error("expected default specialization")
	}
	if d.Status != "Active" {
		t.Errorf("expected Active status, got %s", d.Status)
	}

	acct := repo.users[*d.UserID]
	if acct == nil {
		t.Fatal("expected user account row")
	}
	if acct.hash == "secret123" {
		t.Error("password must be stored hashed")
	}
	if !auth.CheckPassword(acct.hash, "secret123") {
		t.Error("stored hash must verify against the original password")
	}
}

func TestAddDoctor_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validAdd()
	in.Password = ""
	if _, err := svc.Add(context.Background(), in); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAddDoctor_DuplicateUsername(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Add(context.Background(), validAdd()); err != nil {
		t.Fatal(err)
	}
	in := validAdd()
	in.Email = "other@clinic.test"
	if _, err := svc.Add(context.Background(), in); !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUpdateDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	fee := 500.0
	in := validAdd()
	in.Name = "Dr. Asha R"
	in.ConsultationFee = &fee
	in.Password = ""
	updated, err := svc.Update(context.Background(), d.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Dr. Asha R" {
		t.Errorf("expected name update, got %s", updated.Name)
	}
	if updated.ConsultationFee != 500 {
		t.Errorf("expected fee 500, got %v", updated.ConsultationFee)
	}
}

func TestUpdateDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Update(context.Background(), 99, validAdd()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateDoctor_RehashesPassword(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}
	before := repo.users[*d.UserID].hash

	in := validAdd()
	in.Password = "newsecret"
	if _, err := svc.Update(context.Background(), d.ID, in); err != nil {
		t.Fatal(err)
	}
	after := repo.users[*d.UserID].hash
	if after == before {
		t.Error("expected password hash to change")
	}
	if !auth.CheckPassword(after, "newsecret") {
		t.Error("new hash must verify against the new password")
	}
}

func TestDeleteDoctor_RemovesAccount(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}
	userID := *d.UserID

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.users[userID]; ok {
		t.Error("expected linked user account to be removed")
	}
	if err := svc.Delete(context.Background(), d.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestToggleStatus_SyncsAccount(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ToggleStatus(context.Background(), d.ID, "Inactive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.doctors[d.ID].Status != "Inactive" {
		t.Error("expected doctor status Inactive")
	}
	if repo.users[*d.UserID].status != "Inactive" {
		t.Error("expected user account status to follow the doctor")
	}

	if err := svc.ToggleStatus(context.Background(), d.ID, "Suspended"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for bad status, got %v", err)
	}
}

func TestAvailable_ActiveOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if _, err := svc.Add(context.Background(), validAdd()); err != nil {
		t.Fatal(err)
	}
	in := validAdd()
	in.Email = "binu@clinic.test"
	in.Username = "binu"
	second, err := svc.Add(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ToggleStatus(context.Background(), second.ID, "Inactive"); err != nil {
		t.Fatal(err)
	}

	available, err := svc.Available(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(available) != 1 {
		t.Errorf("expected 1 available doctor, got %d", len(available))
	}
}

func TestGetByUser(t *testing.T) {
	svc := NewService(newMockRepo())

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetByUser(context.Background(), *d.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("expected doctor %d, got %d", d.ID, got.ID)
	}

	if _, err := svc.GetByUser(context.Background(), 999); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPatientsOf(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d, err := svc.Add(context.Background(), validAdd())
	if err != nil {
		t.Fatal(err)
	}
	repo.patients[d.ID] = []*PatientSummary{{ID: 1, Name: "Asha", Mobile: "9876543210", TotalAppointments: 3}}

	doc, patients, total, err := svc.PatientsOf(context.Background(), d.ID, "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != d.ID {
		t.Error("expected doctor in response")
	}
	if total != 1 || len(patients) != 1 {
		t.Errorf("expected 1 patient, got %d", len(patients))
	}

	if _, _, _, err := svc.PatientsOf(context.Background(), 999, "", 10, 0); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
