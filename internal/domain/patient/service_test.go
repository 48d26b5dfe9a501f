package patient

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	patients     map[int64]*Patient
	nextID       int64
	appointments map[int64]bool
	history      map[int64][]*HistoryEntry
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:     make(map[int64]*Patient),
		appointments: make(map[int64]bool),
		history:      make(map[int64][]*HistoryEntry),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	p.RegisteredDate = time.Now()
	p.CreatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockRepo) GetByMobile(_ context.Context, mobile string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Mobile == mobile {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.patients[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) HasAppointments(_ context.Context, id int64) (bool, error) {
	return m.appointments[id], nil
}

func (m *mockRepo) RecordVisit(_ context.Context, id int64, visitDate time.Time) error {
	p, ok := m.patients[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.TotalVisits++
	v := visitDate
	p.LastVisit = &v
	return nil
}

func (m *mockRepo) SetLastVisit(_ context.Context, id int64, visitDate time.Time) error {
	p, ok := m.patients[id]
	if !ok {
		return pgx.ErrNoRows
	}
	v := visitDate
	p.LastVisit = &v
	return nil
}

func (m *mockRepo) History(_ context.Context, patientID int64) ([]*HistoryEntry, error) {
	return m.history[patientID], nil
}

// -- Tests --

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9876543210", "9876543210", false},
		{"98765-43210", "9876543210", false},
		{"+91 98765 43210", "", true}, // 12 digits
		{"(987) 654-3210", "9876543210", false},
		{"12345", "", true},
		{"", "", true},
		{"98765432101", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeMobile(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeMobile(%q): expected error, got %q", tt.in, got)
			} else if !apperr.IsValidation(err) {
				t.Errorf("NormalizeMobile(%q): expected validation error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeMobile(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeMobile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAdd(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Add(context.Background(), AddInput{Name: "Asha Rao", Mobile: "987-654-3210"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if p.Mobile != "9876543210" {
		t.Errorf("expected normalized mobile, got %s", p.Mobile)
	}
	if p.Gender != "Male" {
		t.Errorf("expected default gender Male, got %s", p.Gender)
	}
}

func TestAdd_DuplicateMobile(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Add(context.Background(), AddInput{Name: "First", Mobile: "9876543210"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Add(context.Background(), AddInput{Name: "Second", Mobile: "9876543210"})
	if !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAdd_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Add(context.Background(), AddInput{Mobile: "9876543210"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	_, err = svc.Add(context.Background(), AddInput{Name: "No Mobile"})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error for missing mobile, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Add(context.Background(), AddInput{Name: "Asha Rao", Mobile: "9876543210"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	age := 42
	updated, err := svc.Update(context.Background(), p.ID, AddInput{
		Name: "Asha R", Mobile: "9876543210", Age: &age, Gender: "Female",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Asha R" {
		t.Errorf("expected name update, got %s", updated.Name)
	}
	if updated.Age == nil || *updated.Age != 42 {
		t.Error("expected age update")
	}
	if updated.Gender != "Female" {
		t.Errorf("expected gender Female, got %s", updated.Gender)
	}
}

func TestUpdate_MobileTakenByOther(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Add(context.Background(), AddInput{Name: "First", Mobile: "1111111111"}); err != nil {
		t.Fatal(err)
	}
	second, err := svc.Add(context.Background(), AddInput{Name: "Second", Mobile: "2222222222"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(context.Background(), second.ID, AddInput{Name: "Second", Mobile: "1111111111"})
	if !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}

	// Keeping own mobile is fine.
	if _, err := svc.Update(context.Background(), second.ID, AddInput{Name: "Second B", Mobile: "2222222222"}); err != nil {
		t.Errorf("unexpected error updating with own mobile: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), 999, AddInput{Name: "Ghost", Mobile: "9876543210"})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDelete_BlockedByAppointments(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Add(context.Background(), AddInput{Name: "Booked", Mobile: "9876543210"})
	if err != nil {
		t.Fatal(err)
	}
	repo.appointments[p.ID] = true

	err = svc.Delete(context.Background(), p.ID)
	if !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Add(context.Background(), AddInput{Name: "Gone", Mobile: "9876543210"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestSearchByMobile(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Add(context.Background(), AddInput{Name: "Findable", Mobile: "9876543210"}); err != nil {
		t.Fatal(err)
	}

	p, found, err := svc.SearchByMobile(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || p == nil {
		t.Fatal("expected patient to be found")
	}

	p, found, err = svc.SearchByMobile(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || p != nil {
		t.Error("expected no match")
	}

	if _, _, err := svc.SearchByMobile(context.Background(), ""); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for empty mobile, got %v", err)
	}
}

func TestResolveOrCreate_ExistingWinsUnchanged(t *testing.T) {
	svc := NewService(newMockRepo())

	orig, err := svc.Add(context.Background(), AddInput{Name: "Original Name", Mobile: "9876543210", Gender: "Female"})
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := svc.ResolveOrCreate(context.Background(), AddInput{Name: "Different Name", Mobile: "98765 43210"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ID != orig.ID {
		t.Errorf("expected existing patient %d, got %d", orig.ID, resolved.ID)
	}
	if resolved.Name != "Original Name" {
		t.Errorf("existing record must win unchanged, got name %s", resolved.Name)
	}
}

func TestResolveOrCreate_CreatesNew(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.ResolveOrCreate(context.Background(), AddInput{Name: "Walk In", Mobile: "9876543210"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected new patient to be created")
	}
	if p.Gender != "Male" {
		t.Errorf("expected default gender, got %s", p.Gender)
	}

	// Name required when the mobile is unknown.
	if _, err := svc.ResolveOrCreate(context.Background(), AddInput{Mobile: "1231231234"}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRecordVisit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Add(context.Background(), AddInput{Name: "Visitor", Mobile: "9876543210"})
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if err := svc.RecordVisit(context.Background(), p.ID, day); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RecordVisit(context.Background(), p.ID, day.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := repo.patients[p.ID]
	if got.TotalVisits != 2 {
		t.Errorf("expected 2 visits, got %d", got.TotalVisits)
	}
	if got.LastVisit == nil || !got.LastVisit.Equal(day.AddDate(0, 0, 7)) {
		t.Error("expected last visit to track the latest booking")
	}
}

func TestGetWithHistory(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Add(context.Background(), AddInput{Name: "Historied", Mobile: "9876543210"})
	if err != nil {
		t.Fatal(err)
	}
	repo.history[p.ID] = []*HistoryEntry{{ConsultationID: 1, VisitNumber: 1, DoctorName: "Dr. Rao"}}

	got, history, err := svc.GetWithHistory(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected patient %d, got %d", p.ID, got.ID)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}

	if _, _, err := svc.GetWithHistory(context.Background(), 999); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
