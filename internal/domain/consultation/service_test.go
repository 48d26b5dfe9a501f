package consultation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/domain/clinic"
	"github.com/clinicdesk/clinicdesk/internal/domain/media"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type mockRepo struct {
	appointments map[int64]*ApptInfo
	byAppt       map[int64]*Consultation
	templates    map[int64]*Template
	nextConsID   int64
	nextTmplID   int64
	lastVisits   map[int64]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments: map[int64]*ApptInfo{},
		byAppt:       map[int64]*Consultation{},
		templates:    map[int64]*Template{},
		lastVisits:   map[int64]bool{},
	}
}

func (m *mockRepo) addAppt(id, patientID, doctorID int64, day int, fee float64) *ApptInfo {
	a := &ApptInfo{
		ID:              id,
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:00:00",
		Status:          "Waiting",
		Fee:             fee,
	}
	m.appointments[id] = a
	return a
}

func (m *mockRepo) Appointment(_ context.Context, appointmentID int64, doctorID *int64) (*ApptInfo, error) {
	a, ok := m.appointments[appointmentID]
	if !ok || (doctorID != nil && a.DoctorID != *doctorID) {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockRepo) GetByAppointment(_ context.Context, appointmentID int64) (*Consultation, error) {
	c, ok := m.byAppt[appointmentID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Consultation, error) {
	for _, c := range m.byAppt {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) CountForPatient(_ context.Context, patientID int64) (int, error) {
	n := 0
	for _, c := range m.byAppt {
		if c.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) Create(_ context.Context, c *Consultation) error {
	m.nextConsID++
	c.ID = m.nextConsID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byAppt[c.AppointmentID] = c
	return nil
}

func (m *mockRepo) Update(_ context.Context, c *Consultation) error {
	if _, ok := m.byAppt[c.AppointmentID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	m.byAppt[c.AppointmentID] = c
	return nil
}

func (m *mockRepo) History(_ context.Context, patientID, excludeAppointmentID int64, limit int) ([]*HistoryEntry, error) {
	var out []*HistoryEntry
	for _, c := range m.byAppt {
		if c.PatientID != patientID || c.AppointmentID == excludeAppointmentID {
			continue
		}
		a := m.appointments[c.AppointmentID]
		out = append(out, &HistoryEntry{
			ConsultationID:  c.ID,
			AppointmentID:   c.AppointmentID,
			AppointmentDate: a.AppointmentDate,
			VisitNumber:     c.VisitNumber,
			VisitLabel:      VisitLabelFor(c.VisitNumber),
			Notes:           HistoryNotes{ChiefComplaints: c.ChiefComplaints, Diagnosis: c.Diagnosis, TreatmentPlan: c.TreatmentPlan},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepo) FullHistory(_ context.Context, patientID int64) ([]*FullHistoryEntry, error) {
	var out []*FullHistoryEntry
	for _, c := range m.byAppt {
		if c.PatientID != patientID {
			continue
		}
		a := m.appointments[c.AppointmentID]
		out = append(out, &FullHistoryEntry{Consultation: *c, AppointmentDate: a.AppointmentDate, AppointmentTime: a.AppointmentTime, DoctorName: "Dr Rao"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	return out, nil
}

func (m *mockRepo) Recent(_ context.Context, doctorID *int64, limit int) ([]*RecentEntry, error) {
	var out []*RecentEntry
	for _, c := range m.byAppt {
		if doctorID != nil && c.DoctorID != *doctorID {
			continue
		}
		a := m.appointments[c.AppointmentID]
		out = append(out, &RecentEntry{Consultation: *c, PatientName: "Patient", DoctorName: "Dr Rao", AppointmentDate: a.AppointmentDate, AppointmentTime: a.AppointmentTime})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepo) PrintData(_ context.Context, consultationID int64, doctorID *int64) (*PrintData, error) {
	for _, c := range m.byAppt {
		if c.ID != consultationID {
			continue
		}
		if doctorID != nil && c.DoctorID != *doctorID {
			return nil, pgx.ErrNoRows
		}
		a := m.appointments[c.AppointmentID]
		return &PrintData{Consultation: c, AppointmentDate: a.AppointmentDate, AppointmentTime: a.AppointmentTime, PatientName: "Asha Verma", DoctorName: "Dr Rao"}, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) PrintDataByPatient(_ context.Context, patientID int64, doctorID *int64) (*PrintData, error) {
	var latest *ApptInfo
	for _, a := range m.appointments {
		if a.PatientID != patientID {
			continue
		}
		if doctorID != nil && a.DoctorID != *doctorID {
			continue
		}
		if latest == nil || a.AppointmentDate.After(latest.AppointmentDate) {
			latest = a
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	pd := &PrintData{AppointmentDate: latest.AppointmentDate, AppointmentTime: latest.AppointmentTime, PatientName: "Asha Verma", DoctorName: "Dr Rao"}
	if c, ok := m.byAppt[latest.ID]; ok {
		pd.Consultation = c
	}
	return pd, nil
}

func (m *mockRepo) CompleteAppointment(_ context.Context, appointmentID int64) error {
	a, ok := m.appointments[appointmentID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = "Completed"
	return nil
}

func (m *mockRepo) TouchPatientLastVisit(_ context.Context, patientID int64) error {
	m.lastVisits[patientID] = true
	return nil
}

func (m *mockRepo) ListTemplates(_ context.Context, doctorID int64, fieldType string) ([]*Template, error) {
	var out []*Template
	for _, t := range m.templates {
		if t.DoctorID != doctorID {
			continue
		}
		if fieldType != "" && t.FieldType != fieldType {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRepo) CreateTemplate(_ context.Context, t *Template) error {
	m.nextTmplID++
	t.ID = m.nextTmplID
	t.CreatedAt = time.Now()
	m.templates[t.ID] = t
	return nil
}

func (m *mockRepo) DeleteTemplate(_ context.Context, doctorID, id int64) error {
	t, ok := m.templates[id]
	if !ok || t.DoctorID != doctorID {
		return pgx.ErrNoRows
	}
	delete(m.templates, id)
	return nil
}

type mockPatients struct {
	patients map[int64]*patient.Patient
}

func (m *mockPatients) Get(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFoundf("patient not found")
	}
	return p, nil
}

type mockPayments struct {
	ensured map[int64]bool
	fail    bool
}

func (m *mockPayments) EnsurePayment(_ context.Context, appointmentID int64, _ *int64) error {
	if m.fail {
		return errors.New("payments table unavailable")
	}
	m.ensured[appointmentID] = true
	return nil
}

type mockFiles struct {
	files map[int64][]*media.File
}

func (m *mockFiles) FilesForConsultation(_ context.Context, consultationID int64) ([]*media.File, error) {
	return m.files[consultationID], nil
}

type mockClinics struct{}

func (mockClinics) Current(_ context.Context) (*clinic.Settings, error) {
	return &clinic.Settings{ID: 1, ClinicName: "City Clinic"}, nil
}

func newTestService() (*Service, *mockRepo, *mockPatients, *mockPayments, *mockFiles) {
	repo := newMockRepo()
	patients := &mockPatients{patients: map[int64]*patient.Patient{
		2: {ID: 2, Name: "Asha Verma", Mobile: "9876543210", Gender: "Other"},
	}}
	payments := &mockPayments{ensured: map[int64]bool{}}
	files := &mockFiles{files: map[int64][]*media.File{}}
	return NewService(repo, patients, payments, files, mockClinics{}), repo, patients, payments, files
}

func doctorActor(doctorID int64) *auth.Actor {
	return &auth.Actor{UserID: 10, Role: auth.RoleDoctor, DoctorID: &doctorID}
}

func adminActor() *auth.Actor {
	return &auth.Actor{UserID: 1, Role: auth.RoleAdmin}
}

func str(s string) *string { return &s }

func TestGetForAppointment(t *testing.T) {
	svc, repo, _, _, files := newTestService()
	repo.addAppt(1, 2, 3, 5, 500)

	ws, err := svc.GetForAppointment(context.Background(), 1, doctorActor(3))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ws.Patient == nil || ws.Patient.Name != "Asha Verma" {
		t.Fatalf("patient = %+v", ws.Patient)
	}
	if ws.Existing != nil {
		t.Fatal("expected no existing consultation")
	}
	if len(ws.History) != 0 || len(ws.MediaFiles) != 0 {
		t.Fatalf("expected empty history and media, got %d/%d", len(ws.History), len(ws.MediaFiles))
	}

	// Save notes, then the workspace carries them plus attached media.
	cons, _, err := svc.Save(context.Background(), 1, SaveInput{Diagnosis: str("Migraine")}, doctorActor(3))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	files.files[cons.ID] = []*media.File{{ID: 1, PatientID: 2, FileName: "scan.png"}}

	ws, err = svc.GetForAppointment(context.Background(), 1, doctorActor(3))
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if ws.Existing == nil || ws.Existing.Diagnosis == nil || *ws.Existing.Diagnosis != "Migraine" {
		t.Fatalf("existing = %+v", ws.Existing)
	}
	if len(ws.MediaFiles) != 1 {
		t.Fatalf("media files = %d, want 1", len(ws.MediaFiles))
	}
}

func TestGetForAppointment_DoctorScoped(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 500)

	if _, err := svc.GetForAppointment(context.Background(), 1, doctorActor(99)); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for other doctor, got %v", err)
	}
	if _, err := svc.GetForAppointment(context.Background(), 1, adminActor()); err != nil {
		t.Fatalf("admin should see any appointment: %v", err)
	}
}

func TestGetForAppointment_HistoryExcludesOwnAndCaps(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	for i := int64(1); i <= 12; i++ {
		repo.addAppt(i, 2, 3, int(i), 0)
		if _, _, err := svc.Save(context.Background(), i, SaveInput{Diagnosis: str("D")}, doctorActor(3)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	ws, err := svc.GetForAppointment(context.Background(), 12, doctorActor(3))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(ws.History) != historyLimit {
		t.Fatalf("history = %d entries, want %d", len(ws.History), historyLimit)
	}
	for _, h := range ws.History {
		if h.AppointmentID == 12 {
			t.Fatal("history contains the current appointment's consultation")
		}
	}
	if ws.History[0].VisitLabel != "Follow-up" {
		t.Errorf("visit label = %q", ws.History[0].VisitLabel)
	}
}

func TestSave_CreatesWithVisitNumber(t *testing.T) {
	svc, repo, _, payments, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 500)

	cons, warnings, err := svc.Save(context.Background(), 1, SaveInput{
		ChiefComplaints: str("Headache"),
		Diagnosis:       str("Migraine"),
	}, doctorActor(3))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if cons.VisitNumber != 1 {
		t.Errorf("visit number = %d, want 1", cons.VisitNumber)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if repo.appointments[1].Status != "Completed" {
		t.Errorf("appointment status = %s, want Completed", repo.appointments[1].Status)
	}
	if !payments.ensured[1] {
		t.Error("payment was not recorded for billable visit")
	}
	if !repo.lastVisits[2] {
		t.Error("patient last visit was not touched")
	}
}

func TestSave_UpsertKeepsVisitNumber(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)
	repo.addAppt(2, 2, 3, 6, 0)

	if _, _, err := svc.Save(context.Background(), 1, SaveInput{Diagnosis: str("A")}, doctorActor(3)); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, _, err := svc.Save(context.Background(), 2, SaveInput{Diagnosis: str("B")}, doctorActor(3))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if second.VisitNumber != 2 {
		t.Fatalf("second visit number = %d, want 2", second.VisitNumber)
	}

	// Re-saving the second consultation keeps its visit number.
	updated, _, err := svc.Save(context.Background(), 2, SaveInput{Diagnosis: str("B2")}, doctorActor(3))
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if updated.VisitNumber != 2 {
		t.Errorf("visit number after update = %d, want 2", updated.VisitNumber)
	}
	if updated.Diagnosis == nil || *updated.Diagnosis != "B2" {
		t.Errorf("diagnosis = %v", updated.Diagnosis)
	}
}

func TestSave_VisitNumberSpansDoctors(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)
	repo.addAppt(2, 2, 7, 6, 0)

	if _, _, err := svc.Save(context.Background(), 1, SaveInput{}, doctorActor(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	cons, _, err := svc.Save(context.Background(), 2, SaveInput{}, doctorActor(7))
	if err != nil {
		t.Fatalf("save with second doctor: %v", err)
	}
	if cons.VisitNumber != 2 {
		t.Errorf("visit number = %d, want 2 across doctors", cons.VisitNumber)
	}
}

func TestSave_PaymentFailureWarns(t *testing.T) {
	svc, repo, _, payments, _ := newTestService()
	payments.fail = true
	repo.addAppt(1, 2, 3, 5, 500)

	cons, warnings, err := svc.Save(context.Background(), 1, SaveInput{}, doctorActor(3))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if cons == nil {
		t.Fatal("consultation should persist despite payment failure")
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one", warnings)
	}
	if repo.appointments[1].Status != "Completed" {
		t.Error("appointment should still complete")
	}
}

func TestSave_ZeroFeeSkipsPayment(t *testing.T) {
	svc, repo, _, payments, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)

	if _, _, err := svc.Save(context.Background(), 1, SaveInput{}, doctorActor(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(payments.ensured) != 0 {
		t.Error("no payment expected for a free visit")
	}
}

func TestSave_AppointmentNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if _, _, err := svc.Save(context.Background(), 404, SaveInput{}, adminActor()); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecent_DoctorScoped(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)
	repo.addAppt(2, 2, 7, 6, 0)
	if _, _, err := svc.Save(context.Background(), 1, SaveInput{}, doctorActor(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := svc.Save(context.Background(), 2, SaveInput{}, doctorActor(7)); err != nil {
		t.Fatalf("save: %v", err)
	}

	own, err := svc.Recent(context.Background(), doctorActor(3))
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("doctor sees %d consultations, want 1", len(own))
	}

	all, err := svc.Recent(context.Background(), adminActor())
	if err != nil {
		t.Fatalf("recent admin: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin sees %d consultations, want 2", len(all))
	}
}

func TestPrintData(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)
	cons, _, err := svc.Save(context.Background(), 1, SaveInput{Diagnosis: str("Migraine")}, doctorActor(3))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pd, settings, err := svc.PrintData(context.Background(), cons.ID, doctorActor(3))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if pd.Consultation == nil || pd.PatientName != "Asha Verma" {
		t.Fatalf("print data = %+v", pd)
	}
	if settings == nil || settings.ClinicName != "City Clinic" {
		t.Fatalf("clinic = %+v", settings)
	}

	if _, _, err := svc.PrintData(context.Background(), cons.ID, doctorActor(99)); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for other doctor, got %v", err)
	}
}

func TestPrintDataByPatient_NoConsultationYet(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.addAppt(1, 2, 3, 5, 0)

	pd, _, err := svc.PrintDataByPatient(context.Background(), 2, doctorActor(3))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if pd.Consultation != nil {
		t.Error("expected nil consultation for unsaved appointment")
	}

	if _, _, err := svc.PrintDataByPatient(context.Background(), 999, doctorActor(3)); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTemplates(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	actor := doctorActor(3)

	if _, err := svc.AddTemplate(context.Background(), actor, TemplateInput{Name: "Migraine plan"}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	t1, err := svc.AddTemplate(context.Background(), actor, TemplateInput{FieldType: "diagnosis", Name: "Migraine", Content: "Migraine without aura"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddTemplate(context.Background(), actor, TemplateInput{FieldType: "treatmentPlan", Name: "Hydration", Content: "Fluids and rest"}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	all, err := svc.Templates(context.Background(), actor, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("templates = %d, want 2", len(all))
	}

	filtered, err := svc.Templates(context.Background(), actor, "diagnosis")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Migraine" {
		t.Fatalf("filtered = %+v", filtered)
	}

	other := doctorActor(99)
	if err := svc.DeleteTemplate(context.Background(), other, t1.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for other doctor's template, got %v", err)
	}
	if err := svc.DeleteTemplate(context.Background(), actor, t1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
