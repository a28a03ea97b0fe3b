package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.AdmissionStatus == "" {
		p.AdmissionStatus = StatusAdmitted
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListAdmitted(_ context.Context) ([]*Patient, error) {
	var result []*Patient
	for _, p := range m.patients {
		if p.Admitted() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) SetLocation(_ context.Context, id uuid.UUID, sectorID, bedID uuid.UUID, bedCode string) error {
	p, ok := m.patients[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	p.SectorID = &sectorID
	p.BedID = &bedID
	p.BedCode = bedCode
	return nil
}

func (m *mockRepo) Discharge(_ context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	now := time.Now()
	p.AdmissionStatus = StatusDischarged
	p.SectorID = nil
	p.BedID = nil
	p.BedCode = ""
	p.DischargedAt = &now
	return nil
}

// -- Tests --

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	bedID := uuid.New()

	p := &Patient{Name: "Maria Silva", BedID: &bedID, BedCode: "101A"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AdmissionStatus != StatusAdmitted {
		t.Errorf("expected default status admitted, got %s", p.AdmissionStatus)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreatePatient(context.Background(), &Patient{}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreatePatient(context.Background(), &Patient{Name: "Maria Silva"}); err == nil {
		t.Error("expected error for admitted patient without a bed")
	}
	if err := svc.CreatePatient(context.Background(), &Patient{
		Name: "Maria Silva", AdmissionStatus: "unknown",
	}); err == nil {
		t.Error("expected error for invalid admission status")
	}
}

func TestNameMatcher(t *testing.T) {
	patients := []*Patient{
		{ID: uuid.New(), Name: "Maria Silva"},
		{ID: uuid.New(), Name: "João Souza"},
	}
	m := NewNameMatcher(patients)

	if p, ok := m.Match("MARIA SILVA"); !ok || p.Name != "Maria Silva" {
		t.Error("expected case-insensitive match for Maria Silva")
	}
	if p, ok := m.Match("  joão souza "); !ok || p.Name != "João Souza" {
		t.Error("expected trimmed match for João Souza")
	}
	if _, ok := m.Match("Pedro Costa"); ok {
		t.Error("expected no match for unknown name")
	}
}

func TestNameMatcher_DuplicateNamesFirstWins(t *testing.T) {
	first := &Patient{ID: uuid.New(), Name: "Maria Silva"}
	second := &Patient{ID: uuid.New(), Name: "maria silva"}
	m := NewNameMatcher([]*Patient{first, second})

	p, ok := m.Match("Maria Silva")
	if !ok || p.ID != first.ID {
		t.Error("expected first indexed patient to win on duplicate names")
	}
}
