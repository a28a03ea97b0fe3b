package bed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	beds map[uuid.UUID]*Bed
}

func newMockRepo() *mockRepo {
	return &mockRepo{beds: make(map[uuid.UUID]*Bed)}
}

func (m *mockRepo) Create(_ context.Context, b *Bed) error {
	b.ID = uuid.New()
	if b.Status == "" {
		b.Status = StatusVacant
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.beds[b.ID] = b
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	b, ok := m.beds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

func (m *mockRepo) GetBySectorAndCode(_ context.Context, sectorID uuid.UUID, code string) (*Bed, error) {
	for _, b := range m.beds {
		if b.SectorID == sectorID && b.Code == code {
			return b, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Bed, int, error) {
	all, _ := m.ListAll(context.Background())
	return all, len(all), nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]*Bed, error) {
	var result []*Bed
	for _, b := range m.beds {
		result = append(result, b)
	}
	return result, nil
}

func (m *mockRepo) ListBySector(_ context.Context, sectorID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var result []*Bed
	for _, b := range m.beds {
		if b.SectorID == sectorID {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Update(_ context.Context, b *Bed) error {
	m.beds[b.ID] = b
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.beds, id)
	return nil
}

func (m *mockRepo) SetOccupancy(_ context.Context, id uuid.UUID, status string, occupantID *uuid.UUID) error {
	b, ok := m.beds[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	b.Status = status
	b.OccupantID = occupantID
	b.StatusChangedAt = time.Now()
	return nil
}

// -- Tests --

func TestCreateBed(t *testing.T) {
	svc := NewService(newMockRepo())

	b := &Bed{SectorID: uuid.New(), Code: "101A"}
	if err := svc.CreateBed(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != StatusVacant {
		t.Errorf("expected default status vacant, got %s", b.Status)
	}
}

func TestCreateBed_DuplicateCodeInSector(t *testing.T) {
	svc := NewService(newMockRepo())
	sectorID := uuid.New()

	if err := svc.CreateBed(context.Background(), &Bed{SectorID: sectorID, Code: "101A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.CreateBed(context.Background(), &Bed{SectorID: sectorID, Code: "101A"}); err == nil {
		t.Error("expected error for duplicate code within sector")
	}

	// Same code in another sector is fine
	if err := svc.CreateBed(context.Background(), &Bed{SectorID: uuid.New(), Code: "101A"}); err != nil {
		t.Errorf("unexpected error for same code in other sector: %v", err)
	}
}

func TestCreateBed_OccupantInvariant(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()

	b := &Bed{SectorID: uuid.New(), Code: "101A", Status: StatusOccupied}
	if err := svc.CreateBed(context.Background(), b); err == nil {
		t.Error("expected error for occupied bed without occupant")
	}

	b = &Bed{SectorID: uuid.New(), Code: "102B", Status: StatusVacant, OccupantID: &pid}
	if err := svc.CreateBed(context.Background(), b); err == nil {
		t.Error("expected error for vacant bed with occupant")
	}
}

func TestChangeStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	b := &Bed{SectorID: uuid.New(), Code: "101A"}
	if err := svc.CreateBed(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ChangeStatus(context.Background(), b.ID, StatusCleaning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := repo.GetByID(context.Background(), b.ID); got.Status != StatusCleaning {
		t.Errorf("expected cleaning, got %s", got.Status)
	}

	if err := svc.ChangeStatus(context.Background(), b.ID, "broken"); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := svc.ChangeStatus(context.Background(), b.ID, StatusOccupied); err == nil {
		t.Error("expected error when forcing occupied without a patient")
	}
}

func TestChangeStatus_RefusesOccupiedBed(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	pid := uuid.New()

	b := &Bed{SectorID: uuid.New(), Code: "101A"}
	if err := svc.CreateBed(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetOccupancy(context.Background(), b.ID, StatusOccupied, &pid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ChangeStatus(context.Background(), b.ID, StatusBlocked); err == nil {
		t.Error("expected error when changing status of an occupied bed")
	}
	if err := svc.DeleteBed(context.Background(), b.ID); err == nil {
		t.Error("expected error when deleting an occupied bed")
	}
}
