package census

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/censo/censo/internal/domain/patient"
)

func newTestService(reg *mockRegistry) *Service {
	eng := newTestEngine(reg, 500)
	return NewService(reg, eng, DefaultParseOptions(), zerolog.Nop())
}

func TestServicePreview(t *testing.T) {
	sectors, beds := testCatalog()
	reg := &mockRegistry{
		sectors:  sectors,
		beds:     beds,
		patients: []*patient.Patient{admittedPatient("Maria Silva", "101A", beds)},
	}
	svc := newTestService(reg)

	data := csvExtract(
		"Maria Silva;01/02/1980;F;10/03/2026;CLINICA MEDICA;101A;",
		"Pedro Costa;02/03/1990;M;11/03/2026;CLINICA MEDICA;102A;",
	)

	diff, err := svc.Preview(context.Background(), data)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(diff.Unchanged) != 1 || len(diff.New) != 1 {
		t.Errorf("diff = %d unchanged, %d new", len(diff.Unchanged), len(diff.New))
	}
	if len(reg.batches) != 0 {
		t.Error("preview must not write")
	}
}

func TestServiceRunCompletes(t *testing.T) {
	sectors, beds := testCatalog()
	missing := admittedPatient("Ana Lima", "UTI-03", beds)
	reg := &mockRegistry{
		sectors:  sectors,
		beds:     beds,
		patients: []*patient.Patient{missing},
	}
	svc := newTestService(reg)

	data := csvExtract("Pedro Costa;02/03/1990;M;11/03/2026;CLINICA MEDICA;102A;")
	decisions := map[uuid.UUID]Disposition{missing.ID: DispositionDischarge}

	result, err := svc.Run(context.Background(), data, decisions, "tester", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.NewCount != 1 || result.BedsFreedCount != 1 {
		t.Errorf("result = %+v", result)
	}
	if reg.leaseHeld {
		t.Error("lease must be released after the run")
	}
	if reg.releaseStatus != "completed" {
		t.Errorf("release status = %q", reg.releaseStatus)
	}
}

func TestServiceRunIsIdempotent(t *testing.T) {
	sectors, beds := testCatalog()
	missing := admittedPatient("Ana Lima", "UTI-03", beds)
	reg := &mockRegistry{
		sectors:  sectors,
		beds:     beds,
		patients: []*patient.Patient{missing},
	}
	svc := newTestService(reg)

	data := csvExtract("Pedro Costa;02/03/1990;M;11/03/2026;CLINICA MEDICA;102A;")
	decisions := map[uuid.UUID]Disposition{missing.ID: DispositionDischarge}

	first, err := svc.Run(context.Background(), data, decisions, "tester", nil)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.NewCount != 1 || first.BedsFreedCount != 1 {
		t.Fatalf("first result = %+v", first)
	}
	writes := reg.appliedCount()

	// The registry now matches the extract; a second run over the same file
	// must classify everything as unchanged and write nothing.
	second, err := svc.Run(context.Background(), data, nil, "tester", nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if reg.appliedCount() != writes {
		t.Errorf("second run wrote %d extra mutations", reg.appliedCount()-writes)
	}
	if second.NewCount != 0 || second.RelocatedCount != 0 || second.BedsFreedCount != 0 {
		t.Errorf("second result = %+v", second)
	}
	if second.UnchangedCount != 1 || second.MissingCount != 0 {
		t.Errorf("second run unchanged/missing = %d/%d",
			second.UnchangedCount, second.MissingCount)
	}
}

func TestServiceRunRejectsInvalidDisposition(t *testing.T) {
	reg := &mockRegistry{}
	svc := newTestService(reg)

	data := csvExtract("Pedro Costa;;;;CLINICA MEDICA;102A;")
	decisions := map[uuid.UUID]Disposition{uuid.New(): Disposition("vanished")}

	if _, err := svc.Run(context.Background(), data, decisions, "tester", nil); err == nil {
		t.Fatal("invalid disposition should fail before any work")
	}
	if reg.leaseHeld {
		t.Error("lease must not be taken on validation failure")
	}
}

func TestServiceRunLeaseConflict(t *testing.T) {
	sectors, beds := testCatalog()
	reg := &mockRegistry{sectors: sectors, beds: beds, leaseHeld: true}
	svc := newTestService(reg)

	data := csvExtract("Pedro Costa;;;;CLINICA MEDICA;102A;")

	_, err := svc.Run(context.Background(), data, nil, "tester", nil)
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(reg.batches) != 0 {
		t.Error("conflicting run must not write")
	}
}

func TestServiceRunBlockedByCatalogReleasesLease(t *testing.T) {
	sectors, beds := testCatalog()
	reg := &mockRegistry{sectors: sectors, beds: beds}
	svc := newTestService(reg)

	data := csvExtract("Pedro Costa;;;;SETOR FANTASMA;102A;")

	_, err := svc.Run(context.Background(), data, nil, "tester", nil)
	if !errors.Is(err, ErrUnresolvedCatalog) {
		t.Fatalf("expected ErrUnresolvedCatalog, got %v", err)
	}
	if reg.leaseHeld {
		t.Error("lease must be released when the run is blocked")
	}
	if reg.releaseStatus != "failed" {
		t.Errorf("release status = %q", reg.releaseStatus)
	}
	if len(reg.batches) != 0 {
		t.Error("blocked run must not write")
	}
}
