package census

import (
	"testing"

	"github.com/google/uuid"

	"github.com/censo/censo/internal/domain/bed"
	"github.com/censo/censo/internal/domain/patient"
	"github.com/censo/censo/internal/domain/sector"
)

// testSnapshot builds an indexed snapshot directly from the given catalog.
func testSnapshot(sectors []*sector.Sector, beds []*bed.Bed, patients []*patient.Patient) *Snapshot {
	snap := &Snapshot{Sectors: sectors, Beds: beds, Patients: patients}
	snap.index()
	return snap
}

func testCatalog() ([]*sector.Sector, []*bed.Bed) {
	clinica := &sector.Sector{ID: uuid.New(), Code: "CM", Name: "CLINICA MEDICA"}
	uti := &sector.Sector{ID: uuid.New(), Code: "UTI", Name: "UTI ADULTO"}
	sectors := []*sector.Sector{clinica, uti}
	beds := []*bed.Bed{
		{ID: uuid.New(), SectorID: clinica.ID, Code: "101A", Status: bed.StatusVacant},
		{ID: uuid.New(), SectorID: clinica.ID, Code: "102A", Status: bed.StatusVacant},
		{ID: uuid.New(), SectorID: uti.ID, Code: "UTI-03", Status: bed.StatusVacant},
	}
	return sectors, beds
}

func admittedPatient(name, bedCode string, beds []*bed.Bed) *patient.Patient {
	p := &patient.Patient{ID: uuid.New(), Name: name, AdmissionStatus: patient.StatusAdmitted, BedCode: bedCode}
	for _, b := range beds {
		if b.Code == bedCode {
			id := b.ID
			p.BedID = &id
			sectorID := b.SectorID
			p.SectorID = &sectorID
		}
	}
	return p
}

func TestDiffClassification(t *testing.T) {
	sectors, beds := testCatalog()
	maria := admittedPatient("Maria Silva", "101A", beds)
	joao := admittedPatient("João Souza", "102A", beds)
	ana := admittedPatient("Ana Lima", "UTI-03", beds)
	snap := testSnapshot(sectors, beds, []*patient.Patient{maria, joao, ana})

	rows := []ExtractRow{
		// unchanged: same bed
		{Name: "MARIA SILVA", SectorName: "CLINICA MEDICA", BedCode: "101A"},
		// relocated: registry says 102A
		{Name: "João Souza", SectorName: "UTI ADULTO", BedCode: "UTI-03"},
		// new admission
		{Name: "Pedro Costa", SectorName: "CLINICA MEDICA", BedCode: "102A"},
		// Ana Lima absent -> missing
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(snap.Patients))

	if diff.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diff.Errors)
	}
	if len(diff.Unchanged) != 1 || diff.Unchanged[0].Patient.ID != maria.ID {
		t.Errorf("unchanged = %+v", diff.Unchanged)
	}
	if len(diff.Relocated) != 1 || diff.Relocated[0].Patient.ID != joao.ID {
		t.Errorf("relocated = %+v", diff.Relocated)
	}
	if len(diff.Relocated) == 1 && diff.Relocated[0].NewBed.Code != "UTI-03" {
		t.Errorf("relocation target = %q", diff.Relocated[0].NewBed.Code)
	}
	if len(diff.New) != 1 || diff.New[0].Row.Name != "Pedro Costa" {
		t.Errorf("new = %+v", diff.New)
	}
	if len(diff.Missing) != 1 || diff.Missing[0].ID != ana.ID {
		t.Errorf("missing = %+v", diff.Missing)
	}
}

func TestDiffUnresolvedCatalogDedup(t *testing.T) {
	sectors, beds := testCatalog()
	snap := testSnapshot(sectors, beds, nil)

	rows := []ExtractRow{
		{Name: "A", SectorName: "SETOR FANTASMA", BedCode: "101A"},
		{Name: "B", SectorName: "SETOR FANTASMA", BedCode: "102A"},
		{Name: "C", SectorName: "CLINICA MEDICA", BedCode: "999Z"},
		{Name: "D", SectorName: "CLINICA MEDICA", BedCode: "999Z"},
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(nil))

	if !diff.HasErrors() {
		t.Fatal("expected catalog errors")
	}
	if len(diff.Errors.Sectors) != 1 || diff.Errors.Sectors[0] != "SETOR FANTASMA" {
		t.Errorf("sector errors = %v", diff.Errors.Sectors)
	}
	if len(diff.Errors.Beds) != 1 || diff.Errors.Beds[0] != "999Z" {
		t.Errorf("bed errors = %v", diff.Errors.Beds)
	}
}

func TestDiffMissingIndependentOfRowErrors(t *testing.T) {
	sectors, beds := testCatalog()
	maria := admittedPatient("Maria Silva", "101A", beds)
	snap := testSnapshot(sectors, beds, []*patient.Patient{maria})

	// Maria's row fails bed resolution but her name is in the extract, so
	// she must not land in Missing.
	rows := []ExtractRow{
		{Name: "Maria Silva", SectorName: "CLINICA MEDICA", BedCode: "INVALIDO-9"},
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(snap.Patients))

	if !diff.HasErrors() {
		t.Fatal("expected bed resolution error")
	}
	if len(diff.Missing) != 0 {
		t.Errorf("patient present in extract must not be missing: %+v", diff.Missing)
	}
}

func TestDiffDuplicateNamesKeepFirstRow(t *testing.T) {
	sectors, beds := testCatalog()
	maria := admittedPatient("Maria Silva", "101A", beds)
	snap := testSnapshot(sectors, beds, []*patient.Patient{maria})

	// The feed sometimes repeats a patient; only the first row may classify,
	// otherwise one patient emits two mutations in the same run.
	rows := []ExtractRow{
		{Name: "Pedro Costa", SectorName: "CLINICA MEDICA", BedCode: "102A"},
		{Name: "PEDRO COSTA", SectorName: "UTI ADULTO", BedCode: "UTI-03"},
		{Name: "Maria Silva", SectorName: "CLINICA MEDICA", BedCode: "101A"},
		{Name: "maria silva", SectorName: "UTI ADULTO", BedCode: "UTI-03"},
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(snap.Patients))

	if diff.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diff.Errors)
	}
	if len(diff.New) != 1 || diff.New[0].Bed.Code != "102A" {
		t.Errorf("new = %+v", diff.New)
	}
	if len(diff.Unchanged) != 1 || len(diff.Relocated) != 0 {
		t.Errorf("duplicate row must not also classify: unchanged=%d relocated=%d",
			len(diff.Unchanged), len(diff.Relocated))
	}
	if len(diff.Missing) != 0 {
		t.Errorf("missing = %+v", diff.Missing)
	}
}

func TestDiffBedClaimedTwiceIsConflict(t *testing.T) {
	sectors, beds := testCatalog()
	snap := testSnapshot(sectors, beds, nil)

	rows := []ExtractRow{
		{Name: "Pedro Costa", SectorName: "CLINICA MEDICA", BedCode: "102A"},
		{Name: "Rita Melo", SectorName: "CLINICA MEDICA", BedCode: "102A"},
		{Name: "Ana Lima", SectorName: "CLINICA MEDICA", BedCode: "L 102A"},
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(nil))

	if !diff.HasErrors() {
		t.Fatal("two patients on one bed must block execution")
	}
	if len(diff.Errors.Conflicts) != 1 || diff.Errors.Conflicts[0] != "102A" {
		t.Errorf("conflicts = %v", diff.Errors.Conflicts)
	}
	if len(diff.New) != 1 || diff.New[0].Row.Name != "Pedro Costa" {
		t.Errorf("only the first claimant may classify, new = %+v", diff.New)
	}
}

func TestDiffBedCodeNormalization(t *testing.T) {
	sectors, beds := testCatalog()
	snap := testSnapshot(sectors, beds, nil)

	// "L 101A" carries the letter prefix some extracts prepend.
	rows := []ExtractRow{
		{Name: "Pedro Costa", SectorName: "CLINICA MEDICA", BedCode: "L 101A"},
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(nil))

	if diff.HasErrors() {
		t.Fatalf("prefixed bed code should resolve, got %+v", diff.Errors)
	}
	if len(diff.New) != 1 || diff.New[0].Bed.Code != "101A" {
		t.Errorf("resolved bed = %+v", diff.New)
	}
}

func TestNormalizeBedCode(t *testing.T) {
	cases := map[string]string{
		"L 101A":   "101A",
		"101A":     "101A",
		" UTI 03B": "03B",
		"LEITO":    "",
	}
	for in, want := range cases {
		if got := NormalizeBedCode(in); got != want {
			t.Errorf("NormalizeBedCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnapshotBedByCodePrefersRawMatch(t *testing.T) {
	sectors, _ := testCatalog()
	beds := []*bed.Bed{
		{ID: uuid.New(), SectorID: sectors[0].ID, Code: "A 101", Status: bed.StatusVacant},
		{ID: uuid.New(), SectorID: sectors[0].ID, Code: "101", Status: bed.StatusVacant},
	}
	snap := testSnapshot(sectors, beds, nil)

	got, ok := snap.BedByCode("A 101")
	if !ok || got.Code != "A 101" {
		t.Errorf("raw code should win over normalized, got %+v", got)
	}
}
