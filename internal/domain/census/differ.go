package census

import (
	"github.com/google/uuid"

	"github.com/censo/censo/internal/domain/bed"
	"github.com/censo/censo/internal/domain/patient"
	"github.com/censo/censo/internal/domain/sector"
)

// NewAdmission is an extract row with no matching admitted patient.
type NewAdmission struct {
	Row    ExtractRow     `json:"row"`
	Sector *sector.Sector `json:"sector"`
	Bed    *bed.Bed       `json:"bed"`
}

// Relocation is an admitted patient whose extract bed differs from the
// registry bed.
type Relocation struct {
	Patient   *patient.Patient `json:"patient"`
	Row       ExtractRow       `json:"row"`
	NewSector *sector.Sector   `json:"new_sector"`
	NewBed    *bed.Bed         `json:"new_bed"`
}

// Unchanged is an admitted patient whose extract bed matches the registry.
type Unchanged struct {
	Patient *patient.Patient `json:"patient"`
	Row     ExtractRow       `json:"row"`
}

// DiffErrors collects unresolved catalog references and bed conflicts,
// deduplicated and in first-seen order so the operator can fix each root
// cause once.
type DiffErrors struct {
	Sectors []string `json:"sectors"`
	Beds    []string `json:"beds"`
	// Conflicts lists bed codes claimed by more than one distinct patient
	// in the extract. A bed backs at most one patient, so these rows
	// cannot both be right; execution is blocked until the feed is fixed.
	Conflicts []string `json:"conflicts"`
}

func (e DiffErrors) Empty() bool {
	return len(e.Sectors) == 0 && len(e.Beds) == 0 && len(e.Conflicts) == 0
}

// DiffResult partitions the extract against the registry snapshot. Every row
// with a resolvable sector and bed lands in exactly one of New, Relocated or
// Unchanged; every admitted patient absent from the extract lands in Missing.
type DiffResult struct {
	New       []NewAdmission     `json:"new"`
	Relocated []Relocation       `json:"relocated"`
	Unchanged []Unchanged        `json:"unchanged"`
	Missing   []*patient.Patient `json:"missing"`
	Errors    DiffErrors         `json:"errors"`
}

// HasErrors reports whether the run must stop for catalog correction before
// any write.
func (r *DiffResult) HasErrors() bool {
	return !r.Errors.Empty()
}

// Diff classifies extract rows against the snapshot. Matching identity is
// whatever the Matcher implements; in production that is the case-insensitive
// display name, the only join key the feed offers.
//
// Each patient classifies exactly once and each bed is claimed at most once:
// repeated names keep their first row (consistent with NewNameMatcher), and a
// bed claimed by two distinct patients is a blocking conflict. This is what
// lets the engine assume no two mutations in a batch target the same bed or
// patient.
func Diff(rows []ExtractRow, snap *Snapshot, matcher patient.Matcher) *DiffResult {
	result := &DiffResult{}

	seenSectors := make(map[string]bool)
	seenBeds := make(map[string]bool)
	seenConflicts := make(map[string]bool)
	seenNames := make(map[string]bool, len(rows))
	claimedBeds := make(map[uuid.UUID]bool, len(rows))
	extractNames := make(map[string]bool, len(rows))

	for _, row := range rows {
		// Missing is computed from name presence alone, so record the
		// name even when the row later fails sector/bed resolution.
		norm := patient.NormalizeName(row.Name)
		extractNames[norm] = true

		if seenNames[norm] {
			continue
		}
		seenNames[norm] = true

		sec, ok := snap.SectorByName(row.SectorName)
		if !ok {
			if !seenSectors[row.SectorName] {
				seenSectors[row.SectorName] = true
				result.Errors.Sectors = append(result.Errors.Sectors, row.SectorName)
			}
			continue
		}

		b, ok := snap.BedByCode(row.BedCode)
		if !ok {
			if !seenBeds[row.BedCode] {
				seenBeds[row.BedCode] = true
				result.Errors.Beds = append(result.Errors.Beds, row.BedCode)
			}
			continue
		}

		if claimedBeds[b.ID] {
			if !seenConflicts[b.Code] {
				seenConflicts[b.Code] = true
				result.Errors.Conflicts = append(result.Errors.Conflicts, b.Code)
			}
			continue
		}
		claimedBeds[b.ID] = true

		existing, found := matcher.Match(row.Name)
		switch {
		case !found:
			result.New = append(result.New, NewAdmission{Row: row, Sector: sec, Bed: b})
		case existing.BedCode == b.Code:
			result.Unchanged = append(result.Unchanged, Unchanged{Patient: existing, Row: row})
		default:
			result.Relocated = append(result.Relocated, Relocation{
				Patient:   existing,
				Row:       row,
				NewSector: sec,
				NewBed:    b,
			})
		}
	}

	for _, p := range snap.Patients {
		if !extractNames[patient.NormalizeName(p.Name)] {
			result.Missing = append(result.Missing, p)
		}
	}

	return result
}
