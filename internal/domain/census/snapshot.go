package census

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/censo/censo/internal/domain/bed"
	"github.com/censo/censo/internal/domain/patient"
	"github.com/censo/censo/internal/domain/sector"
)

// Snapshot is a point-in-time, read-only view of the registry taken at run
// start. Mutations made elsewhere during the run are not observed; the batch
// commit granularity bounds the resulting inconsistency window.
type Snapshot struct {
	Sectors  []*sector.Sector
	Beds     []*bed.Bed
	Patients []*patient.Patient

	sectorByID   map[uuid.UUID]*sector.Sector
	sectorByName map[string]*sector.Sector
	bedByID      map[uuid.UUID]*bed.Bed
	bedByCode    map[string]*bed.Bed
	bedByNorm    map[string]*bed.Bed
}

// LoadSnapshot reads sectors, beds and admitted patients. Any read failure
// aborts before a single write happens.
func LoadSnapshot(ctx context.Context, reg Registry) (*Snapshot, error) {
	sectors, err := reg.ListSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sectors: %w", err)
	}
	beds, err := reg.ListBeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load beds: %w", err)
	}
	patients, err := reg.ListAdmittedPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admitted patients: %w", err)
	}

	snap := &Snapshot{Sectors: sectors, Beds: beds, Patients: patients}
	snap.index()
	return snap, nil
}

func (s *Snapshot) index() {
	s.sectorByID = make(map[uuid.UUID]*sector.Sector, len(s.Sectors))
	s.sectorByName = make(map[string]*sector.Sector, len(s.Sectors))
	for _, sec := range s.Sectors {
		s.sectorByID[sec.ID] = sec
		s.sectorByName[sec.Name] = sec
	}

	s.bedByID = make(map[uuid.UUID]*bed.Bed, len(s.Beds))
	s.bedByCode = make(map[string]*bed.Bed, len(s.Beds))
	s.bedByNorm = make(map[string]*bed.Bed, len(s.Beds))
	for _, b := range s.Beds {
		s.bedByID[b.ID] = b
		if _, ok := s.bedByCode[b.Code]; !ok {
			s.bedByCode[b.Code] = b
		}
		if norm := NormalizeBedCode(b.Code); norm != "" {
			if _, ok := s.bedByNorm[norm]; !ok {
				s.bedByNorm[norm] = b
			}
		}
	}
}

// SectorByName resolves a sector by exact full-name match.
func (s *Snapshot) SectorByName(name string) (*sector.Sector, bool) {
	sec, ok := s.sectorByName[name]
	return sec, ok
}

func (s *Snapshot) SectorByID(id uuid.UUID) (*sector.Sector, bool) {
	sec, ok := s.sectorByID[id]
	return sec, ok
}

// BedByCode resolves a bed by code across all sectors, trying the raw code
// first and then the normalized form to tolerate extract formatting quirks.
func (s *Snapshot) BedByCode(code string) (*bed.Bed, bool) {
	if b, ok := s.bedByCode[code]; ok {
		return b, true
	}
	if norm := NormalizeBedCode(code); norm != "" {
		if b, ok := s.bedByNorm[norm]; ok {
			return b, true
		}
	}
	return nil, false
}

func (s *Snapshot) BedByID(id uuid.UUID) (*bed.Bed, bool) {
	b, ok := s.bedByID[id]
	return b, ok
}

// bedPrefixRE matches the letter/space prefix some extracts prepend to bed
// codes ("L 101A" for bed "101A").
var bedPrefixRE = regexp.MustCompile(`^[A-Za-z\s]+`)

// NormalizeBedCode strips any leading letter/space prefix from a bed code.
func NormalizeBedCode(code string) string {
	return strings.TrimSpace(bedPrefixRE.ReplaceAllString(strings.TrimSpace(code), ""))
}
