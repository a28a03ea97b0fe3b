package census

import (
	"strings"
	"time"
)

// Fixed column positions of the hospital census extract.
const (
	colName = iota
	colBirthDate
	colSex
	colAdmissionDate
	colSector
	colBed
	colSpecialty
)

// DefaultHeaderRows is the number of leading non-data rows in the extract.
const DefaultHeaderRows = 3

// testSentinel flags rows the source system uses for non-real entries.
const testSentinel = "test"

// ExtractRow is one parsed admission from the census extract. Sector and bed
// are free text at this point; the differ resolves them against the registry.
type ExtractRow struct {
	Name             string     `json:"name"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Sex              string     `json:"sex,omitempty"`
	AdmittedAt       *time.Time `json:"admitted_at,omitempty"`
	SectorName       string     `json:"sector_name"`
	BedCode          string     `json:"bed_code"`
	Specialty        string     `json:"specialty,omitempty"`
	RegulationStatus *string    `json:"regulation_status,omitempty"`
}

// ParseOptions tunes the extract parser.
type ParseOptions struct {
	// HeaderRows is how many leading rows to discard before data starts.
	HeaderRows int
	// PreAdmissionSectors lists sector names whose patients are still
	// awaiting regulation. Matched exactly against the sector column.
	PreAdmissionSectors []string
}

// DefaultParseOptions mirrors the layout of the hospital's standard extract.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		HeaderRows:          DefaultHeaderRows,
		PreAdmissionSectors: []string{"PRONTO SOCORRO", "PS ADULTO", "PS INFANTIL"},
	}
}

func (o ParseOptions) isPreAdmission(sectorName string) bool {
	for _, s := range o.PreAdmissionSectors {
		if s == sectorName {
			return true
		}
	}
	return false
}

// skipRow reports whether a data row is noise: blank name or a test entry.
func skipRow(name string) bool {
	if name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), testSentinel)
}
