package census

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/censo/censo/internal/domain/patient"
)

// zipMagic is the signature of an XLSX container.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ParseExtract turns the raw census extract into ordered rows. XLSX and CSV
// payloads are both accepted; anything unreadable fails the whole parse, no
// partial result is returned. Duplicate names are kept, the differ deals
// with them.
func ParseExtract(data []byte, opts ParseOptions) ([]ExtractRow, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("extract is empty")
	}

	var (
		table [][]string
		err   error
	)
	if bytes.HasPrefix(data, zipMagic) {
		table, err = readXLSX(data)
	} else {
		table, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("read extract: %w", err)
	}

	if len(table) <= opts.HeaderRows {
		return nil, fmt.Errorf("extract has no data rows after %d header rows", opts.HeaderRows)
	}

	var rows []ExtractRow
	for _, raw := range table[opts.HeaderRows:] {
		name := cell(raw, colName)
		if skipRow(name) {
			continue
		}

		row := ExtractRow{
			Name:       name,
			BirthDate:  parseDate(cell(raw, colBirthDate)),
			Sex:        cell(raw, colSex),
			AdmittedAt: parseDate(cell(raw, colAdmissionDate)),
			SectorName: cell(raw, colSector),
			BedCode:    cell(raw, colBed),
			Specialty:  cell(raw, colSpecialty),
		}
		if opts.isPreAdmission(row.SectorName) {
			status := patient.RegulationAwaiting
			row.RegulationStatus = &status
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.Comma = detectDelimiter(data)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks semicolon when the first line carries more of them
// than commas. The hospital system exports semicolon-separated files.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// dateLayouts accepted in the extract, most common first.
var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// parseDate is lenient: a blank or unparseable cell yields nil rather than
// failing the run, only the file itself being unreadable is fatal.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
