package census

import (
	"fmt"

	"github.com/google/uuid"
)

// ActionKind labels one per-patient action record.
type ActionKind string

const (
	ActionAdmitted   ActionKind = "admitted"
	ActionRelocated  ActionKind = "relocated"
	ActionUnchanged  ActionKind = "unchanged"
	ActionDischarged ActionKind = "discharged"
	ActionDeceased   ActionKind = "deceased"
	ActionDeferred   ActionKind = "deferred"
	ActionUndecided  ActionKind = "undecided"
)

// ActionRecord is one human-readable line of the run's audit artifact.
type ActionRecord struct {
	Kind        ActionKind `json:"kind"`
	PatientName string     `json:"patient_name"`
	Detail      string     `json:"detail"`
}

// Result is the tally and per-patient log of one reconciliation run. It is
// shown to the operator and summarized into the audit log.
type Result struct {
	RunID          uuid.UUID      `json:"run_id"`
	NewCount       int            `json:"new_count"`
	RelocatedCount int            `json:"relocated_count"`
	UnchangedCount int            `json:"unchanged_count"`
	MissingCount   int            `json:"missing_count"`
	BedsFreedCount int            `json:"beds_freed_count"`
	Details        []ActionRecord `json:"details"`
}

func (r *Result) add(kind ActionKind, patientName, detail string) {
	r.Details = append(r.Details, ActionRecord{Kind: kind, PatientName: patientName, Detail: detail})
}

// Summary renders the tallies for the audit log.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d admitted, %d relocated, %d unchanged, %d missing, %d beds freed",
		r.NewCount, r.RelocatedCount, r.UnchangedCount, r.MissingCount, r.BedsFreedCount)
}
