package census

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/censo/censo/internal/domain/patient"
)

// Disposition is the operator's resolution for a patient missing from the
// extract.
type Disposition string

const (
	DispositionDischarge Disposition = "discharge"
	DispositionDeath     Disposition = "death"
	// DispositionRelocate is selectable but its execution is not
	// implemented: marked patients are deferred out of the run, never
	// silently dropped.
	DispositionRelocate Disposition = "relocate"
)

// DefaultDisposition is what the operator surface preselects.
const DefaultDisposition = DispositionDischarge

func (d Disposition) Valid() bool {
	switch d {
	case DispositionDischarge, DispositionDeath, DispositionRelocate:
		return true
	}
	return false
}

// AdjudicationSet records dispositions per missing patient. Coverage is not
// required: undecided patients are excluded from execution and stay admitted.
type AdjudicationSet struct {
	decisions map[uuid.UUID]Disposition
}

func NewAdjudicationSet() *AdjudicationSet {
	return &AdjudicationSet{decisions: make(map[uuid.UUID]Disposition)}
}

func (a *AdjudicationSet) Decide(patientID uuid.UUID, d Disposition) error {
	if !d.Valid() {
		return fmt.Errorf("invalid disposition: %s", d)
	}
	a.decisions[patientID] = d
	return nil
}

func (a *AdjudicationSet) Get(patientID uuid.UUID) (Disposition, bool) {
	d, ok := a.decisions[patientID]
	return d, ok
}

func (a *AdjudicationSet) Len() int { return len(a.decisions) }

// Partition splits the missing set into executable dispositions, deferred
// relocations and undecided patients. The three buckets are disjoint and
// cover the whole missing list.
func (a *AdjudicationSet) Partition(missing []*patient.Patient) (actionable []*patient.Patient, deferred []*patient.Patient, undecided []*patient.Patient) {
	for _, p := range missing {
		d, ok := a.decisions[p.ID]
		switch {
		case !ok:
			undecided = append(undecided, p)
		case d == DispositionRelocate:
			deferred = append(deferred, p)
		default:
			actionable = append(actionable, p)
		}
	}
	return actionable, deferred, undecided
}
