package census

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/censo/censo/internal/domain/audit"
	"github.com/censo/censo/internal/domain/patient"
)

// DefaultBatchSize bounds how many mutations commit per transaction.
const DefaultBatchSize = 500

// ProgressFunc receives coarse progress milestones (10, 25, 60, 80, 100).
type ProgressFunc func(pct int)

// Engine applies a verified diff to the registry in fixed-size atomic
// batches. A mid-run failure stops further batches and leaves the committed
// ones applied; re-running reconciliation is safe because unchanged rows
// classify to zero writes.
type Engine struct {
	registry  Registry
	batchSize int
	logger    zerolog.Logger
}

func NewEngine(registry Registry, batchSize int, logger zerolog.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Engine{registry: registry, batchSize: batchSize, logger: logger}
}

// pendingAction pairs a mutation with the log line and tally bucket it
// produces once its batch commits.
type pendingAction struct {
	mut  Mutation
	rec  ActionRecord
	kind ActionKind
}

// Execute applies the reconciled change set. The diff must be error-free;
// adjudications cover whichever missing patients the operator decided.
// Ordering is fixed: admissions and relocations first, then dispositions.
func (e *Engine) Execute(ctx context.Context, runID uuid.UUID, diff *DiffResult, adj *AdjudicationSet, actor string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(int) {}
	}
	if adj == nil {
		adj = NewAdjudicationSet()
	}
	if diff.HasErrors() {
		return nil, ErrUnresolvedCatalog
	}

	result := &Result{
		RunID:          runID,
		UnchangedCount: len(diff.Unchanged),
		MissingCount:   len(diff.Missing),
	}

	pending := e.buildActions(diff, adj, result)
	progress(10)

	batches := chunk(pending, e.batchSize)
	e.logger.Info().
		Int("mutations", len(pending)).
		Int("batches", len(batches)).
		Int("batch_size", e.batchSize).
		Msg("census execution starting")
	progress(25)

	phase1 := len(diff.New) + len(diff.Relocated)
	committed := 0
	phase1Done := phase1 == 0

	for i, batch := range batches {
		muts := make([]Mutation, len(batch))
		for j, a := range batch {
			muts[j] = a.mut
		}

		if err := e.registry.ApplyBatch(ctx, muts); err != nil {
			e.logger.Error().Err(err).
				Int("batch", i+1).
				Int("committed_batches", i).
				Msg("census batch failed")
			return result, fmt.Errorf("batch %d of %d failed, prior batches remain applied: %w",
				i+1, len(batches), err)
		}

		for _, a := range batch {
			e.tally(result, a)
		}
		committed += len(batch)

		if !phase1Done && committed >= phase1 {
			phase1Done = true
			progress(60)
		}
	}
	progress(80)

	if err := e.registry.AppendAudit(ctx, &audit.Entry{
		Category:    "census",
		Action:      "reconcile",
		Target:      runID.String(),
		Description: result.Summary(),
		Actor:       actor,
	}); err != nil {
		return result, fmt.Errorf("write audit record: %w", err)
	}
	progress(100)

	e.logger.Info().
		Int("new", result.NewCount).
		Int("relocated", result.RelocatedCount).
		Int("unchanged", result.UnchangedCount).
		Int("missing", result.MissingCount).
		Int("beds_freed", result.BedsFreedCount).
		Msg("census execution finished")

	return result, nil
}

// buildActions turns the diff and adjudications into the ordered mutation
// list and stamps the no-write records (unchanged, deferred, undecided)
// directly onto the result.
func (e *Engine) buildActions(diff *DiffResult, adj *AdjudicationSet, result *Result) []pendingAction {
	var pending []pendingAction

	for _, n := range diff.New {
		p := &patient.Patient{
			Name:             n.Row.Name,
			BirthDate:        n.Row.BirthDate,
			Sex:              n.Row.Sex,
			AdmittedAt:       n.Row.AdmittedAt,
			AdmissionStatus:  patient.StatusAdmitted,
			SectorID:         &n.Sector.ID,
			BedID:            &n.Bed.ID,
			BedCode:          n.Bed.Code,
			Specialty:        n.Row.Specialty,
			RegulationStatus: n.Row.RegulationStatus,
		}
		pending = append(pending, pendingAction{
			mut: Mutation{
				Kind:       MutationAdmit,
				NewPatient: p,
				BedID:      n.Bed.ID,
				SectorID:   n.Sector.ID,
				BedCode:    n.Bed.Code,
			},
			rec: ActionRecord{
				Kind:        ActionAdmitted,
				PatientName: n.Row.Name,
				Detail:      fmt.Sprintf("Added at %s / %s", n.Sector.Name, n.Bed.Code),
			},
			kind: ActionAdmitted,
		})
	}

	for _, r := range diff.Relocated {
		pending = append(pending, pendingAction{
			mut: Mutation{
				Kind:      MutationRelocate,
				PatientID: r.Patient.ID,
				OldBedID:  r.Patient.BedID,
				BedID:     r.NewBed.ID,
				SectorID:  r.NewSector.ID,
				BedCode:   r.NewBed.Code,
			},
			rec: ActionRecord{
				Kind:        ActionRelocated,
				PatientName: r.Patient.Name,
				Detail:      fmt.Sprintf("Moved from %s to %s", r.Patient.BedCode, r.NewBed.Code),
			},
			kind: ActionRelocated,
		})
	}

	for _, u := range diff.Unchanged {
		result.add(ActionUnchanged, u.Patient.Name, fmt.Sprintf("Unchanged at %s", u.Patient.BedCode))
	}

	actionable, deferred, undecided := adj.Partition(diff.Missing)
	for _, p := range actionable {
		d, _ := adj.Get(p.ID)
		kind := ActionDischarged
		detail := "Discharged"
		if d == DispositionDeath {
			kind = ActionDeceased
			detail = "Discharged (death)"
		}
		pending = append(pending, pendingAction{
			mut: Mutation{
				Kind:      MutationRelease,
				PatientID: p.ID,
				OldBedID:  p.BedID,
				Death:     d == DispositionDeath,
			},
			rec:  ActionRecord{Kind: kind, PatientName: p.Name, Detail: detail},
			kind: kind,
		})
	}
	for _, p := range deferred {
		result.add(ActionDeferred, p.Name, "Relocation selected but not executable in this run")
	}
	for _, p := range undecided {
		result.add(ActionUndecided, p.Name, "No disposition yet, remains admitted")
	}

	return pending
}

func (e *Engine) tally(result *Result, a pendingAction) {
	switch a.kind {
	case ActionAdmitted:
		result.NewCount++
	case ActionRelocated:
		result.RelocatedCount++
	case ActionDischarged, ActionDeceased:
		result.BedsFreedCount++
	}
	result.Details = append(result.Details, a.rec)
}

func chunk(actions []pendingAction, size int) [][]pendingAction {
	var batches [][]pendingAction
	for start := 0; start < len(actions); start += size {
		end := start + size
		if end > len(actions) {
			end = len(actions)
		}
		batches = append(batches, actions[start:end])
	}
	return batches
}
