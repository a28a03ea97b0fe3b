package census

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/censo/censo/internal/domain/patient"
)

// Service drives the two reconciliation stages: Preview classifies the
// extract without writing, Run executes the classified changes under the
// run lease. Both stages re-parse and re-diff, so a preview can be thrown
// away at no cost and a failed run can simply be retried.
type Service struct {
	registry Registry
	engine   *Engine
	opts     ParseOptions
	logger   zerolog.Logger
}

func NewService(registry Registry, engine *Engine, opts ParseOptions, logger zerolog.Logger) *Service {
	return &Service{registry: registry, engine: engine, opts: opts, logger: logger}
}

// Preview parses the extract and diffs it against the current registry.
// Nothing is written; the result tells the operator what Run would do and
// whether unresolved catalog entries block it.
func (s *Service) Preview(ctx context.Context, data []byte) (*DiffResult, error) {
	rows, err := ParseExtract(data, s.opts)
	if err != nil {
		return nil, fmt.Errorf("parse extract: %w", err)
	}

	snap, err := LoadSnapshot(ctx, s.registry)
	if err != nil {
		return nil, fmt.Errorf("load registry snapshot: %w", err)
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(snap.Patients))
	s.logger.Info().
		Int("rows", len(rows)).
		Int("new", len(diff.New)).
		Int("relocated", len(diff.Relocated)).
		Int("unchanged", len(diff.Unchanged)).
		Int("missing", len(diff.Missing)).
		Bool("blocked", diff.HasErrors()).
		Msg("census preview")
	return diff, nil
}

// Run executes a reconciliation end to end: lease, fresh snapshot and diff,
// batched execution, lease release. decisions carries the operator's
// dispositions for missing patients, keyed by registry patient ID.
func (s *Service) Run(ctx context.Context, data []byte, decisions map[uuid.UUID]Disposition, actor string, progress ProgressFunc) (*Result, error) {
	adj := NewAdjudicationSet()
	for id, d := range decisions {
		if err := adj.Decide(id, d); err != nil {
			return nil, err
		}
	}

	rows, err := ParseExtract(data, s.opts)
	if err != nil {
		return nil, fmt.Errorf("parse extract: %w", err)
	}

	runID := uuid.New()
	if err := s.registry.AcquireLease(ctx, runID, actor); err != nil {
		return nil, err
	}

	// The snapshot is taken after the lease so no concurrent run mutates
	// the registry between diff and execution.
	snap, err := LoadSnapshot(ctx, s.registry)
	if err != nil {
		s.release(ctx, runID, "failed", err.Error())
		return nil, fmt.Errorf("load registry snapshot: %w", err)
	}

	diff := Diff(rows, snap, patient.NewNameMatcher(snap.Patients))

	result, err := s.engine.Execute(ctx, runID, diff, adj, actor, progress)
	if err != nil {
		summary := err.Error()
		if result != nil {
			summary = fmt.Sprintf("%s (%s)", result.Summary(), err)
		}
		s.release(ctx, runID, "failed", summary)
		return result, err
	}

	s.release(ctx, runID, "completed", result.Summary())
	return result, nil
}

func (s *Service) release(ctx context.Context, runID uuid.UUID, status, summary string) {
	if err := s.registry.ReleaseLease(ctx, runID, status, summary); err != nil {
		s.logger.Error().Err(err).
			Str("run_id", runID.String()).
			Str("status", status).
			Msg("failed to release census run lease")
	}
}
