package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Megaverse is the API surface the reconciler drives. *api.Client satisfies it.
type Megaverse interface {
	GoalGrid(ctx context.Context) (megaverse.GoalGrid, error)
	CurrentGrid(ctx context.Context) (megaverse.CurrentGrid, error)
	CreateEntity(ctx context.Context, pos megaverse.Position, e megaverse.Entity) error
	DeleteEntity(ctx context.Context, pos megaverse.Position, e megaverse.Entity) error
}

type Options struct {
	// DryRun plans and logs without issuing create/delete calls.
	DryRun bool
	Logger *zerolog.Logger
}

// Summary describes one reconcile run.
type Summary struct {
	RunID     string
	DryRun    bool
	Plan      Plan
	Deleted   int
	Created   int
	StartedAt time.Time
	Duration  time.Duration
}

func (s Summary) Anomalies() int {
	return len(s.Plan.Anomalies)
}

type Reconciler struct {
	mv     Megaverse
	opts   Options
	logger zerolog.Logger
}

func New(mv Megaverse, opts Options) *Reconciler {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Reconciler{mv: mv, opts: opts, logger: logger}
}

// Run fetches both grids, plans the diff and applies it cell by cell in row-major order.
// It stops at the first failed call; a rerun recomputes the diff from scratch.
func (r *Reconciler) Run(ctx context.Context) (summary Summary, err error) {
	summary = Summary{
		RunID:     uuid.NewString(),
		DryRun:    r.opts.DryRun,
		StartedAt: time.Now(),
	}
	logger := r.logger.With().Str("run_id", summary.RunID).Logger()
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	plan, err := r.fetchPlan(ctx, logger)
	if err != nil {
		return summary, err
	}
	summary.Plan = plan

	logger.Info().Int("rows", plan.Rows).Int("columns", plan.Columns).Msg("megaverse bounds")
	logger.Info().Int("anomalies", len(plan.Anomalies)).Bool("dry_run", r.opts.DryRun).Msg("begin exploration")

	for _, anomaly := range plan.Anomalies {
		logger.Info().
			Int("row", anomaly.Position.Row).
			Int("column", anomaly.Position.Column).
			Str("expected", string(anomaly.Expected)).
			Str("found", string(anomaly.Found)).
			Msg("anomaly detected")
		if r.opts.DryRun {
			continue
		}
		for _, op := range anomaly.Operations {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if err := r.apply(ctx, logger, op); err != nil {
				return summary, err
			}
			switch op.Action {
			case ActionDelete:
				summary.Deleted++
			case ActionCreate:
				summary.Created++
			}
		}
	}

	logger.Info().
		Int("deleted", summary.Deleted).
		Int("created", summary.Created).
		Msg("exploration complete")
	return summary, nil
}

// Plan fetches goal then current grid and returns their diff without mutating anything.
func (r *Reconciler) Plan(ctx context.Context) (Plan, error) {
	return r.fetchPlan(ctx, r.logger)
}

func (r *Reconciler) fetchPlan(ctx context.Context, logger zerolog.Logger) (Plan, error) {
	logger.Info().Msg("fetching goal map")
	goal, err := r.mv.GoalGrid(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("reconcile: fetch goal map: %w", err)
	}
	logger.Info().Msg("fetching current map")
	current, err := r.mv.CurrentGrid(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("reconcile: fetch current map: %w", err)
	}
	return Diff(goal, current)
}

func (r *Reconciler) apply(ctx context.Context, logger zerolog.Logger, op Operation) error {
	event := logger.Info().
		Int("row", op.Position.Row).
		Int("column", op.Position.Column).
		Str("entity", string(op.Label()))
	var err error
	switch op.Action {
	case ActionDelete:
		event.Msg("evaporating existing entity")
		err = r.mv.DeleteEntity(ctx, op.Position, op.Entity)
	case ActionCreate:
		event.Msg("creating entity")
		err = r.mv.CreateEntity(ctx, op.Position, op.Entity)
	default:
		event.Discard()
		err = fmt.Errorf("unknown action %q", op.Action)
	}
	if err != nil {
		return fmt.Errorf("reconcile: %s: %w", op, err)
	}
	observability.RecordReconcileOperation(string(op.Action), op.Entity.Kind().String())
	return nil
}
