package reconcile

import (
	"fmt"

	"github.com/danmuck/megaverse/internal/megaverse"
)

type Action string

const (
	ActionDelete Action = "delete"
	ActionCreate Action = "create"
)

// Operation is one create or delete call against a single cell.
type Operation struct {
	Action   Action
	Position megaverse.Position
	Entity   megaverse.Entity
}

func (o Operation) Label() megaverse.Label {
	return megaverse.LabelFor(o.Entity)
}

func (o Operation) String() string {
	return fmt.Sprintf("%s %s at %s", o.Action, o.Label(), o.Position)
}

// Anomaly is a cell whose current label differs from the goal, with the calls that fix it.
type Anomaly struct {
	Position   megaverse.Position
	Expected   megaverse.Label
	Found      megaverse.Label
	Operations []Operation
}

// Plan is the full row-major diff between goal and current grids.
type Plan struct {
	Rows      int
	Columns   int
	Anomalies []Anomaly
}

// Operations flattens the plan into execution order.
func (p Plan) Operations() []Operation {
	var out []Operation
	for _, a := range p.Anomalies {
		out = append(out, a.Operations...)
	}
	return out
}

func (p Plan) Empty() bool {
	return len(p.Anomalies) == 0
}

// Diff walks the goal grid in row-major order and plans delete-then-create for every
// mismatched cell. Every cell is translated before any operation is returned, so malformed
// data fails the whole plan.
func Diff(goal megaverse.GoalGrid, current megaverse.CurrentGrid) (Plan, error) {
	rows, cols := goal.Dimensions()
	plan := Plan{Rows: rows, Columns: cols}
	curRows, curCols := current.Dimensions()

	for r, row := range goal {
		for c, goalLabel := range row {
			pos := megaverse.Position{Row: r, Column: c}
			raw, ok := current.Cell(pos)
			if !ok {
				return Plan{}, megaverse.Invalid(
					"current_grid",
					"no cell at %s: goal is %dx%d, current is %dx%d",
					pos, rows, cols, curRows, curCols,
				)
			}
			found, err := megaverse.LabelForCell(raw)
			if err != nil {
				return Plan{}, fmt.Errorf("reconcile: current cell %s: %w", pos, err)
			}
			want, hasWant, err := megaverse.DescriptorForLabel(goalLabel)
			if err != nil {
				return Plan{}, fmt.Errorf("reconcile: goal cell %s: %w", pos, err)
			}
			if found == goalLabel {
				continue
			}

			anomaly := Anomaly{Position: pos, Expected: goalLabel, Found: found}
			if found != megaverse.LabelSpace {
				existing, _, err := megaverse.DescriptorForLabel(found)
				if err != nil {
					return Plan{}, fmt.Errorf("reconcile: current cell %s: %w", pos, err)
				}
				anomaly.Operations = append(anomaly.Operations, Operation{
					Action:   ActionDelete,
					Position: pos,
					Entity:   existing,
				})
			}
			if hasWant {
				anomaly.Operations = append(anomaly.Operations, Operation{
					Action:   ActionCreate,
					Position: pos,
					Entity:   want,
				})
			}
			plan.Anomalies = append(plan.Anomalies, anomaly)
		}
	}
	return plan, nil
}
