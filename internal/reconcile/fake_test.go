package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/megaverse/internal/megaverse"
)

type call struct {
	Action   Action
	Position megaverse.Position
	Entity   megaverse.Entity
}

// fakeMegaverse applies mutations to an in-memory current grid and records every call.
type fakeMegaverse struct {
	mu      sync.Mutex
	goal    megaverse.GoalGrid
	current megaverse.CurrentGrid
	calls   []call
	fetches []string

	// failAt makes the n-th mutation (1-based) fail.
	failAt  int
	failErr error
}

func newFake(goal megaverse.GoalGrid, current megaverse.CurrentGrid) *fakeMegaverse {
	return &fakeMegaverse{goal: goal, current: current}
}

func (f *fakeMegaverse) GoalGrid(context.Context) (megaverse.GoalGrid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, "goal")
	return f.goal, nil
}

func (f *fakeMegaverse) CurrentGrid(context.Context) (megaverse.CurrentGrid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, "current")
	out := make(megaverse.CurrentGrid, len(f.current))
	for i, row := range f.current {
		out[i] = append([]*megaverse.RawCell(nil), row...)
	}
	return out, nil
}

func (f *fakeMegaverse) CreateEntity(_ context.Context, pos megaverse.Position, e megaverse.Entity) error {
	return f.mutate(ActionCreate, pos, e, megaverse.RawCellFor(e))
}

func (f *fakeMegaverse) DeleteEntity(_ context.Context, pos megaverse.Position, e megaverse.Entity) error {
	if e == nil {
		return errors.New("fake: delete of nil entity")
	}
	return f.mutate(ActionDelete, pos, e, nil)
}

func (f *fakeMegaverse) mutate(action Action, pos megaverse.Position, e megaverse.Entity, cell *megaverse.RawCell) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Action: action, Position: pos, Entity: e})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		if f.failErr != nil {
			return f.failErr
		}
		return fmt.Errorf("fake: call %d failed", f.failAt)
	}
	f.current[pos.Row][pos.Column] = cell
	return nil
}

func (f *fakeMegaverse) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }
