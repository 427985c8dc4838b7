package sandbox

import (
	"fmt"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/google/uuid"
)

var ErrOutOfBounds = fmt.Errorf("sandbox: position outside the megaverse: %w", errdefs.ErrInvalidArgument)

// Universe is one candidate's megaverse.
type Universe struct {
	ID          string
	CandidateID string
	Phase       int
	Content     megaverse.CurrentGrid
}

// Store holds one universe per candidate, created empty on first use with the shared goal's bounds.
type Store struct {
	mu        sync.Mutex
	goal      megaverse.GoalGrid
	phase     int
	universes map[string]*Universe
}

func NewStore(goal megaverse.GoalGrid, phase int) (*Store, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	return &Store{
		goal:      cloneGoal(goal),
		phase:     phase,
		universes: make(map[string]*Universe),
	}, nil
}

func (s *Store) Goal() megaverse.GoalGrid {
	return cloneGoal(s.goal)
}

// Snapshot returns a copy of the candidate's current map.
func (s *Store) Snapshot(candidate string) megaverse.MapContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.universe(candidate)
	return megaverse.MapContent{
		ID:          u.ID,
		Content:     cloneCurrent(u.Content),
		CandidateID: u.CandidateID,
		Phase:       u.Phase,
	}
}

// Place writes e at pos, replacing whatever was there.
func (s *Store) Place(candidate string, pos megaverse.Position, e megaverse.Entity) error {
	if e == nil {
		return megaverse.Invalid("entity", "must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.universe(candidate)
	if err := bounds(u.Content, pos); err != nil {
		return err
	}
	u.Content[pos.Row][pos.Column] = megaverse.RawCellFor(e)
	return nil
}

// Remove clears pos if it holds an entity of the given kind. Any other content is left alone.
func (s *Store) Remove(candidate string, pos megaverse.Position, kind megaverse.Kind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.universe(candidate)
	if err := bounds(u.Content, pos); err != nil {
		return false, err
	}
	cell := u.Content[pos.Row][pos.Column]
	if cell == nil || cell.Type == nil || megaverse.Kind(*cell.Type) != kind {
		return false, nil
	}
	u.Content[pos.Row][pos.Column] = nil
	return true, nil
}

// Reset drops the candidate's universe; the next access starts empty again.
func (s *Store) Reset(candidate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.universes, candidate)
}

func (s *Store) Candidates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.universes)
}

// universe must be called with s.mu held.
func (s *Store) universe(candidate string) *Universe {
	if u, ok := s.universes[candidate]; ok {
		return u
	}
	rows, cols := s.goal.Dimensions()
	content := make(megaverse.CurrentGrid, rows)
	for r := range content {
		content[r] = make([]*megaverse.RawCell, cols)
	}
	u := &Universe{
		ID:          uuid.NewString(),
		CandidateID: candidate,
		Phase:       s.phase,
		Content:     content,
	}
	s.universes[candidate] = u
	return u
}

func bounds(g megaverse.CurrentGrid, pos megaverse.Position) error {
	if _, ok := g.Cell(pos); !ok {
		rows, cols := g.Dimensions()
		return fmt.Errorf("%w: %s in %dx%d", ErrOutOfBounds, pos, rows, cols)
	}
	return nil
}

func validateGoal(goal megaverse.GoalGrid) error {
	if len(goal) == 0 {
		return megaverse.Invalid("goal", "must have at least one row")
	}
	width := len(goal[0])
	if width == 0 {
		return megaverse.Invalid("goal", "rows must not be empty")
	}
	for r, row := range goal {
		if len(row) != width {
			return megaverse.Invalid("goal", "row %d has %d columns, expected %d", r, len(row), width)
		}
		for c, label := range row {
			if !label.Valid() {
				return &megaverse.CellError{
					Field: fmt.Sprintf("goal[%d][%d]", r, c),
					Value: string(label),
					Err:   megaverse.ErrUnknownLabel,
				}
			}
		}
	}
	return nil
}

func cloneGoal(g megaverse.GoalGrid) megaverse.GoalGrid {
	out := make(megaverse.GoalGrid, len(g))
	for i, row := range g {
		out[i] = append([]megaverse.Label(nil), row...)
	}
	return out
}

// cloneCurrent copies rows. Cells are never mutated in place, so pointers are shared.
func cloneCurrent(g megaverse.CurrentGrid) megaverse.CurrentGrid {
	out := make(megaverse.CurrentGrid, len(g))
	for i, row := range g {
		out[i] = append([]*megaverse.RawCell(nil), row...)
	}
	return out
}
