package megaverse

// GoalGrid is the target configuration, rows of cell labels.
type GoalGrid [][]Label

// Dimensions returns rows and the width of the first row.
func (g GoalGrid) Dimensions() (int, int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}

// RawCell is one current-map cell as the API reports it. A nil *RawCell is space.
type RawCell struct {
	Type      *int    `json:"type,omitempty" yaml:"type,omitempty"`
	Color     *string `json:"color,omitempty" yaml:"color,omitempty"`
	Direction *string `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// CurrentGrid is the present state of the megaverse.
type CurrentGrid [][]*RawCell

// Dimensions returns rows and the width of the first row.
func (g CurrentGrid) Dimensions() (int, int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}

// Cell returns the cell at pos, or ok=false when pos lies outside the grid.
func (g CurrentGrid) Cell(pos Position) (*RawCell, bool) {
	if pos.Row < 0 || pos.Row >= len(g) {
		return nil, false
	}
	row := g[pos.Row]
	if pos.Column < 0 || pos.Column >= len(row) {
		return nil, false
	}
	return row[pos.Column], true
}
