package megaverse

import "fmt"

// Position addresses one cell of the grid.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("[%d, %d]", p.Row, p.Column)
}

// Validate rejects negative coordinates.
func (p Position) Validate() error {
	if p.Row < 0 {
		return Invalid("position", "row must be non-negative, got %d", p.Row)
	}
	if p.Column < 0 {
		return Invalid("position", "column must be non-negative, got %d", p.Column)
	}
	return nil
}
