package megaverse

import "fmt"

// Kind is the numeric entity type used by the API.
type Kind int

const (
	KindPolyanet Kind = 0
	KindSoloon   Kind = 1
	KindCometh   Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindPolyanet:
		return "polyanet"
	case KindSoloon:
		return "soloon"
	case KindCometh:
		return "cometh"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorWhite  Color = "white"
)

func (c Color) Valid() bool {
	_, ok := soloonLabels[c]
	return ok
}

type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func (d Direction) Valid() bool {
	_, ok := comethLabels[d]
	return ok
}

// Entity is the closed set of placeable objects: Polyanet, Soloon and Cometh.
type Entity interface {
	Kind() Kind
	entity()
}

type Polyanet struct{}

type Soloon struct {
	Color Color
}

type Cometh struct {
	Direction Direction
}

func (Polyanet) Kind() Kind { return KindPolyanet }
func (Soloon) Kind() Kind   { return KindSoloon }
func (Cometh) Kind() Kind   { return KindCometh }

func (Polyanet) entity() {}
func (Soloon) entity()   {}
func (Cometh) entity()   {}

// Label is the goal-map name of a cell's content.
type Label string

const (
	LabelSpace        Label = "SPACE"
	LabelPolyanet     Label = "POLYANET"
	LabelBlueSoloon   Label = "BLUE_SOLOON"
	LabelRedSoloon    Label = "RED_SOLOON"
	LabelPurpleSoloon Label = "PURPLE_SOLOON"
	LabelWhiteSoloon  Label = "WHITE_SOLOON"
	LabelUpCometh     Label = "UP_COMETH"
	LabelDownCometh   Label = "DOWN_COMETH"
	LabelLeftCometh   Label = "LEFT_COMETH"
	LabelRightCometh  Label = "RIGHT_COMETH"
)

var labelOrder = []Label{
	LabelSpace,
	LabelPolyanet,
	LabelBlueSoloon,
	LabelRedSoloon,
	LabelPurpleSoloon,
	LabelWhiteSoloon,
	LabelUpCometh,
	LabelDownCometh,
	LabelLeftCometh,
	LabelRightCometh,
}

// label -> descriptor; SPACE maps to nil.
var labelEntities = map[Label]Entity{
	LabelSpace:        nil,
	LabelPolyanet:     Polyanet{},
	LabelBlueSoloon:   Soloon{Color: ColorBlue},
	LabelRedSoloon:    Soloon{Color: ColorRed},
	LabelPurpleSoloon: Soloon{Color: ColorPurple},
	LabelWhiteSoloon:  Soloon{Color: ColorWhite},
	LabelUpCometh:     Cometh{Direction: DirectionUp},
	LabelDownCometh:   Cometh{Direction: DirectionDown},
	LabelLeftCometh:   Cometh{Direction: DirectionLeft},
	LabelRightCometh:  Cometh{Direction: DirectionRight},
}

// kind/attribute -> label.
var (
	soloonLabels = map[Color]Label{
		ColorBlue:   LabelBlueSoloon,
		ColorRed:    LabelRedSoloon,
		ColorPurple: LabelPurpleSoloon,
		ColorWhite:  LabelWhiteSoloon,
	}
	comethLabels = map[Direction]Label{
		DirectionUp:    LabelUpCometh,
		DirectionDown:  LabelDownCometh,
		DirectionLeft:  LabelLeftCometh,
		DirectionRight: LabelRightCometh,
	}
)

// Labels returns every cell label in canonical order.
func Labels() []Label {
	return append([]Label(nil), labelOrder...)
}

func (l Label) Valid() bool {
	_, ok := labelEntities[l]
	return ok
}

// DescriptorForLabel maps a goal label to its entity. SPACE yields ok=false and no error.
func DescriptorForLabel(label Label) (Entity, bool, error) {
	e, known := labelEntities[label]
	if !known {
		return nil, false, &CellError{Field: "label", Value: string(label), Err: ErrUnknownLabel}
	}
	if e == nil {
		return nil, false, nil
	}
	return e, true, nil
}

// LabelFor is the inverse of DescriptorForLabel. A nil entity is SPACE; an entity carrying an
// unrecognized attribute yields the empty label.
func LabelFor(e Entity) Label {
	switch v := e.(type) {
	case nil:
		return LabelSpace
	case Polyanet:
		return LabelPolyanet
	case Soloon:
		return soloonLabels[v.Color]
	case Cometh:
		return comethLabels[v.Direction]
	default:
		return ""
	}
}

// LabelForCell translates a raw current-map cell into its label.
func LabelForCell(raw *RawCell) (Label, error) {
	if raw == nil {
		return LabelSpace, nil
	}
	if raw.Type == nil {
		return "", &CellError{Field: "type", Err: ErrMissingKind}
	}
	switch Kind(*raw.Type) {
	case KindPolyanet:
		return LabelPolyanet, nil
	case KindSoloon:
		if raw.Color == nil {
			return "", &CellError{Field: "color", Err: ErrMissingAttribute}
		}
		label, ok := soloonLabels[Color(*raw.Color)]
		if !ok {
			return "", &CellError{Field: "color", Value: *raw.Color, Err: ErrUnknownAttribute}
		}
		return label, nil
	case KindCometh:
		if raw.Direction == nil {
			return "", &CellError{Field: "direction", Err: ErrMissingAttribute}
		}
		label, ok := comethLabels[Direction(*raw.Direction)]
		if !ok {
			return "", &CellError{Field: "direction", Value: *raw.Direction, Err: ErrUnknownAttribute}
		}
		return label, nil
	default:
		return "", &CellError{Field: "type", Value: *raw.Type, Err: ErrUnknownKind}
	}
}

// RawCellFor renders an entity in the current-map wire form. A nil entity is nil (space).
func RawCellFor(e Entity) *RawCell {
	if e == nil {
		return nil
	}
	kind := int(e.Kind())
	cell := &RawCell{Type: &kind}
	switch v := e.(type) {
	case Soloon:
		color := string(v.Color)
		cell.Color = &color
	case Cometh:
		direction := string(v.Direction)
		cell.Direction = &direction
	}
	return cell
}
