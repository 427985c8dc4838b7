package megaverse

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/danmuck/megaverse/internal/testutil/testlog"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestLabelForCellKnownCells(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		raw  *RawCell
		want Label
	}{
		{raw: nil, want: LabelSpace},
		{raw: &RawCell{Type: intPtr(0)}, want: LabelPolyanet},
		{raw: &RawCell{Type: intPtr(1), Color: strPtr("blue")}, want: LabelBlueSoloon},
		{raw: &RawCell{Type: intPtr(1), Color: strPtr("red")}, want: LabelRedSoloon},
		{raw: &RawCell{Type: intPtr(1), Color: strPtr("purple")}, want: LabelPurpleSoloon},
		{raw: &RawCell{Type: intPtr(1), Color: strPtr("white")}, want: LabelWhiteSoloon},
		{raw: &RawCell{Type: intPtr(2), Direction: strPtr("up")}, want: LabelUpCometh},
		{raw: &RawCell{Type: intPtr(2), Direction: strPtr("down")}, want: LabelDownCometh},
		{raw: &RawCell{Type: intPtr(2), Direction: strPtr("left")}, want: LabelLeftCometh},
		{raw: &RawCell{Type: intPtr(2), Direction: strPtr("right")}, want: LabelRightCometh},
	}
	for _, tc := range cases {
		got, err := LabelForCell(tc.raw)
		if err != nil {
			t.Fatalf("label for %+v: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestLabelForCellRejectsMalformedCells(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		raw   *RawCell
		want  error
		field string
	}{
		{name: "missing type", raw: &RawCell{Color: strPtr("blue")}, want: ErrMissingKind, field: "type"},
		{name: "missing color", raw: &RawCell{Type: intPtr(1)}, want: ErrMissingAttribute, field: "color"},
		{name: "bad color", raw: &RawCell{Type: intPtr(1), Color: strPtr("invalid")}, want: ErrUnknownAttribute, field: "color"},
		{name: "missing direction", raw: &RawCell{Type: intPtr(2)}, want: ErrMissingAttribute, field: "direction"},
		{name: "bad direction", raw: &RawCell{Type: intPtr(2), Direction: strPtr("invalid")}, want: ErrUnknownAttribute, field: "direction"},
		{name: "bad type", raw: &RawCell{Type: intPtr(999)}, want: ErrUnknownKind, field: "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LabelForCell(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var cellErr *CellError
			if !errors.As(err, &cellErr) {
				t.Fatalf("expected *CellError, got %T", err)
			}
			if cellErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, cellErr.Field)
			}
			if !errdefs.IsInvalidArgument(err) {
				t.Fatalf("expected invalid-argument class for %v", err)
			}
		})
	}
}

func TestCellErrorCarriesOffendingValue(t *testing.T) {
	testlog.Start(t)
	_, err := LabelForCell(&RawCell{Type: intPtr(1), Color: strPtr("invalid")})
	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("expected *CellError, got %v", err)
	}
	if cellErr.Value != "invalid" {
		t.Fatalf("unexpected value: %#v", cellErr.Value)
	}
	_, err = LabelForCell(&RawCell{Type: intPtr(999)})
	if !errors.As(err, &cellErr) || cellErr.Value != 999 {
		t.Fatalf("expected kind value 999, got %v", err)
	}
}

func TestDescriptorForLabel(t *testing.T) {
	testlog.Start(t)
	e, ok, err := DescriptorForLabel(LabelSpace)
	if err != nil || ok || e != nil {
		t.Fatalf("expected SPACE to be absent, got e=%v ok=%v err=%v", e, ok, err)
	}
	e, ok, err = DescriptorForLabel(LabelPolyanet)
	if err != nil || !ok || e != (Polyanet{}) {
		t.Fatalf("unexpected polyanet descriptor: e=%v ok=%v err=%v", e, ok, err)
	}
	e, _, _ = DescriptorForLabel(LabelBlueSoloon)
	if e != (Soloon{Color: ColorBlue}) {
		t.Fatalf("unexpected soloon descriptor: %#v", e)
	}
	e, _, _ = DescriptorForLabel(LabelUpCometh)
	if e != (Cometh{Direction: DirectionUp}) {
		t.Fatalf("unexpected cometh descriptor: %#v", e)
	}
	if _, _, err := DescriptorForLabel(Label("GALAXY")); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
}

func TestLabelDescriptorRoundTrip(t *testing.T) {
	testlog.Start(t)
	seen := 0
	for _, label := range Labels() {
		e, ok, err := DescriptorForLabel(label)
		if err != nil {
			t.Fatalf("descriptor for %s: %v", label, err)
		}
		if !ok {
			if label != LabelSpace {
				t.Fatalf("only SPACE may be absent, got %s", label)
			}
			continue
		}
		seen++
		if got := LabelFor(e); got != label {
			t.Fatalf("LabelFor(%#v) = %s, want %s", e, got, label)
		}
		fromCell, err := LabelForCell(RawCellFor(e))
		if err != nil {
			t.Fatalf("label for raw %#v: %v", e, err)
		}
		if fromCell != label {
			t.Fatalf("raw round trip for %s gave %s", label, fromCell)
		}
	}
	if seen != 9 {
		t.Fatalf("expected 9 entity labels, got %d", seen)
	}
}

func TestAttributeValidity(t *testing.T) {
	testlog.Start(t)
	if !ColorPurple.Valid() || Color("green").Valid() {
		t.Fatalf("unexpected color validity")
	}
	if !DirectionLeft.Valid() || Direction("north").Valid() {
		t.Fatalf("unexpected direction validity")
	}
	if LabelFor(Soloon{Color: "green"}) != "" {
		t.Fatalf("expected empty label for unknown color")
	}
}

func TestPositionValidate(t *testing.T) {
	testlog.Start(t)
	if err := (Position{Row: 0, Column: 0}).Validate(); err != nil {
		t.Fatalf("origin should be valid: %v", err)
	}
	for _, pos := range []Position{{Row: -1, Column: 0}, {Row: 0, Column: -3}} {
		err := pos.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %v, got %v", pos, err)
		}
		if !IsValidation(err) {
			t.Fatalf("expected validation class for %v", pos)
		}
	}
}

func TestCurrentGridCell(t *testing.T) {
	testlog.Start(t)
	grid := CurrentGrid{{nil, &RawCell{Type: intPtr(0)}}}
	cell, ok := grid.Cell(Position{Row: 0, Column: 1})
	if !ok || cell == nil {
		t.Fatalf("expected polyanet cell")
	}
	if _, ok := grid.Cell(Position{Row: 1, Column: 0}); ok {
		t.Fatalf("expected out-of-range row")
	}
	rows, cols := grid.Dimensions()
	if rows != 1 || cols != 2 {
		t.Fatalf("unexpected dimensions %dx%d", rows, cols)
	}
}
