// Package render draws goal grids, pending operations and run summaries for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/reconcile"
)

var glyphs = map[megaverse.Label]string{
	megaverse.LabelSpace:        ".",
	megaverse.LabelPolyanet:     "O",
	megaverse.LabelBlueSoloon:   "S",
	megaverse.LabelRedSoloon:    "S",
	megaverse.LabelPurpleSoloon: "S",
	megaverse.LabelWhiteSoloon:  "S",
	megaverse.LabelUpCometh:     "^",
	megaverse.LabelDownCometh:   "v",
	megaverse.LabelLeftCometh:   "<",
	megaverse.LabelRightCometh:  ">",
}

var colors = map[megaverse.Label]lipgloss.Color{
	megaverse.LabelSpace:        "#444444",
	megaverse.LabelPolyanet:     "#5B8DEF",
	megaverse.LabelBlueSoloon:   "#3B82F6",
	megaverse.LabelRedSoloon:    "#FF6B6B",
	megaverse.LabelPurpleSoloon: "#A855F7",
	megaverse.LabelWhiteSoloon:  "#EEEEEE",
	megaverse.LabelUpCometh:     "#F5A623",
	megaverse.LabelDownCometh:   "#F5A623",
	megaverse.LabelLeftCometh:   "#F5A623",
	megaverse.LabelRightCometh:  "#F5A623",
}

// Printer renders with a color profile detected from its output.
type Printer struct {
	r *lipgloss.Renderer
}

func New(w io.Writer) *Printer {
	return &Printer{r: lipgloss.NewRenderer(w)}
}

func Glyph(label megaverse.Label) string {
	if g, ok := glyphs[label]; ok {
		return g
	}
	return "?"
}

// Grid draws the goal grid one row per line. Cells the plan touches are bracketed and bold.
func (p *Printer) Grid(goal megaverse.GoalGrid, plan reconcile.Plan) string {
	pending := make(map[megaverse.Position]struct{}, len(plan.Anomalies))
	for _, a := range plan.Anomalies {
		pending[a.Position] = struct{}{}
	}

	lines := make([]string, 0, len(goal))
	for r, row := range goal {
		cells := make([]string, 0, len(row))
		for c, label := range row {
			style := p.r.NewStyle().Foreground(colors[label])
			cell := " " + Glyph(label) + " "
			if _, ok := pending[megaverse.Position{Row: r, Column: c}]; ok {
				style = style.Bold(true)
				cell = "[" + Glyph(label) + "]"
			}
			cells = append(cells, style.Render(cell))
		}
		lines = append(lines, strings.Join(cells, ""))
	}
	return strings.Join(lines, "\n")
}

func (p *Printer) Legend() string {
	parts := make([]string, 0, len(megaverse.Labels()))
	for _, label := range megaverse.Labels() {
		glyph := p.r.NewStyle().Foreground(colors[label]).Render(Glyph(label))
		parts = append(parts, fmt.Sprintf("%s %s", glyph, label))
	}
	note := p.r.NewStyle().Foreground(lipgloss.Color("#888888")).Render("[x] pending change")
	return strings.Join(parts, "  ") + "\n" + note
}

func (p *Printer) Summary(s reconcile.Summary) string {
	title := "RECONCILE"
	if s.DryRun {
		title = "PLAN (dry run)"
	}
	head := p.r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("%s · %s", title, s.RunID))
	lines := []string{
		fmt.Sprintf("bounds     %dx%d", s.Plan.Rows, s.Plan.Columns),
		fmt.Sprintf("anomalies  %d", s.Anomalies()),
		fmt.Sprintf("operations %d", len(s.Plan.Operations())),
		fmt.Sprintf("deleted    %d", s.Deleted),
		fmt.Sprintf("created    %d", s.Created),
		fmt.Sprintf("duration   %s", s.Duration.Round(time.Millisecond)),
	}
	body := p.r.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return p.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(head + "\n" + body)
}

// Operations lists each planned call on its own line.
func (p *Printer) Operations(plan reconcile.Plan) string {
	ops := plan.Operations()
	if len(ops) == 0 {
		return p.r.NewStyle().Foreground(lipgloss.Color("#888888")).Render("no changes")
	}
	del := p.r.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	add := p.r.NewStyle().Foreground(lipgloss.Color("#4ADE80"))
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		mark := add.Render("+")
		if op.Action == reconcile.ActionDelete {
			mark = del.Render("-")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", mark, op.Position, op.Label()))
	}
	return strings.Join(lines, "\n")
}
