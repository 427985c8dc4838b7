package sandbox

import (
	"fmt"
	"os"

	"github.com/danmuck/megaverse/internal/megaverse"
	"gopkg.in/yaml.v3"
)

// GoalFixture is the on-disk goal description:
//
//	phase: 1
//	goal:
//	  - [SPACE, POLYANET]
//	  - [UP_COMETH, SPACE]
type GoalFixture struct {
	Phase int        `yaml:"phase"`
	Goal  [][]string `yaml:"goal"`
}

func LoadGoalFixture(path string) (GoalFixture, megaverse.GoalGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GoalFixture{}, nil, fmt.Errorf("sandbox: read goal fixture %s: %w", path, err)
	}
	fx, goal, err := ParseGoalFixture(data)
	if err != nil {
		return GoalFixture{}, nil, fmt.Errorf("sandbox: %s: %w", path, err)
	}
	return fx, goal, nil
}

// ParseGoalFixture decodes and validates a fixture. Labels must be known and rows rectangular.
func ParseGoalFixture(data []byte) (GoalFixture, megaverse.GoalGrid, error) {
	var fx GoalFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return GoalFixture{}, nil, megaverse.Invalid("fixture", "decode yaml: %v", err)
	}
	goal := make(megaverse.GoalGrid, len(fx.Goal))
	for r, row := range fx.Goal {
		goal[r] = make([]megaverse.Label, len(row))
		for c, label := range row {
			goal[r][c] = megaverse.Label(label)
		}
	}
	if err := validateGoal(goal); err != nil {
		return GoalFixture{}, nil, err
	}
	return fx, goal, nil
}

// CrossGoal builds a size x size goal with POLYANET diagonals, leaving margin cells of space
// at each end of both diagonals.
func CrossGoal(size, margin int) megaverse.GoalGrid {
	goal := make(megaverse.GoalGrid, size)
	for r := range goal {
		goal[r] = make([]megaverse.Label, size)
		for c := range goal[r] {
			goal[r][c] = megaverse.LabelSpace
			inside := r >= margin && r < size-margin
			if inside && (c == r || c == size-1-r) {
				goal[r][c] = megaverse.LabelPolyanet
			}
		}
	}
	return goal
}
