package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Step is one unit of the batch pipeline. Steps read their inputs from
// the shared state and write their outputs back before returning.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, state *State) error
}

// stepOrder is the canonical execution order.
var stepOrder = []string{StepIDLoad, StepIDClean, StepIDEDA, StepIDModel, StepIDReport}

// ResolveSteps normalizes a step selection into execution order. An empty
// selection means every step. The load step is always part of the plan:
// the table has to come from somewhere.
func ResolveSteps(names []string) ([]string, error) {
	if len(names) == 0 {
		plan := make([]string, len(stepOrder))
		copy(plan, stepOrder)
		return plan, nil
	}

	selected := map[string]bool{StepIDLoad: true}
	for _, name := range names {
		id := strings.ToLower(strings.TrimSpace(name))
		if id == "" {
			continue
		}
		if !knownStep(id) {
			return nil, fmt.Errorf("unknown step %q (valid steps: %s)", name, strings.Join(stepOrder, ", "))
		}
		selected[id] = true
	}

	var plan []string
	for _, id := range stepOrder {
		if selected[id] {
			plan = append(plan, id)
		}
	}
	return plan, nil
}

func knownStep(id string) bool {
	for _, known := range stepOrder {
		if id == known {
			return true
		}
	}
	return false
}

func containsStep(plan []string, id string) bool {
	for _, step := range plan {
		if step == id {
			return true
		}
	}
	return false
}
