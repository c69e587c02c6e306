package export

import (
	"encoding/json"
	"fmt"
	"os"

	"choreo-planner/internal/formation"
	"choreo-planner/internal/log"
)

// SavePlan serializes a plan to an indented JSON file.
func SavePlan(plan *formation.Plan, filename string, logger *log.Logger) error {
	logger.Infof("saving formation plan to %s", filename)

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debugf("plan saved (%d bytes)", len(data))
	return nil
}

// LoadPlan reads a plan written by SavePlan.
func LoadPlan(filename string, logger *log.Logger) (*formation.Plan, error) {
	logger.Infof("loading formation plan from %s", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var plan formation.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	if len(plan.Assignment) != len(plan.Assigned) {
		return nil, fmt.Errorf("plan has %d assignments but %d assigned positions", len(plan.Assignment), len(plan.Assigned))
	}

	logger.Debugf("plan loaded: %d vehicles, complete=%t", len(plan.InitialGrid), plan.Complete)
	return &plan, nil
}
