package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// InspectionProfile declares one batch check applied across devices.
type InspectionProfile struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Tool        string            `yaml:"tool"`
	Devices     []string          `yaml:"devices"`
	Checks      []InspectionCheck `yaml:"checks"`
}

// InspectionCheck is a single declarative check within a profile.
type InspectionCheck struct {
	Name      string         `yaml:"name"`
	Operation string         `yaml:"operation"`
	Arguments map[string]any `yaml:"arguments,omitempty"`
}

// LoadInspectionProfiles reads the profiles file.
func LoadInspectionProfiles(path string) ([]InspectionProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "read inspection profiles", err)
	}
	var doc struct {
		Profiles []InspectionProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "parse inspection profiles", err)
	}
	return doc.Profiles, nil
}

// InspectionPlan derives a plan from static profiles instead of the LLM:
// one task per device per check, all feasible by construction.
func InspectionPlan(profiles []InspectionProfile) (*thread.Plan, error) {
	if len(profiles) == 0 {
		return nil, types.NewError(types.PLAN_BUILD_FAILED, "no inspection profiles configured")
	}

	plan := &thread.Plan{Strategy: "inspection"}
	for _, p := range profiles {
		for _, device := range p.Devices {
			for _, check := range p.Checks {
				args := map[string]any{
					"device":    device,
					"operation": check.Operation,
				}
				for k, v := range check.Arguments {
					args[k] = v
				}
				plan.Tasks = append(plan.Tasks, thread.Task{
					Description: fmt.Sprintf("%s: %s on %s", p.Name, check.Name, device),
					Feasibility: thread.FeasibilityFeasible,
					ToolName:    p.Tool,
					Arguments:   args,
				})
			}
		}
	}
	if err := plan.Validate(); err != nil {
		return nil, types.WrapError(types.PLAN_BUILD_FAILED, "inspection plan invalid", err)
	}
	return plan, nil
}
