package planner

import (
	"context"

	"github.com/netauto-ai/conduit/internal/intent"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
)

// InspectionAware wraps a Planner, serving inspection-strategy requests from
// declarative profiles instead of the LLM. Requests under any other strategy
// pass through.
type InspectionAware struct {
	inner    Planner
	profiles []InspectionProfile
}

// NewInspectionAware creates the wrapper. With no profiles it is a pure
// pass-through.
func NewInspectionAware(inner Planner, profiles []InspectionProfile) *InspectionAware {
	return &InspectionAware{inner: inner, profiles: profiles}
}

// BuildPlan implements Planner.
func (p *InspectionAware) BuildPlan(ctx context.Context, query string, in intent.Intent,
	strat strategy.Strategy, tools []tool.Descriptor) (*thread.Plan, error) {

	if strat == strategy.StrategyInspection && len(p.profiles) > 0 {
		return InspectionPlan(p.profiles)
	}
	return p.inner.BuildPlan(ctx, query, in, strat, tools)
}
