package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/netauto-ai/conduit/internal/orchestrator"
	"github.com/netauto-ai/conduit/internal/types"
)

var routeThreadID string

var routeCmd = &cobra.Command{
	Use:   "route <request...>",
	Short: "Route a request through a supervised workflow",
	Long: `Classify a free-text request, plan its execution, and run it. The
workflow pauses and prints the pending action whenever a step needs
approval; use "conduit resume" to answer.`,
	Example: `  # Read-only fast path, completes immediately
  conduit route show interfaces on r1

  # Config change, suspends for approval
  conduit route set mtu 9000 on r1 uplink

  # Route onto an existing thread
  conduit route --thread 4f9d... verify the change took effect`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeThreadID, "thread", "", "existing thread ID (default: new thread)")
}

func runRoute(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	var threadID types.ID
	if routeThreadID != "" {
		threadID, err = types.ParseID(routeThreadID)
		if err != nil {
			return err
		}
	}

	res, err := app.orch.Route(cmd.Context(), strings.Join(args, " "), threadID)
	if err != nil {
		return err
	}
	return printRouteResult(app, res)
}

func printRouteResult(app *app, res *orchestrator.RouteResult) error {
	if app.out.JSON() {
		return app.out.PrintJSON(res)
	}

	app.out.PrintLine("thread:   %s", res.ThreadID)
	app.out.PrintLine("workflow: %s", res.WorkflowType)
	app.out.PrintLine("stage:    %s", res.Stage)
	printPlanSummary(app, res)

	if res.Interrupted {
		printPending(app, res.Pending)
		app.out.PrintLine("")
		app.out.PrintLine("Answer with: conduit resume %s <approve|edit '{...}'|reject [reason]|abort>", res.ThreadID)
		return nil
	}
	if res.FinalMessage != "" {
		app.out.PrintLine("result:   %s", res.FinalMessage)
	}
	return nil
}

func printPlanSummary(app *app, res *orchestrator.RouteResult) {
	p := res.ExecutionPlan
	if len(p.FeasibleTasks)+len(p.UncertainTasks)+len(p.InfeasibleTasks) == 0 {
		return
	}
	app.out.PrintLine("plan:     %d feasible, %d uncertain, %d infeasible",
		len(p.FeasibleTasks), len(p.UncertainTasks), len(p.InfeasibleTasks))
	for _, t := range p.InfeasibleTasks {
		app.out.PrintLine("  cannot do: %s", t)
	}
}

func printPending(app *app, pending *orchestrator.PendingSummary) {
	if pending == nil {
		return
	}
	app.out.PrintLine("")
	app.out.PrintLine("PAUSED: %s", pending.Reason)
	app.out.PrintLine("  tool:    %s", pending.ToolName)
	app.out.PrintLine("  channel: %s", pending.Channel)
	for k, v := range pending.Arguments {
		app.out.PrintLine("  arg %s = %v", k, v)
	}
	if pending.RollbackWarning != "" {
		app.out.PrintLine("  WARNING: %s", pending.RollbackWarning)
	}
}
