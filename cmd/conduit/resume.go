package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/netauto-ai/conduit/internal/orchestrator"
	"github.com/netauto-ai/conduit/internal/types"
)

var resumeWorkflowType string

var resumeCmd = &cobra.Command{
	Use:   "resume <thread-id> <decision...>",
	Short: "Answer a pending approval on an interrupted thread",
	Long: `Apply an operator decision to the thread's pending action and continue
the workflow. The decision verb is the first word:

  approve          execute the pending action as proposed
  edit {json}      execute with replacement arguments
  reject [reason]  refuse the action; policy decides abort vs skip
  abort            terminate the whole thread`,
	Example: `  conduit resume 4f9d... approve
  conduit resume 4f9d... edit '{"device":"r2","mtu":9000}'
  conduit resume 4f9d... reject wrong maintenance window`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResume,
}

var abortCmd = &cobra.Command{
	Use:   "abort <thread-id> [reason...]",
	Short: "Abort a thread",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAbort,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeWorkflowType, "workflow", "", "expected workflow type (guards against stale clients)")
}

func runResume(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	threadID, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	res, err := app.orch.Resume(cmd.Context(), threadID, strings.Join(args[1:], " "), resumeWorkflowType)
	if err != nil {
		return err
	}
	return printResumeResult(app, res)
}

func runAbort(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	threadID, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	res, err := app.orch.Abort(cmd.Context(), threadID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return printResumeResult(app, res)
}

func printResumeResult(app *app, res *orchestrator.ResumeResult) error {
	if app.out.JSON() {
		return app.out.PrintJSON(res)
	}

	app.out.PrintLine("thread: %s", res.ThreadID)
	app.out.PrintLine("stage:  %s", res.Stage)
	if res.Interrupted {
		printPending(app, res.Pending)
		app.out.PrintLine("")
		app.out.PrintLine("Answer with: conduit resume %s <approve|edit '{...}'|reject [reason]|abort>", res.ThreadID)
		return nil
	}
	if res.FinalMessage != "" {
		app.out.PrintLine("result: %s", res.FinalMessage)
	}
	return nil
}
