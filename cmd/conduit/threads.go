package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/netauto-ai/conduit/internal/types"
)

var purgeTTL time.Duration

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Inspect and manage persisted threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted threads, newest first",
	RunE:  runThreadsList,
}

var threadsShowCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Show the full state of one thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsShow,
}

var threadsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete threads idle longer than the TTL",
	RunE:  runThreadsPurge,
}

func init() {
	threadsPurgeCmd.Flags().DurationVar(&purgeTTL, "ttl", 0, "idle TTL override (default: orchestrator.thread_ttl)")

	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsShowCmd)
	threadsCmd.AddCommand(threadsPurgeCmd)
}

func runThreadsList(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	threads, err := app.orch.Threads(cmd.Context())
	if err != nil {
		return err
	}
	if app.out.JSON() {
		return app.out.PrintJSON(threads)
	}

	if len(threads) == 0 {
		app.out.PrintLine("no threads")
		return nil
	}
	rows := make([][]string, 0, len(threads))
	for _, t := range threads {
		query := t.Query
		if len(query) > 60 {
			query = query[:57] + "..."
		}
		rows = append(rows, []string{
			t.ThreadID.String(),
			t.Stage.String(),
			t.UpdatedAt.Local().Format(time.RFC3339),
			query,
		})
	}
	return app.out.PrintTable([]string{"THREAD", "STAGE", "UPDATED", "QUERY"}, rows)
}

func runThreadsShow(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	threadID, err := types.ParseID(args[0])
	if err != nil {
		return err
	}
	st, err := app.orch.Thread(cmd.Context(), threadID)
	if err != nil {
		return err
	}
	if app.out.JSON() {
		return app.out.PrintJSON(st)
	}

	app.out.PrintLine("thread:   %s", st.ThreadID)
	app.out.PrintLine("stage:    %s", st.Stage)
	app.out.PrintLine("strategy: %s", st.Strategy)
	app.out.PrintLine("query:    %s", st.Query)
	if st.Plan != nil {
		app.out.PrintLine("progress: step %d of %d", st.StepCursor, len(st.Plan.Tasks))
	}
	for _, rec := range st.History {
		status := "ok"
		if rec.Failed {
			status = "FAILED"
		}
		app.out.PrintLine("  [%s] %s via %s: %s", status, rec.ToolName, rec.ChannelUsed, rec.ResultSummary)
	}
	if st.Pending != nil {
		app.out.PrintLine("pending:  %s on %s channel", st.Pending.ToolName, st.Pending.Channel)
	}
	if st.FinalMessage != "" {
		app.out.PrintLine("result:   %s", st.FinalMessage)
	}
	return nil
}

func runThreadsPurge(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ttl := purgeTTL
	if ttl <= 0 {
		ttl = app.cfg.Orchestrator.ThreadTTL
	}
	purged, err := app.orch.Purge(cmd.Context(), ttl)
	if err != nil {
		return err
	}
	app.out.PrintLine("purged %d thread(s) idle longer than %s", purged, ttl)
	return nil
}
