package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent uploads, predictions and training runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("action", "", "only show this action (upload, predict, train, categories)")
	historyCmd.Flags().Bool("failed", false, "only show failed operations")
	historyCmd.Flags().String("label", "", "only show entries for this label")
	historyCmd.Flags().Duration("since", 0, "only show entries newer than this (e.g. 24h)")
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().Duration("prune", 0, "delete entries older than this instead of listing")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeDB, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		n, err := store.DeleteBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s Deleted %d entries\n", ui.StatusIcon(true), n)
		return nil
	}

	action, _ := cmd.Flags().GetString("action")
	label, _ := cmd.Flags().GetString("label")
	limit, _ := cmd.Flags().GetInt("limit")
	filter := history.QueryFilter{
		Action: history.Action(action),
		Label:  label,
		Limit:  limit,
	}
	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		filter.Outcome = history.OutcomeFailed
	}
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		t := time.Now().Add(-since)
		filter.Since = &t
	}

	entries, err := store.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.Subtle.Println("No history yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		summary := e.Summary
		if e.Error != "" {
			summary = e.Error
		}
		rows = append(rows, []string{
			ui.StatusIcon(e.Outcome == history.OutcomeOK),
			e.Timestamp.Local().Format(time.DateTime),
			string(e.Action),
			e.Label,
			summary,
		})
	}
	ui.Table(os.Stdout, []string{" ", "TIME", "ACTION", "LABEL", "SUMMARY"}, rows)
	return nil
}
