package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the alert delivery journal",
	Long:  `List recorded alert deliveries, newest first, with per-status totals.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("path", "p", "", "Filter by monitored path")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (delivered, exhausted_retries)")
	historyCmd.Flags().Duration("since", 0, "Only show entries newer than this duration")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum entries to show")
	historyCmd.Flags().Int("prune", -1, "Keep only the newest N entries per path before listing")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("path")
	status, _ := cmd.Flags().GetString("status")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")
	keep, _ := cmd.Flags().GetInt("prune")

	cfg.Storage.Enabled = true
	journal, err := initJournal(cfg)
	if err != nil {
		return err
	}
	defer journal.Close()

	if keep >= 0 {
		deleted, err := journal.Prune(cmd.Context(), keep)
		if err != nil {
			return fmt.Errorf("prune journal: %w", err)
		}
		fmt.Printf("Pruned %d entries.\n\n", deleted)
	}

	filter := model.JournalFilter{
		Path:   path,
		Status: model.OutcomeStatus(status),
		Limit:  limit,
	}
	if since > 0 {
		filter.StartTime = time.Now().UTC().Add(-since)
	}

	entries, err := journal.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list journal: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No alerts recorded. Run 'dguard check' or 'dguard watch' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tPATH\tTIER\tCHANNEL\tSTATUS\tATTEMPTS\tREASON\n")
	for _, e := range entries {
		reason := e.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Path, e.Tier, e.Channel, e.Status, e.Attempts, reason,
		)
	}
	w.Flush()

	counts, err := journal.CountByStatus(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("count journal: %w", err)
	}
	fmt.Printf("\nDelivered: %d  Failed: %d\n",
		counts[model.StatusDelivered], counts[model.StatusExhaustedRetries])

	return nil
}
