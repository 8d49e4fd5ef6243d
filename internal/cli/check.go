package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/disk-guardian/pkg/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Run one evaluation cycle for each path",
	Long: `Sample each path once, print its report and deliver an alert when the
threshold is crossed. Exits non-zero when a cycle aborts or an alert could
not be delivered.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("quiet", "q", false, "Only print reports that needed an alert")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Monitor.Paths = args
	}

	quiet, _ := cmd.Flags().GetBool("quiet")

	w, err := initMonitor(cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	results, runErr := w.monitor.RunAll(cmd.Context(), cfg.Monitor.Paths)
	failed := printResults(os.Stdout, results, quiet)

	if runErr != nil {
		return fmt.Errorf("check: %w", runErr)
	}
	if failed > 0 {
		return fmt.Errorf("check: %d alert(s) not delivered", failed)
	}
	return nil
}

// printResults writes each report and returns how many alerts failed.
func printResults(out io.Writer, results []*monitor.CycleResult, quiet bool) int {
	failed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Outcome.Failed() {
			failed++
		}
		if quiet && !r.Alerted {
			continue
		}

		fmt.Fprint(out, r.Report)
		if r.Alerted {
			fmt.Fprintf(out, "Alert:    %s after %d attempt(s)", r.Outcome.Status, r.Outcome.Attempts)
			if r.Outcome.Reason != "" {
				fmt.Fprintf(out, " (%s)", r.Outcome.Reason)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)
	}
	return failed
}
