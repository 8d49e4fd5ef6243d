package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the remediation actions for each severity tier",
	RunE:  runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

func runActions(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := initEngine(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIER\t#\tACTION\n")
	for _, tier := range model.Tiers {
		actions := engine.Actions(tier)
		if len(actions) == 0 {
			fmt.Fprintf(w, "%s\t-\tnone required\n", tier)
			continue
		}
		for i, action := range actions {
			fmt.Fprintf(w, "%s\t%d\t%s\n", tier, i+1, action)
		}
	}
	w.Flush()

	return nil
}
