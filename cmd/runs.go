package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batlife/core/model"
	"github.com/kilianp07/batlife/core/runstore"
)

var runsOpts struct {
	strategy string
	limit    int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Run history commands",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs, oldest first",
	RunE:  runRunsLs,
}

func init() {
	runsLsCmd.Flags().StringVarP(&runsOpts.strategy, "strategy", "s", "", "only runs with this strategy")
	runsLsCmd.Flags().IntVarP(&runsOpts.limit, "limit", "n", 20, "most recent runs to show, 0 for all")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsLs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := runstore.RunQuery{Limit: runsOpts.limit}
	if runsOpts.strategy != "" {
		st, err := model.ParseStrategy(runsOpts.strategy)
		if err != nil {
			return err
		}
		q.Strategy = st.String()
	}
	store, err := runstore.Open(cfg.Store.Options())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTIME\tSTRATEGY\tKWH\tDAYS\tFINAL SOH\tSOURCE")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%.6f\t%s\n",
			r.ID, r.Timestamp.Local().Format(time.DateTime), r.Strategy, r.NominalKWh, len(r.SOH), r.FinalSOH(), r.Source)
	}
	return tw.Flush()
}
