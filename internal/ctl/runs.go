package ctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "Show the job summaries of the most recent sync run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			jobs, err := db.LastRun()
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s (%s)\n",
				jobs[0].RunID, jobs[0].FinishedAt.Format("2006-01-02 15:04:05"))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tSTATUS\tPROGRESS\tREASON")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", j.Kind, j.Status, j.Current, j.Total, j.Reason)
			}
			return w.Flush()
		},
	}
}
