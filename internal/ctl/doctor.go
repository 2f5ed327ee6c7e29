package ctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nkarpov/telesync/internal/profile"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the profile store and configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "profile: %s\n", a.profile)
			fmt.Fprintf(out, "config: %s\n", profile.ConfigPath())
			if a.cfg.APIID == 0 || a.cfg.APIHash == "" {
				fmt.Fprintln(out, "api credentials: MISSING (set api_id and api_hash)")
			} else {
				fmt.Fprintln(out, "api credentials: ok")
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := db.Migrate()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "store: %s (schema v%d", profile.DBPath(a.profile), result.Version)
			if result.Dirty {
				fmt.Fprint(out, ", DIRTY")
			}
			fmt.Fprintln(out, ")")

			accounts, err := db.Accounts()
			if err != nil {
				return err
			}
			sender, recipient := false, false
			for _, acc := range accounts {
				if acc.Primary {
					sender = true
				} else {
					recipient = true
				}
			}
			fmt.Fprintf(out, "accounts: %d (sender linked: %t, recipient linked: %t)\n",
				len(accounts), sender, recipient)

			opts, err := db.Options()
			if err != nil {
				return err
			}
			if opts == nil {
				fmt.Fprintln(out, "options: not saved yet")
			} else if !opts.Enabled() {
				fmt.Fprintln(out, "options: saved, nothing enabled")
			} else {
				fmt.Fprintln(out, "options: ok")
			}
			return nil
		},
	}
}
