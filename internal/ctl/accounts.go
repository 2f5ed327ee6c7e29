package ctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked accounts",
	}
	cmd.AddCommand(
		newAccountsAddCmd(a),
		newAccountsListCmd(a),
		newAccountsSetPrimaryCmd(a),
		newAccountsRemoveCmd(a),
	)
	return cmd
}

func newAccountsAddCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "add <ref>",
		Short: "Link an account under a credential ref (first added becomes the sender)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			acc, err := db.AddAccount(args[0], username)
			if err != nil {
				return err
			}
			role := "recipient"
			if acc.Primary {
				role = "sender"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %s as %s\n", acc.Ref, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "public username (filled automatically by login)")
	return cmd
}

func newAccountsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List linked accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			accounts, err := db.Accounts()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "REF\tUSERNAME\tROLE")
			for _, acc := range accounts {
				role := "recipient"
				if acc.Primary {
					role = "sender"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", acc.Ref, acc.Username, role)
			}
			return w.Flush()
		},
	}
}

func newAccountsSetPrimaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-primary <ref>",
		Short: "Make an account the sender; the other becomes the recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SetPrimary(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now the sender\n", args[0])
			return nil
		},
	}
}

func newAccountsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <ref>",
		Short: "Unlink an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RemoveAccount(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unlinked %s\n", args[0])
			return nil
		},
	}
}
