package ctl

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nkarpov/telesync/internal/profile"
	"github.com/nkarpov/telesync/internal/tgclient"
)

func newLoginCmd(a *app) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "login <ref>",
		Short: "Authorize an account's session via the interactive code flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			if err := profile.EnsureDir(a.profile); err != nil {
				return err
			}

			factory := tgclient.NewFactory(a.cfg.APIID, a.cfg.APIHash, a.profile, zap.NewNop())
			username, err := factory.Login(cmd.Context(), ref, phone, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			existing, err := db.AccountByRef(ref)
			if err != nil {
				return err
			}
			if existing == nil {
				if _, err := db.AddAccount(ref, username); err != nil {
					return err
				}
			} else if existing.Username != username {
				if err := db.SetUsername(ref, username); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "authorized %s as @%s\n", ref, username)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number in international format (prompted when omitted)")
	return cmd
}
