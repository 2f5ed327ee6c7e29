package ctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nkarpov/telesync/internal/store"
)

func newOptionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change the sync option flags",
	}
	cmd.AddCommand(
		newOptionsGetCmd(a),
		newOptionsSetCmd(a),
	)
	return cmd
}

func newOptionsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the saved option flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			opts, err := db.Options()
			if err != nil {
				return err
			}
			if opts == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no options saved yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, f := range optionFlags(opts) {
				fmt.Fprintf(w, "%s\t%t\n", f.name, *f.field)
			}
			return w.Flush()
		},
	}
}

func newOptionsSetCmd(a *app) *cobra.Command {
	opts := store.Options{}
	flags := optionFlags(&opts)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change option flags; unspecified flags keep their saved value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			saved, err := db.Options()
			if err != nil {
				return err
			}
			merged := store.Options{}
			if saved != nil {
				merged = *saved
			}

			mergedFlags := optionFlags(&merged)
			for i, f := range flags {
				if cmd.Flags().Changed(f.name) {
					*mergedFlags[i].field = *f.field
				}
			}
			if err := db.SetOptions(merged); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "options saved")
			return nil
		},
	}
	for _, f := range flags {
		cmd.Flags().BoolVar(f.field, f.name, false, f.help)
	}
	return cmd
}

type optionFlag struct {
	name  string
	field *bool
	help  string
}

// optionFlags maps option fields to flag names in a fixed order shared by
// get and set.
func optionFlags(o *store.Options) []optionFlag {
	return []optionFlag{
		{"favorites", &o.Favorites, "sync saved messages"},
		{"profile-name", &o.ProfileName, "sync first/last name and bio"},
		{"profile-media", &o.ProfileMedia, "sync avatars"},
		{"channels", &o.Channels, "sync public channel memberships"},
		{"privacy", &o.Privacy, "sync privacy settings"},
		{"secure", &o.Secure, "reserved"},
		{"stickers", &o.Stickers, "reserved"},
		{"bots", &o.Bots, "reserved"},
	}
}
