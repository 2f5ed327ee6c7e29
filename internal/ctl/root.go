// Package ctl implements the telesyncctl command tree: account linking,
// option flags, login and run history, all over the profile store.
package ctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nkarpov/telesync/internal/config"
	"github.com/nkarpov/telesync/internal/profile"
	"github.com/nkarpov/telesync/internal/store"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the telesyncctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "telesyncctl",
		Short:         "Manage telesync profiles: accounts, options and run history",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.profileFlag, "profile", "", "profile name (overrides config default)")

	rootCmd.AddCommand(
		newAccountsCmd(a),
		newOptionsCmd(a),
		newLoginCmd(a),
		newRunsCmd(a),
		newDoctorCmd(a),
	)
	return rootCmd
}

// app holds the per-invocation wiring shared by all subcommands.
type app struct {
	profileFlag string
	profile     string
	cfg         *config.Config
}

func (a *app) init() error {
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.profile = profile.Resolve(a.profileFlag, cfg.DefaultProfile)
	return profile.ValidateName(a.profile)
}

// openStore opens the profile's database, migrating it if needed. Callers
// close it.
func (a *app) openStore() (*store.DB, error) {
	if err := profile.EnsureDir(a.profile); err != nil {
		return nil, err
	}
	db, err := store.Open(profile.DBPath(a.profile))
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
