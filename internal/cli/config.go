package cli

import (
	"pantry-cli/internal/logging"
	"pantry-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Global configuration (~/.pantry/config.yaml)",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetPolicyCmd(app))
	cmd.AddCommand(newConfigSetLogLevelCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the config file path and effective values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":            path,
					"config":          cfg,
					"effectivePolicy": cfg.EffectivePolicy(),
				},
			})
		},
	}
	return cmd
}

func newConfigSetPolicyCmd(app *App) *cobra.Command {
	var gate bool
	var merge bool
	var track bool

	cmd := &cobra.Command{
		Use:   "set-policy",
		Short: "Choose edit gate / merge / quantity behavior",
		Example: `  # The plain checklist variant: no passphrase, no merging, no quantities
  pantry config set-policy --edit-gate=false --merge=false --track-quantity=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			p := cfg.EffectivePolicy()
			if cmd.Flags().Changed("edit-gate") {
				p.EnforceEditGate = gate
			}
			if cmd.Flags().Changed("merge") {
				p.MergeOnDuplicateKey = merge
			}
			if cmd.Flags().Changed("track-quantity") {
				p.TrackQuantity = track
			}
			cfg.Policy = &p
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"policy": p}})
		},
	}

	cmd.Flags().BoolVar(&gate, "edit-gate", true, "Require the passphrase for toggle, quantity change and delete")
	cmd.Flags().BoolVar(&merge, "merge", true, "Merge adds into an open item with the same name and expiry")
	cmd.Flags().BoolVar(&track, "track-quantity", true, "Track quantities (off: every item has quantity 1)")
	return cmd
}

func newConfigSetLogLevelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-log-level <debug|info|warn|error>",
		Short: "Persist the default log level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logging.ParseLevel(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.Log = &store.LogConfig{Level: lvl.String()}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"level": lvl.String()}})
		},
	}
	return cmd
}
