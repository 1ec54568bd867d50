package cli

import (
	"github.com/spf13/cobra"
)

func newResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every item and restore the default passphrase (passphrase-gated)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			done, err := svc.Reset(cmdContext(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"reset": done}})
		},
	}
	return cmd
}
