package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the local change log (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			evs, err := svc.Events(cmdContext(cmd), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	return cmd
}
