package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackupCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped copy of the workspace (sqlite, inventory.json, events.jsonl)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := svc.Store.Backup(cmdContext(cmd), to, svc.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			svc.Log.Info("backup written", zap.String("dir", res.Dir), zap.Int("items", res.Items))
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"pantry import " + res.Dir + "/inventory.json --replace"},
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Directory that receives the backup folder")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
