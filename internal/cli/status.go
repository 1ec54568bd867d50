package cli

import (
	"pantry-cli/internal/model"
	"pantry-cli/internal/query"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workspace status and expiry alert counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}

			evs, err := svc.Events(cmdContext(cmd), 0)
			if err != nil {
				return writeErr(cmd, err)
			}

			items := svc.Items()
			completed := 0
			tiers := map[model.AlertTier]int{}
			for _, row := range svc.View(model.FilterUncompleted, "").Rows {
				if row.Tier != model.TierNone {
					tiers[row.Tier]++
				}
			}
			for _, it := range items {
				if it.IsCompleted {
					completed++
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":       svc.Store.Dir,
					"workspace": app.Workspace,
					"policy":    svc.Policy,
					"items":     len(items),
					"completed": completed,
					"open":      len(items) - completed,
					"alerts": map[string]int{
						string(model.TierCritical): tiers[model.TierCritical],
						string(model.TierWarning):  tiers[model.TierWarning],
						string(model.TierSafe):     tiers[model.TierSafe],
					},
					"criticalDays": query.CriticalDays,
					"warningDays":  query.WarningDays,
					"events":       len(evs),
				},
			})
		},
	}
	return cmd
}
