package cli

import (
	"fmt"

	"pantry-cli/internal/model"
	"pantry-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var filter string
	var search string
	var title string
	var includeCompleted bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render the list as a markdown report (stdout, or <to>/inventory.md)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := model.ParseFilter(filter)
			if !ok {
				return writeErr(cmd, fmt.Errorf("invalid --filter %q (expected all|completed|uncompleted)", filter))
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			v := svc.View(f, search)
			opt := publish.RenderOptions{
				Title:           title,
				IncludeComplete: includeCompleted,
				TrackQuantity:   svc.Policy.TrackQuantity,
			}
			if to == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderMarkdown(v, opt))
				return err
			}
			res, err := publish.WriteReport(v, to, publish.WriteOptions{Render: opt, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory (default: print to stdout)")
	cmd.Flags().StringVar(&filter, "filter", "uncompleted", "Completion filter (all|completed|uncompleted)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name search")
	cmd.Flags().StringVar(&title, "title", "", "Report title (default: Pantry)")
	cmd.Flags().BoolVar(&includeCompleted, "include-completed", false, "List completed items in their own section")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing report")
	return cmd
}
