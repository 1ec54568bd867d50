package cli

import (
	"github.com/spf13/cobra"
)

func newPassphraseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passphrase",
		Short: "Edit passphrase management",
	}
	cmd.AddCommand(newPassphraseChangeCmd(app))
	return cmd
}

func newPassphraseChangeCmd(app *App) *cobra.Command {
	var current string
	var next string
	var confirm string

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Change the edit passphrase (min 4 characters)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// --passphrase answers the current passphrase; new values are always typed.
			p := newCLIPrompter(cmd, &App{})
			if !cmd.Flags().Changed("current") {
				current = app.Passphrase
				if current == "" {
					current = p.Challenge("Current passphrase")
				}
			}
			if !cmd.Flags().Changed("new") {
				next = p.Challenge("New passphrase")
			}
			if !cmd.Flags().Changed("confirm") {
				confirm = p.Challenge("Confirm new passphrase")
			}
			if err := svc.ChangePassphrase(cmdContext(cmd), current, next, confirm); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"changed": true}})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current passphrase")
	cmd.Flags().StringVar(&next, "new", "", "New passphrase")
	cmd.Flags().StringVar(&confirm, "confirm", "", "New passphrase again")
	return cmd
}
