package cli

import (
	"fmt"
	"io"
	"os"

	"pantry-cli/internal/store"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import a browser export (the `inventory` array, or {inventory, editPassword})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b []byte
			var err error
			if args[0] == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			in, err := store.ParseExport(b)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("parse %s: %w", args[0], err))
			}
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := svc.Import(cmdContext(cmd), in, replace)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"imported": n,
					"replace":  replace,
					"items":    len(svc.Items()),
				},
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the whole collection (passphrase-gated)")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection in the browser's storage shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The passphrase is not exported.
			return writeOut(cmd, app, map[string]any{"inventory": svc.Items()})
		},
	}
	return cmd
}
