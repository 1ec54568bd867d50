package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pantry-cli/internal/format"
	"pantry-cli/internal/inventory"
	"pantry-cli/internal/logging"
	"pantry-cli/internal/model"
	"pantry-cli/internal/store"
	"pantry-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir        string
	Workspace  string
	PrettyJSON bool
	Format     string
	LogLevel   string

	// Gate/confirmation answers for non-interactive use.
	Passphrase string
	Yes        bool

	cfg *store.GlobalConfig
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pantry",
		Short:        "Pantry (local-first) stock and expiry tracker: CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  pantry

  # Add stock (merges into an open item with the same name and expiry)
  pantry items add --name milk --quantity 2 --expiry 2024-01-10 --location fridge

  # What expires first?
  pantry items list --filter uncompleted --format table

  # Direct item lookup (shortcut for: pantry items show <id>)
  pantry 1704844800000
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		level := app.LogLevel
		if level == "" && cfg.Log != nil {
			level = cfg.Log.Level
		}
		app.LogLevel = level
		log, err := logging.New(cmd.ErrOrStderr(), level)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PANTRY_DIR", ""), "Path to store dir (overrides workspace resolution)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("PANTRY_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PANTRY_FORMAT", "json"), "Output format (json|yaml|table)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("PANTRY_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.Passphrase, "passphrase", envOr("PANTRY_PASSPHRASE", ""), "Edit passphrase for gated commands (prompted when omitted on a terminal)")
	cmd.PersistentFlags().BoolVarP(&app.Yes, "yes", "y", false, "Answer yes to confirmations")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newPassphraseCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	dir, err := resolveDir(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	log, err := logging.NewFile(dir, app.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	svc := inventory.New(store.Store{Dir: dir},
		inventory.WithPolicy(app.policy()),
		inventory.WithLogger(log),
	)
	if err := svc.Open(cmd.Context()); err != nil {
		return writeErr(cmd, err)
	}
	glyphs := ""
	if app.cfg != nil && app.cfg.TUI != nil {
		glyphs = app.cfg.TUI.Glyphs
	}
	return tui.Run(svc, tui.Options{Workspace: app.Workspace, Glyphs: glyphs})
}

// resolveDir picks the store dir:
// 1) --dir
// 2) --workspace
// 3) config currentWorkspace
// 4) the "default" workspace
func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	name := app.Workspace
	if name == "" && app.cfg != nil {
		name = app.cfg.CurrentWorkspace
	}
	if name == "" {
		name = "default"
	}
	d, err := store.WorkspaceDir(name)
	if err != nil {
		return "", err
	}
	app.Workspace = name
	app.Dir = d
	return d, nil
}

func (app *App) policy() model.Policy {
	return app.cfg.EffectivePolicy()
}

// openService resolves the workspace and loads it with the CLI prompter.
func openService(cmd *cobra.Command, app *App) (*inventory.Service, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	log := app.log
	if log == nil {
		log = zap.NewNop()
	}
	svc := inventory.New(store.Store{Dir: dir},
		inventory.WithPolicy(app.policy()),
		inventory.WithPrompter(newCLIPrompter(cmd, app)),
		inventory.WithLogger(log),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := svc.Open(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints v in the selected format. For --format table the envelope's data is rendered
// when it implements format.Tabler.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	if app.Format == "table" {
		if env, ok := v.(map[string]any); ok {
			if t, ok := env["data"].(format.Tabler); ok {
				v = t
			}
		}
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
