// Package tui is the interactive terminal front end: a filtered, urgency-ordered list of items with
// modal forms for adding, gated edits and passphrase changes.
package tui

import (
	"context"

	"pantry-cli/internal/inventory"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Workspace string
	// Glyphs is the configured glyph set ("unicode" or "ascii").
	Glyphs string
}

// Run starts the TUI on an opened service and blocks until the user quits.
func Run(svc *inventory.Service, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference(opts.Glyphs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes <-chan struct{}
	if sw, err := startStoreWatcher(svc); err != nil {
		// Live reload is a convenience; `r` still reloads by hand.
		svc.Log.Warn("store watcher unavailable", zap.Error(err))
	} else {
		defer sw.Stop()
		changes = sw.Changes()
	}

	m := newAppModel(ctx, svc, opts.Workspace, changes)
	if st, err := svc.Store.LoadTUIState(); err != nil {
		svc.Log.Warn("tui state unreadable", zap.Error(err))
	} else {
		m.restoreState(st)
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		if serr := svc.Store.SaveTUIState(fm.state()); serr != nil {
			svc.Log.Warn("save tui state", zap.Error(serr))
		}
	}
	return err
}

func startStoreWatcher(svc *inventory.Service) (*storeWatcher, error) {
	sw, err := newStoreWatcher(svc.Store.SQLitePath(), svc.Log)
	if err != nil {
		return nil, err
	}
	if err := sw.Start(); err != nil {
		sw.Stop()
		return nil, err
	}
	return sw, nil
}
