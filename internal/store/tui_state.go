package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pantry-cli/internal/model"
)

const tuiStateFileName = "tui_state.json"

// TUIState restores the last list screen on relaunch. It lives in the workspace dir, so it is
// scoped per workspace. Callers tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	Filter model.Filter `json:"filter,omitempty"`
	Search string       `json:"search,omitempty"`

	SelectedItemID int64 `json:"selectedItemId,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state reads as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	f, ok := model.ParseFilter(string(st.Filter))
	if !ok {
		f = model.FilterAll
	}
	st.Filter = f
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	if strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiStateFileName+".*.tmp", s.tuiStatePath(), b, 0o644)
}
