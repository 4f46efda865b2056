package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/ganttcsv/internal/session"
)

func (w *Workspace) uiStatePath() string {
	return filepath.Join(w.Root, stateDir, uiStateFile)
}

// LoadUIState reads the saved view state. A missing file yields the zero
// State and ok == false.
func (w *Workspace) LoadUIState() (session.State, bool, error) {
	b, err := os.ReadFile(w.uiStatePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.State{}, false, nil
		}
		return session.State{}, false, err
	}
	var st session.State
	if err := yaml.Unmarshal(b, &st); err != nil {
		return session.State{}, false, err
	}
	return st, true, nil
}

func (w *Workspace) SaveUIState(st session.State) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return atomicWriteFile(w.uiStatePath(), b, 0o644)
}

// ResetUIState removes the saved view state.
func (w *Workspace) ResetUIState() error {
	if err := os.Remove(w.uiStatePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
